package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a short message. A post with ParentID set is a one-level reply:
// the referenced parent must itself have a NULL ParentID. Posts are
// immutable after creation.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Content   string    `gorm:"size:280;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`

	Author  User   `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE" json:"-"`
	Parent  *Post  `gorm:"foreignKey:ParentID" json:"-"`
	Replies []Post `gorm:"foreignKey:ParentID" json:"-"`
	Likes   []Like `gorm:"constraint:OnUpdate:CASCADE" json:"-"`
}

// BeforeCreate pins CreatedAt, which is the chronological ordering key for
// feeds and reply threads.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return nil
}
