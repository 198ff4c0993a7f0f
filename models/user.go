package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account. Passwords are stored as argon2id
// hashes only and never leave the server.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:32;uniqueIndex;not null" json:"username"`
	DisplayName    *string   `gorm:"size:64" json:"display_name"`
	HashedPassword string    `gorm:"size:255;not null" json:"-"`
	CreatedAt      time.Time `json:"created_at"`

	Posts []Post `gorm:"foreignKey:AuthorID" json:"-"`
	Likes []Like `json:"-"`
}

// BeforeCreate ensures the creation timestamp is set even when the caller
// builds the struct by hand.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return nil
}
