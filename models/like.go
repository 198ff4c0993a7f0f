package models

import "time"

// Like records that a user liked a post. The composite unique index is the
// authoritative guard against duplicate likes: handlers pre-check for a
// friendlier fast path, but concurrent requests are settled here.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
