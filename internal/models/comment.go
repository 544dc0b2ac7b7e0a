package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a reply attached to a post. Post owners may comment on their
// own posts; only expiration closes a post to new comments.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	Body      string         `gorm:"type:text;not null" json:"comment_body"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
