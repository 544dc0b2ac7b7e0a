package models

import (
	"time"

	"gorm.io/gorm"
)

// InteractionType is the kind of reaction a user leaves on a post.
type InteractionType string

const (
	InteractionLike    InteractionType = "like"
	InteractionDislike InteractionType = "dislike"
)

// IsValid reports whether the type is one of the two recognized reactions.
func (t InteractionType) IsValid() bool {
	return t == InteractionLike || t == InteractionDislike
}

// Opposite returns the other reaction type.
func (t InteractionType) Opposite() InteractionType {
	if t == InteractionLike {
		return InteractionDislike
	}
	return InteractionLike
}

// Interaction is one user's reaction to one post. The unique index on
// (post_id, user_id) is the database backstop for the one-vote rule; the
// engine serializes writers per post before it is ever hit.
type Interaction struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	PostID    uint            `gorm:"not null;uniqueIndex:idx_interactions_post_user" json:"post_id"`
	UserID    uint            `gorm:"not null;uniqueIndex:idx_interactions_post_user" json:"user_id"`
	User      User            `gorm:"foreignKey:UserID" json:"user"`
	Type      InteractionType `gorm:"not null" json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}
