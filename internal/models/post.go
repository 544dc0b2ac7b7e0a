package models

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"
)

// StatusExpired is the only lifecycle label a post currently carries.
// An active post has an empty status list.
const StatusExpired = "Expired"

// StatusList is the persisted set of lifecycle labels, stored as JSON so it
// round-trips as an array on the wire ([] or ["Expired"]).
type StatusList []string

// Topic is one named category a post is filed under. Matching is
// case-insensitive; the name is stored as the author typed it.
type Topic struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	PostID uint   `gorm:"not null;index" json:"-"`
	Name   string `gorm:"not null;index" json:"name"`
}

// MarshalJSON renders a topic as its bare name so post JSON carries
// topics as a plain string array.
func (t Topic) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Name)
}

// UnmarshalJSON accepts the bare-name form so cached post payloads
// round-trip.
func (t *Topic) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &t.Name)
}

// Post represents a time-limited message in one or more topics.
type Post struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	User          User       `gorm:"foreignKey:UserID" json:"user"`
	Title         string     `gorm:"not null" json:"title"`
	Body          string     `gorm:"type:text;not null" json:"body"`
	Topics        []Topic    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"topics"`
	UploadTime    time.Time  `gorm:"not null" json:"upload_time"`
	ExpiryMinutes int        `gorm:"not null" json:"expiry_minutes"`
	ExpiryTime    time.Time  `gorm:"not null" json:"expiry_time"`
	Status        StatusList `gorm:"serializer:json" json:"status"`
	// LikeCount is not persisted; computed at query time from the ledger
	LikeCount int `gorm:"->" json:"like_count"`
	// DislikeCount is not persisted; computed at query time from the ledger
	DislikeCount int            `gorm:"->" json:"dislike_count"`
	Comments     []Comment      `gorm:"foreignKey:PostID" json:"comments"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// ExpiryTimeFor computes the expiry instant for the given upload time and
// expiry window. The window is always anchored to the ORIGINAL upload time,
// including on expiry patches.
func ExpiryTimeFor(uploadTime time.Time, expiryMinutes int) time.Time {
	return uploadTime.Add(time.Duration(expiryMinutes) * time.Minute)
}

// IsExpiredAt reports whether the post is expired at the given instant.
// A non-positive expiry window expires the post immediately, which is how
// retroactive expiration patches take effect.
func (p *Post) IsExpiredAt(now time.Time) bool {
	return p.ExpiryMinutes <= 0 || !now.Before(p.ExpiryTime)
}

// MarkExpired sets the persisted Expired label.
func (p *Post) MarkExpired() {
	p.Status = StatusList{StatusExpired}
}

// ClearExpired resets the persisted status to active.
func (p *Post) ClearExpired() {
	p.Status = StatusList{}
}

// HasTopic reports whether the post is filed under the given topic name,
// compared case-insensitively.
func (p *Post) HasTopic(name string) bool {
	for _, t := range p.Topics {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

// InteractionCount is the post's total interest: likes plus dislikes.
func (p *Post) InteractionCount() int {
	return p.LikeCount + p.DislikeCount
}
