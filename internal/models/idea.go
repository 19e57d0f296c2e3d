package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Idea statuses. New ideas start as drafts.
const (
	IdeaStatusDraft     = "draft"
	IdeaStatusActive    = "active"
	IdeaStatusValidated = "validated"
	IdeaStatusLaunched  = "launched"
)

var IdeaStatuses = map[string]bool{
	IdeaStatusDraft:     true,
	IdeaStatusActive:    true,
	IdeaStatusValidated: true,
	IdeaStatusLaunched:  true,
}

// Idea is the primary content entity. ID and CreatedAt are set once by the
// service and never rewritten; UserID is a soft reference to users.user_id.
type Idea struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Problem     string         `gorm:"type:text;not null" json:"problem"`
	Solution    string         `gorm:"type:text;not null" json:"solution"`
	MarketSize  string         `gorm:"column:marketSize;size:255;not null" json:"marketSize"`
	Tags        pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tags"`
	Author      string         `gorm:"size:255;not null" json:"author"`
	CreatedAt   time.Time      `gorm:"column:createdAt;not null;index" json:"createdAt"`
	Upvotes     int            `gorm:"not null;default:0" json:"upvotes"`
	Views       int            `gorm:"not null;default:0" json:"views"`
	Status      string         `gorm:"size:50;not null;default:'draft'" json:"status"`
	UserID      *string        `gorm:"column:user_id;size:255;index" json:"user_id"`
	Link        *string        `gorm:"type:text" json:"link"`
}

func (Idea) TableName() string {
	return "ideas"
}

// AfterFind keeps tags serialised as [] rather than null.
func (i *Idea) AfterFind(tx *gorm.DB) error {
	if i.Tags == nil {
		i.Tags = pq.StringArray{}
	}
	return nil
}

// OwnedBy reports whether requesterID owns the idea. Ideas without an owner
// are owned by nobody.
func (i *Idea) OwnedBy(requesterID string) bool {
	if i.UserID == nil || requesterID == "" {
		return false
	}
	return *i.UserID == requesterID
}
