package models

import (
	"time"

	"github.com/google/uuid"
)

// IdeaUpvote records that a user upvoted an idea; one row per pair.
type IdeaUpvote struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;size:255;not null;uniqueIndex:unique_user_idea_upvote,priority:1;index" json:"user_id"`
	IdeaID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:unique_user_idea_upvote,priority:2;index" json:"idea_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	Idea      Idea      `gorm:"foreignKey:IdeaID;constraint:OnDelete:CASCADE" json:"-"`
}

func (IdeaUpvote) TableName() string {
	return "idea_upvotes"
}
