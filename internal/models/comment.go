package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	IdeaID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"idea_id"`
	UserID          string     `gorm:"column:user_id;size:255;not null;index" json:"user_id"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	ParentCommentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_comment_id"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
	Idea            Idea       `gorm:"foreignKey:IdeaID;constraint:OnDelete:CASCADE" json:"-"`
	Parent          *Comment   `gorm:"foreignKey:ParentCommentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}
