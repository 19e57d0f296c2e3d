package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCommentRequest struct {
	Content         string  `json:"content"`
	ParentCommentID *string `json:"parent_comment_id,omitempty"`
}

// CommentNode is a comment with its replies nested beneath it.
type CommentNode struct {
	ID              uuid.UUID      `json:"id"`
	IdeaID          uuid.UUID      `json:"idea_id"`
	UserID          string         `json:"user_id"`
	Content         string         `json:"content"`
	ParentCommentID *uuid.UUID     `json:"parent_comment_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       *time.Time     `json:"updated_at"`
	Replies         []*CommentNode `json:"replies"`
}

type CommentListResponse struct {
	Success bool           `json:"success"`
	Data    []*CommentNode `json:"data"`
	Total   int            `json:"total"`
	Message string         `json:"message"`
}
