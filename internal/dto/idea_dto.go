package dto

import "github.com/originhub/originhub-api/internal/models"

// CreateIdeaRequest is accepted by POST /ideas and POST /ideas/add. ID and
// Status are honoured only by the flexible /ideas/add route.
type CreateIdeaRequest struct {
	ID          *string  `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Problem     string   `json:"problem"`
	Solution    string   `json:"solution"`
	MarketSize  string   `json:"marketSize"`
	Tags        []string `json:"tags"`
	Author      string   `json:"author"`
	UserID      *string  `json:"user_id,omitempty"`
	Link        *string  `json:"link,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

// UpdateIdeaRequest applies only the fields that are present. An empty link
// clears it.
type UpdateIdeaRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Problem     *string   `json:"problem,omitempty"`
	Solution    *string   `json:"solution,omitempty"`
	MarketSize  *string   `json:"marketSize,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Link        *string   `json:"link,omitempty"`
	Status      *string   `json:"status,omitempty"`
}

type IdeaListResponse struct {
	Ideas []models.Idea `json:"ideas"`
}

type CreateIdeaResponse struct {
	ID   string       `json:"id"`
	Idea *models.Idea `json:"idea"`
}

type UpvoteResponse struct {
	IdeaID  string `json:"idea_id"`
	Upvoted bool   `json:"upvoted"`
	Upvotes int    `json:"upvotes"`
}

type ViewResponse struct {
	IdeaID string `json:"idea_id"`
	Views  int    `json:"views"`
}
