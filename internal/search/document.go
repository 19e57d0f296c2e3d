// Package search keeps the Meilisearch ideas index in step with the database.
// Mutations publish tasks onto a queue; a Worker drains it in the background so
// request latency never depends on the index.
package search

import "github.com/originhub/originhub-api/internal/models"

type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// IdeaDocument is the indexed shape of an idea.
type IdeaDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Problem     string   `json:"problem"`
	Solution    string   `json:"solution"`
	Tags        []string `json:"tags"`
	Status      string   `json:"status"`
	UserID      string   `json:"user_id,omitempty"`
	Author      string   `json:"author"`
	CreatedAt   int64    `json:"createdAt"`
}

func NewIdeaDocument(idea *models.Idea) IdeaDocument {
	doc := IdeaDocument{
		ID:          idea.ID.String(),
		Title:       idea.Title,
		Description: idea.Description,
		Problem:     idea.Problem,
		Solution:    idea.Solution,
		Tags:        append([]string{}, idea.Tags...),
		Status:      idea.Status,
		Author:      idea.Author,
		CreatedAt:   idea.CreatedAt.Unix(),
	}
	if idea.UserID != nil {
		doc.UserID = *idea.UserID
	}
	return doc
}

// Task is one unit of index work.
type Task struct {
	Op     Op            `json:"op"`
	IdeaID string        `json:"idea_id"`
	Doc    *IdeaDocument `json:"doc,omitempty"`
}
