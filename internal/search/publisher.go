package search

import (
	"context"

	"github.com/google/uuid"
	"github.com/originhub/originhub-api/internal/models"
)

// Publisher turns idea mutations into queued index tasks.
type Publisher struct {
	queue Queue
}

func NewPublisher(q Queue) *Publisher {
	return &Publisher{queue: q}
}

func (p *Publisher) IdeaChanged(ctx context.Context, idea *models.Idea) error {
	doc := NewIdeaDocument(idea)
	return p.queue.Enqueue(ctx, Task{Op: OpUpsert, IdeaID: doc.ID, Doc: &doc})
}

func (p *Publisher) IdeaDeleted(ctx context.Context, id uuid.UUID) error {
	return p.queue.Enqueue(ctx, Task{Op: OpDelete, IdeaID: id.String()})
}
