package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/originhub/originhub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	Get(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]models.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormCommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *GormCommentRepository) Get(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &comment, nil
}

// ListByIdea returns every comment on the idea, newest first.
func (r *GormCommentRepository) ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := r.db.WithContext(ctx).
		Where("idea_id = ?", ideaID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

func (r *GormCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
