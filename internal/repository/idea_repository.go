package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/originhub/originhub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IdeaRepository interface {
	List(ctx context.Context, filter IdeaFilter) ([]models.Idea, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Idea, error)
	Create(ctx context.Context, idea *models.Idea) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Idea, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) (int, error)
	ToggleUpvote(ctx context.Context, id uuid.UUID, userID string) (upvoted bool, count int, err error)
}

type GormIdeaRepository struct {
	db *gorm.DB
}

func NewIdeaRepository(db *gorm.DB) *GormIdeaRepository {
	return &GormIdeaRepository{db: db}
}

func (r *GormIdeaRepository) List(ctx context.Context, filter IdeaFilter) ([]models.Idea, error) {
	ideas := make([]models.Idea, 0)
	if err := r.db.WithContext(ctx).Scopes(filter.Scope()).Find(&ideas).Error; err != nil {
		return nil, err
	}
	return ideas, nil
}

func (r *GormIdeaRepository) Get(ctx context.Context, id uuid.UUID) (*models.Idea, error) {
	var idea models.Idea
	if err := r.db.WithContext(ctx).First(&idea, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &idea, nil
}

func (r *GormIdeaRepository) Create(ctx context.Context, idea *models.Idea) error {
	return r.db.WithContext(ctx).Create(idea).Error
}

// Update writes only the given columns and returns the stored row.
func (r *GormIdeaRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Idea, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Idea{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.Get(ctx, id)
}

func (r *GormIdeaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Idea{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormIdeaRepository) IncrementViews(ctx context.Context, id uuid.UUID) (int, error) {
	var idea models.Idea
	res := r.db.WithContext(ctx).Model(&idea).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "views"}}}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return idea.Views, nil
}

// ToggleUpvote adds the user's upvote, or removes it when already present,
// keeping ideas.upvotes in step within one transaction.
func (r *GormIdeaRepository) ToggleUpvote(ctx context.Context, id uuid.UUID, userID string) (bool, int, error) {
	var upvoted bool
	var count int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var idea models.Idea
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "upvotes").
			First(&idea, "id = ?", id).Error; err != nil {
			return mapNotFound(err)
		}

		res := tx.Where("user_id = ? AND idea_id = ?", userID, id).Delete(&models.IdeaUpvote{})
		if res.Error != nil {
			return res.Error
		}

		delta := -1
		if res.RowsAffected == 0 {
			vote := models.IdeaUpvote{
				ID:        uuid.New(),
				UserID:    userID,
				IdeaID:    id,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.Omit(clause.Associations).Create(&vote).Error; err != nil {
				return err
			}
			delta = 1
			upvoted = true
		}

		if err := tx.Model(&models.Idea{}).Where("id = ?", id).
			UpdateColumn("upvotes", gorm.Expr("GREATEST(upvotes + ?, 0)", delta)).Error; err != nil {
			return err
		}

		count = idea.Upvotes + delta
		if count < 0 {
			count = 0
		}
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return upvoted, count, nil
}
