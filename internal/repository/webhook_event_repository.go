package repository

import (
	"context"
	"time"

	"github.com/originhub/originhub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebhookEventRepository interface {
	// Record claims the delivery; false means it was already recorded.
	Record(ctx context.Context, event *models.WebhookEvent) (bool, error)
	Forget(ctx context.Context, id string) error
}

type GormWebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *GormWebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

func (r *GormWebhookEventRepository) Record(ctx context.Context, event *models.WebhookEvent) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormWebhookEventRepository) Forget(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.WebhookEvent{}, "id = ?", id).Error
}

// DeleteOlderThan prunes delivery ids received before cutoff.
func (r *GormWebhookEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("received_at < ?", cutoff).Delete(&models.WebhookEvent{})
	return result.RowsAffected, result.Error
}
