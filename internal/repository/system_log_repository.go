package repository

import (
	"context"
	"time"

	"github.com/originhub/originhub-api/internal/models"
	"gorm.io/gorm"
)

type SystemLogRepository interface {
	InsertBatch(ctx context.Context, logs []models.SystemLog) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type GormSystemLogRepository struct {
	db *gorm.DB
}

func NewSystemLogRepository(db *gorm.DB) *GormSystemLogRepository {
	return &GormSystemLogRepository{db: db}
}

func (r *GormSystemLogRepository) InsertBatch(ctx context.Context, logs []models.SystemLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(logs, 50).Error
}

func (r *GormSystemLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}
