package repository

import (
	"context"

	"github.com/originhub/originhub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID string) (bool, error)
	Get(ctx context.Context, userID string) (*models.User, error)
	Exists(ctx context.Context, userID string) (bool, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Upsert inserts the user or overwrites the provider-mirrored columns.
func (r *GormUserRepository) Upsert(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "first_name", "last_name", "updated_at"}),
	}).Create(user).Error
}

// Delete reports whether a row was removed.
func (r *GormUserRepository) Delete(ctx context.Context, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "user_id = ?", userID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormUserRepository) Get(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (r *GormUserRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
