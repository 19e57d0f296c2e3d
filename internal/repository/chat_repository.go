package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/originhub/originhub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) error
	Get(ctx context.Context, id uuid.UUID) (*models.Chat, error)
	ListByUser(ctx context.Context, userID string) ([]models.Chat, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddMessage(ctx context.Context, msg *models.Message) error
	Messages(ctx context.Context, chatID uuid.UUID) ([]models.Message, error)
	SetTitle(ctx context.Context, chatID uuid.UUID, title string) error
}

type GormChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

func (r *GormChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(chat).Error
}

func (r *GormChatRepository) Get(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).First(&chat, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &chat, nil
}

// ListByUser returns the user's chats, most recently active first.
func (r *GormChatRepository) ListByUser(ctx context.Context, userID string) ([]models.Chat, error) {
	chats := make([]models.Chat, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_message_at DESC").
		Find(&chats).Error
	return chats, err
}

func (r *GormChatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Chat{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AddMessage stores msg and bumps the chat's last_message_at.
func (r *GormChatRepository) AddMessage(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Chat{}).Where("id = ?", msg.ChatID).
			UpdateColumn("last_message_at", msg.CreatedAt).Error
	})
}

func (r *GormChatRepository) Messages(ctx context.Context, chatID uuid.UUID) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *GormChatRepository) SetTitle(ctx context.Context, chatID uuid.UUID, title string) error {
	return r.db.WithContext(ctx).Model(&models.Chat{}).Where("id = ?", chatID).
		UpdateColumn("title", title).Error
}
