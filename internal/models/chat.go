package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

type Chat struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string    `gorm:"column:user_id;size:255;not null;index" json:"user_id"`
	Title         *string   `gorm:"type:text" json:"title"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	LastMessageAt time.Time `gorm:"not null;index" json:"last_message_at"`
	Messages      []Message `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Chat) TableName() string {
	return "chats"
}

type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID    uuid.UUID `gorm:"type:uuid;not null;index" json:"chat_id"`
	Sender    string    `gorm:"size:20;not null;check:check_sender,sender IN ('user','assistant')" json:"sender"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
