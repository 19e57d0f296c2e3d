package dto

import "github.com/originhub/originhub-api/internal/models"

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatReply struct {
	Response string `json:"response"`
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

type SendMessageResponse struct {
	ChatID string         `json:"chat_id"`
	Reply  string         `json:"reply"`
	Title  *string        `json:"title"`
	Sent   models.Message `json:"sent"`
}
