package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/originhub/originhub-api/internal/dto"
	"github.com/originhub/originhub-api/internal/llm"
	"github.com/originhub/originhub-api/internal/models"
	"github.com/originhub/originhub-api/internal/repository"
)

const (
	defaultChatTitle = "New Chat"
	maxTitleLength   = 50

	chatSystemPrompt = "You are a startup advisor helping founders sharpen product ideas. " +
		"Ask clarifying questions and suggest concrete next steps."
)

// Completer produces an assistant reply for a conversation.
type Completer interface {
	IsAvailable() bool
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

type ChatService struct {
	chats repository.ChatRepository
	llm   Completer
	now   func() time.Time
}

func NewChatService(chats repository.ChatRepository, completer Completer) *ChatService {
	return &ChatService{chats: chats, llm: completer, now: time.Now}
}

// StubReply answers the stateless /chat endpoint without persisting anything.
func StubReply(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", &ValidationError{Fields: []string{"message"}, Reason: "message cannot be empty"}
	}
	return "I understand you're facing: " + message +
		". Let me help you brainstorm some solutions and ideas. What specific aspect would you like to explore further?", nil
}

func (s *ChatService) Create(ctx context.Context, userID string) (*models.Chat, error) {
	now := s.now().UTC()
	chat := &models.Chat{
		ID:            uuid.New(),
		UserID:        userID,
		CreatedAt:     now,
		LastMessageAt: now,
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

func (s *ChatService) List(ctx context.Context, userID string) ([]models.Chat, error) {
	chats, err := s.chats.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

func (s *ChatService) Messages(ctx context.Context, chatID uuid.UUID, userID string) ([]models.Message, error) {
	if _, err := s.owned(ctx, chatID, userID); err != nil {
		return nil, err
	}
	messages, err := s.chats.Messages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// Send stores the user's message, stores an assistant reply and titles the
// chat from its first message when it has no title yet.
func (s *ChatService) Send(ctx context.Context, chatID uuid.UUID, userID, text string) (*dto.SendMessageResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Fields: []string{"message"}, Reason: "message cannot be empty"}
	}

	chat, err := s.owned(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}

	sent := models.Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		Sender:    models.SenderUser,
		Message:   text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.chats.AddMessage(ctx, &sent); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	history, err := s.chats.Messages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}

	reply := s.reply(ctx, chatID, history)

	// Keep the reply strictly after the prompt so history ordering is stable.
	replyAt := s.now().UTC()
	if !replyAt.After(sent.CreatedAt) {
		replyAt = sent.CreatedAt.Add(time.Microsecond)
	}
	if err := s.chats.AddMessage(ctx, &models.Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		Sender:    models.SenderAssistant,
		Message:   reply,
		CreatedAt: replyAt,
	}); err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	if chat.Title == nil {
		title := ChatTitle(firstUserMessage(history))
		if err := s.chats.SetTitle(ctx, chatID, title); err != nil {
			slog.Warn("failed to set chat title", "chat_id", chatID.String(), "error", err)
		} else {
			chat.Title = &title
		}
	}

	return &dto.SendMessageResponse{
		ChatID: chatID.String(),
		Reply:  reply,
		Title:  chat.Title,
		Sent:   sent,
	}, nil
}

func (s *ChatService) Delete(ctx context.Context, chatID uuid.UUID, userID string) error {
	if _, err := s.owned(ctx, chatID, userID); err != nil {
		return err
	}
	if err := s.chats.Delete(ctx, chatID); err != nil {
		return mapChatErr(err)
	}
	slog.Info("chat deleted", "chat_id", chatID.String(), "user_id", userID)
	return nil
}

func (s *ChatService) owned(ctx context.Context, chatID uuid.UUID, userID string) (*models.Chat, error) {
	chat, err := s.chats.Get(ctx, chatID)
	if err != nil {
		return nil, mapChatErr(err)
	}
	if chat.UserID != userID {
		return nil, ErrNotChatOwner
	}
	return chat, nil
}

// reply asks the model and falls back to a canned answer when it is not
// configured or fails.
func (s *ChatService) reply(ctx context.Context, chatID uuid.UUID, history []models.Message) string {
	if s.llm != nil && s.llm.IsAvailable() {
		messages := make([]llm.Message, 0, len(history)+1)
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: chatSystemPrompt})
		for _, m := range history {
			role := llm.RoleUser
			if m.Sender == models.SenderAssistant {
				role = llm.RoleAssistant
			}
			messages = append(messages, llm.Message{Role: role, Content: m.Message})
		}

		reply, err := s.llm.Complete(ctx, messages)
		if err == nil {
			return reply
		}
		slog.Warn("chat completion failed, using fallback reply", "chat_id", chatID.String(), "error", err)
	}
	return fallbackReply(history)
}

func fallbackReply(history []models.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Sender == models.SenderUser {
			return "I understand you're asking about: " + history[i].Message +
				". Let me help you brainstorm some solutions and ideas. What specific aspect would you like to explore further?"
		}
	}
	return "I'm here to help! What would you like to discuss?"
}

func firstUserMessage(history []models.Message) string {
	for _, m := range history {
		if m.Sender == models.SenderUser {
			return m.Message
		}
	}
	return ""
}

// ChatTitle builds a short title from the first three words of message.
func ChatTitle(message string) string {
	words := strings.Fields(message)
	if len(words) == 0 {
		return defaultChatTitle
	}
	if len(words) > 3 {
		words = words[:3]
	}
	title := strings.Join(words, " ")
	if utf8.RuneCountInString(title) > maxTitleLength {
		runes := []rune(title)
		title = string(runes[:maxTitleLength-3]) + "..."
	}
	return title
}

func mapChatErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrChatNotFound
	}
	return err
}
