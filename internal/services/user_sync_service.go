package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/originhub/originhub-api/internal/dto"
	"github.com/originhub/originhub-api/internal/models"
	"github.com/originhub/originhub-api/internal/repository"
)

const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// UserSyncService mirrors identity-provider user events into the users table.
// Callers must verify the delivery signature first.
type UserSyncService struct {
	users  repository.UserRepository
	events repository.WebhookEventRepository
	now    func() time.Time
}

func NewUserSyncService(users repository.UserRepository, events repository.WebhookEventRepository) *UserSyncService {
	return &UserSyncService{users: users, events: events, now: time.Now}
}

// Apply handles one verified delivery. Redelivered ids are acknowledged as
// duplicates without being applied again.
func (s *UserSyncService) Apply(ctx context.Context, deliveryID string, body []byte) (*dto.WebhookResult, error) {
	var event dto.ClerkEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, &ValidationError{Reason: "malformed event payload"}
	}
	result := &dto.WebhookResult{Event: event.Type}

	var data dto.ClerkUserData
	switch event.Type {
	case EventUserCreated, EventUserUpdated, EventUserDeleted:
		if len(event.Data) > 0 {
			if err := json.Unmarshal(event.Data, &data); err != nil {
				return nil, &ValidationError{Fields: []string{"data"}, Reason: "malformed event payload"}
			}
		}
		data.ID = strings.TrimSpace(data.ID)
		if data.ID == "" {
			return nil, &ValidationError{Fields: []string{"data.id"}, Reason: "user id is required"}
		}
		result.UserID = data.ID
	default:
		slog.Info("ignoring webhook event", "event", event.Type, "delivery_id", deliveryID)
		return result, nil
	}

	fresh, err := s.events.Record(ctx, &models.WebhookEvent{
		ID:         deliveryID,
		Type:       event.Type,
		ReceivedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("record webhook delivery: %w", err)
	}
	if !fresh {
		slog.Info("duplicate webhook delivery", "event", event.Type, "delivery_id", deliveryID, "user_id", data.ID)
		result.Handled = true
		result.Duplicate = true
		return result, nil
	}

	if err := s.apply(ctx, event.Type, data); err != nil {
		// Release the id so the provider's retry is applied.
		if ferr := s.events.Forget(ctx, deliveryID); ferr != nil {
			slog.Error("failed to release webhook delivery", "delivery_id", deliveryID, "error", ferr)
		}
		return nil, err
	}

	result.Handled = true
	return result, nil
}

func (s *UserSyncService) apply(ctx context.Context, eventType string, data dto.ClerkUserData) error {
	if eventType == EventUserDeleted {
		removed, err := s.users.Delete(ctx, data.ID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		slog.Info("user deleted", "user_id", data.ID, "existed", removed)
		return nil
	}

	user := &models.User{
		UserID:    data.ID,
		FirstName: data.FirstName,
		LastName:  data.LastName,
	}
	if email := strings.TrimSpace(data.PrimaryEmail()); email != "" {
		user.Email = &email
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	slog.Info("user synced", "event", eventType, "user_id", data.ID)
	return nil
}
