package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/originhub/originhub-api/internal/dto"
	"github.com/originhub/originhub-api/internal/models"
	"github.com/originhub/originhub-api/internal/repository"
)

const maxShortField = 255

// IndexPublisher receives best-effort notifications of idea mutations.
type IndexPublisher interface {
	IdeaChanged(ctx context.Context, idea *models.Idea) error
	IdeaDeleted(ctx context.Context, id uuid.UUID) error
}

type IdeasService struct {
	ideas repository.IdeaRepository
	users repository.UserRepository
	index IndexPublisher
	now   func() time.Time
}

func NewIdeasService(ideas repository.IdeaRepository, users repository.UserRepository, index IndexPublisher) *IdeasService {
	return &IdeasService{ideas: ideas, users: users, index: index, now: time.Now}
}

func (s *IdeasService) List(ctx context.Context, filter repository.IdeaFilter) ([]models.Idea, error) {
	ideas, err := s.ideas.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	return ideas, nil
}

func (s *IdeasService) Get(ctx context.Context, id uuid.UUID) (*models.Idea, error) {
	idea, err := s.ideas.Get(ctx, id)
	if err != nil {
		return nil, mapIdeaErr(err)
	}
	return idea, nil
}

// Create stores a new draft idea with a fresh id and zeroed counters.
func (s *IdeasService) Create(ctx context.Context, req dto.CreateIdeaRequest) (*models.Idea, error) {
	return s.create(ctx, req, false)
}

// Add is the lenient variant behind /ideas/add: a well-formed unused client id
// and a valid status are kept.
func (s *IdeasService) Add(ctx context.Context, req dto.CreateIdeaRequest) (*models.Idea, error) {
	return s.create(ctx, req, true)
}

func (s *IdeasService) create(ctx context.Context, req dto.CreateIdeaRequest, lenient bool) (*models.Idea, error) {
	var bad fieldErrors

	idea := &models.Idea{
		ID:          uuid.New(),
		Title:       requiredText(&bad, "title", req.Title, maxShortField),
		Description: requiredText(&bad, "description", req.Description, 0),
		Problem:     requiredText(&bad, "problem", req.Problem, 0),
		Solution:    requiredText(&bad, "solution", req.Solution, 0),
		MarketSize:  requiredText(&bad, "marketSize", req.MarketSize, maxShortField),
		Author:      requiredText(&bad, "author", req.Author, maxShortField),
		Tags:        normalizeTags(req.Tags),
		Status:      models.IdeaStatusDraft,
		CreatedAt:   s.now().UTC(),
	}

	link, ok := normalizeLink(req.Link)
	if !ok {
		bad.add("link")
	}
	idea.Link = link

	if lenient && req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if !models.IdeaStatuses[status] {
			bad.add("status")
		}
		idea.Status = status
	}

	if err := bad.err("missing or invalid fields"); err != nil {
		return nil, err
	}

	if lenient && req.ID != nil {
		if id, err := uuid.Parse(strings.TrimSpace(*req.ID)); err == nil {
			if _, err := s.ideas.Get(ctx, id); errors.Is(err, repository.ErrNotFound) {
				idea.ID = id
			}
		}
	}

	if req.UserID != nil {
		if userID := strings.TrimSpace(*req.UserID); userID != "" {
			exists, err := s.users.Exists(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("look up idea owner: %w", err)
			}
			if exists {
				idea.UserID = &userID
			} else {
				slog.Warn("dropping unknown idea owner", "user_id", userID)
			}
		}
	}

	if err := s.ideas.Create(ctx, idea); err != nil {
		return nil, fmt.Errorf("create idea: %w", err)
	}

	slog.Info("idea created", "idea_id", idea.ID.String(), "user_id", ownerOf(idea))
	s.publishChanged(ctx, idea)
	return idea, nil
}

// Update applies the present fields of req. Only the owner may update.
func (s *IdeasService) Update(ctx context.Context, id uuid.UUID, requesterID string, req dto.UpdateIdeaRequest) (*models.Idea, error) {
	idea, err := s.authorize(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	var bad fieldErrors
	fields := make(map[string]interface{})

	setText := func(column string, v *string, max int) {
		if v != nil {
			fields[column] = requiredText(&bad, column, *v, max)
		}
	}
	setText("title", req.Title, maxShortField)
	setText("description", req.Description, 0)
	setText("problem", req.Problem, 0)
	setText("solution", req.Solution, 0)
	setText("marketSize", req.MarketSize, maxShortField)

	if req.Tags != nil {
		fields["tags"] = normalizeTags(*req.Tags)
	}
	if req.Link != nil {
		link, ok := normalizeLink(req.Link)
		if !ok {
			bad.add("link")
		}
		if link == nil {
			fields["link"] = nil
		} else {
			fields["link"] = *link
		}
	}
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if !models.IdeaStatuses[status] {
			bad.add("status")
		}
		fields["status"] = status
	}

	if err := bad.err("missing or invalid fields"); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return idea, nil
	}

	updated, err := s.ideas.Update(ctx, id, fields)
	if err != nil {
		return nil, mapIdeaErr(err)
	}

	slog.Info("idea updated", "idea_id", id.String(), "user_id", requesterID, "fields", len(fields))
	s.publishChanged(ctx, updated)
	return updated, nil
}

// Delete removes the idea. Only the owner may delete.
func (s *IdeasService) Delete(ctx context.Context, id uuid.UUID, requesterID string) error {
	if _, err := s.authorize(ctx, id, requesterID); err != nil {
		return err
	}
	if err := s.ideas.Delete(ctx, id); err != nil {
		return mapIdeaErr(err)
	}

	slog.Info("idea deleted", "idea_id", id.String(), "user_id", requesterID)
	if s.index != nil {
		if err := s.index.IdeaDeleted(ctx, id); err != nil {
			slog.Warn("failed to enqueue index delete", "idea_id", id.String(), "error", err)
		}
	}
	return nil
}

// RecordView bumps the view counter and returns the new value.
func (s *IdeasService) RecordView(ctx context.Context, id uuid.UUID) (int, error) {
	views, err := s.ideas.IncrementViews(ctx, id)
	if err != nil {
		return 0, mapIdeaErr(err)
	}
	return views, nil
}

// ToggleUpvote flips the requester's upvote and returns the resulting state
// and count.
func (s *IdeasService) ToggleUpvote(ctx context.Context, id uuid.UUID, requesterID string) (bool, int, error) {
	upvoted, count, err := s.ideas.ToggleUpvote(ctx, id, requesterID)
	if err != nil {
		return false, 0, mapIdeaErr(err)
	}
	return upvoted, count, nil
}

// authorize loads the idea and checks ownership. Ideas without an owner
// cannot be modified by anyone.
func (s *IdeasService) authorize(ctx context.Context, id uuid.UUID, requesterID string) (*models.Idea, error) {
	idea, err := s.ideas.Get(ctx, id)
	if err != nil {
		return nil, mapIdeaErr(err)
	}
	if !idea.OwnedBy(requesterID) {
		slog.Warn("idea ownership check failed", "idea_id", id.String(), "user_id", requesterID)
		return nil, ErrNotIdeaOwner
	}
	return idea, nil
}

func (s *IdeasService) publishChanged(ctx context.Context, idea *models.Idea) {
	if s.index == nil {
		return
	}
	if err := s.index.IdeaChanged(ctx, idea); err != nil {
		slog.Warn("failed to enqueue index upsert", "idea_id", idea.ID.String(), "error", err)
	}
}

func mapIdeaErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrIdeaNotFound
	}
	return err
}

func ownerOf(idea *models.Idea) string {
	if idea.UserID == nil {
		return ""
	}
	return *idea.UserID
}

// requiredText trims v and records field as bad when it is blank or longer
// than max runes (max 0 means unbounded).
func requiredText(bad *fieldErrors, field, v string, max int) string {
	v = strings.TrimSpace(v)
	if v == "" || (max > 0 && utf8.RuneCountInString(v) > max) {
		bad.add(field)
	}
	return v
}

// normalizeTags trims tags, drops blanks and duplicates, keeping first-seen order.
func normalizeTags(tags []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// normalizeLink trims link; blank becomes nil. ok is false when a non-blank
// link is not an absolute http(s) URL.
func normalizeLink(link *string) (*string, bool) {
	if link == nil {
		return nil, true
	}
	v := strings.TrimSpace(*link)
	if v == "" {
		return nil, true
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, false
	}
	return &v, true
}
