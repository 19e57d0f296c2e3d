package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/originhub/originhub-api/internal/dto"
	"github.com/originhub/originhub-api/internal/models"
	"github.com/originhub/originhub-api/internal/repository"
)

const maxCommentLength = 5000

// Comments are plain text; any markup is stripped before storage.
var commentPolicy = bluemonday.StrictPolicy()

type CommentService struct {
	comments repository.CommentRepository
	ideas    repository.IdeaRepository
	now      func() time.Time
}

func NewCommentService(comments repository.CommentRepository, ideas repository.IdeaRepository) *CommentService {
	return &CommentService{comments: comments, ideas: ideas, now: time.Now}
}

// Create adds a comment, or a reply when ParentCommentID names a comment on
// the same idea.
func (s *CommentService) Create(ctx context.Context, ideaID uuid.UUID, userID string, req dto.CreateCommentRequest) (*models.Comment, error) {
	content := plainText(req.Content)
	if n := utf8.RuneCountInString(content); n == 0 || n > maxCommentLength {
		return nil, &ValidationError{Fields: []string{"content"}, Reason: "content must be 1-5000 characters"}
	}

	if _, err := s.ideas.Get(ctx, ideaID); err != nil {
		return nil, mapIdeaErr(err)
	}

	comment := &models.Comment{
		ID:        uuid.New(),
		IdeaID:    ideaID,
		UserID:    userID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}

	if req.ParentCommentID != nil && strings.TrimSpace(*req.ParentCommentID) != "" {
		parentID, err := uuid.Parse(strings.TrimSpace(*req.ParentCommentID))
		if err != nil {
			return nil, &ValidationError{Fields: []string{"parent_comment_id"}, Reason: "invalid parent comment id"}
		}
		parent, err := s.comments.Get(ctx, parentID)
		if err != nil {
			return nil, mapCommentErr(err)
		}
		if parent.IdeaID != ideaID {
			return nil, &ValidationError{Fields: []string{"parent_comment_id"}, Reason: "parent comment belongs to another idea"}
		}
		comment.ParentCommentID = &parentID
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	slog.Info("comment created", "idea_id", ideaID.String(), "user_id", userID, "reply", comment.ParentCommentID != nil)
	return comment, nil
}

// Tree returns top-level comments newest first, each with its replies nested
// oldest first.
func (s *CommentService) Tree(ctx context.Context, ideaID uuid.UUID) ([]*dto.CommentNode, error) {
	if _, err := s.ideas.Get(ctx, ideaID); err != nil {
		return nil, mapIdeaErr(err)
	}

	comments, err := s.comments.ListByIdea(ctx, ideaID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return buildCommentTree(comments), nil
}

// Delete removes a comment and its replies. The comment author and the idea
// owner may delete.
func (s *CommentService) Delete(ctx context.Context, ideaID, commentID uuid.UUID, requesterID string) error {
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return mapCommentErr(err)
	}
	if comment.IdeaID != ideaID {
		return ErrCommentNotFound
	}

	if comment.UserID != requesterID {
		idea, err := s.ideas.Get(ctx, ideaID)
		if err != nil {
			return mapIdeaErr(err)
		}
		if !idea.OwnedBy(requesterID) {
			return ErrCommentForbidden
		}
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return mapCommentErr(err)
	}
	slog.Info("comment deleted", "idea_id", ideaID.String(), "user_id", requesterID)
	return nil
}

func buildCommentTree(comments []models.Comment) []*dto.CommentNode {
	nodes := make(map[uuid.UUID]*dto.CommentNode, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &dto.CommentNode{
			ID:              c.ID,
			IdeaID:          c.IdeaID,
			UserID:          c.UserID,
			Content:         c.Content,
			ParentCommentID: c.ParentCommentID,
			CreatedAt:       c.CreatedAt,
			UpdatedAt:       c.UpdatedAt,
			Replies:         []*dto.CommentNode{},
		}
	}

	roots := make([]*dto.CommentNode, 0)
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentCommentID != nil {
			if parent, ok := nodes[*c.ParentCommentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].CreatedAt.After(roots[j].CreatedAt)
	})
	for _, node := range nodes {
		replies := node.Replies
		sort.SliceStable(replies, func(i, j int) bool {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		})
	}
	return roots
}

func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(commentPolicy.Sanitize(s)))
}

func mapCommentErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCommentNotFound
	}
	return err
}
