package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/originhub/originhub-api/internal/llm"
	"github.com/originhub/originhub-api/internal/models"
	"github.com/originhub/originhub-api/internal/repository"
)

type fakeIdeaRepo struct {
	mu      sync.Mutex
	ideas   map[uuid.UUID]models.Idea
	upvotes map[uuid.UUID]map[string]bool

	createErr error
}

func newFakeIdeaRepo() *fakeIdeaRepo {
	return &fakeIdeaRepo{ideas: map[uuid.UUID]models.Idea{}, upvotes: map[uuid.UUID]map[string]bool{}}
}

func (r *fakeIdeaRepo) List(_ context.Context, _ repository.IdeaFilter) ([]models.Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Idea, 0, len(r.ideas))
	for _, idea := range r.ideas {
		out = append(out, idea)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeIdeaRepo) Get(_ context.Context, id uuid.UUID) (*models.Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idea, ok := r.ideas[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &idea, nil
}

func (r *fakeIdeaRepo) Create(_ context.Context, idea *models.Idea) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ideas[idea.ID] = *idea
	return nil
}

func (r *fakeIdeaRepo) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idea, ok := r.ideas[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			idea.Title = v.(string)
		case "description":
			idea.Description = v.(string)
		case "problem":
			idea.Problem = v.(string)
		case "solution":
			idea.Solution = v.(string)
		case "marketSize":
			idea.MarketSize = v.(string)
		case "status":
			idea.Status = v.(string)
		case "tags":
			idea.Tags = v.(pq.StringArray)
		case "link":
			if v == nil {
				idea.Link = nil
			} else {
				s := v.(string)
				idea.Link = &s
			}
		}
	}
	r.ideas[id] = idea
	return &idea, nil
}

func (r *fakeIdeaRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ideas[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.ideas, id)
	return nil
}

func (r *fakeIdeaRepo) IncrementViews(_ context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idea, ok := r.ideas[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	idea.Views++
	r.ideas[id] = idea
	return idea.Views, nil
}

func (r *fakeIdeaRepo) ToggleUpvote(_ context.Context, id uuid.UUID, userID string) (bool, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idea, ok := r.ideas[id]
	if !ok {
		return false, 0, repository.ErrNotFound
	}
	if r.upvotes[id] == nil {
		r.upvotes[id] = map[string]bool{}
	}
	upvoted := !r.upvotes[id][userID]
	if upvoted {
		r.upvotes[id][userID] = true
		idea.Upvotes++
	} else {
		delete(r.upvotes[id], userID)
		idea.Upvotes--
	}
	r.ideas[id] = idea
	return upvoted, idea.Upvotes, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User

	upsertErr error
	upserts   int
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]models.User{}}
	for _, id := range ids {
		r.users[id] = models.User{UserID: id}
	}
	return r
}

func (r *fakeUserRepo) Upsert(_ context.Context, user *models.User) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.users[user.UserID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[userID]
	delete(r.users, userID)
	return ok, nil
}

func (r *fakeUserRepo) Get(_ context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *fakeUserRepo) Exists(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[userID]
	return ok, nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	seen   map[string]bool
	stored map[string]models.WebhookEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{seen: map[string]bool{}, stored: map[string]models.WebhookEvent{}}
}

func (r *fakeEventRepo) Record(_ context.Context, event *models.WebhookEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen[event.ID] {
		return false, nil
	}
	r.seen[event.ID] = true
	r.stored[event.ID] = *event
	return true, nil
}

func (r *fakeEventRepo) Forget(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.seen, id)
	delete(r.stored, id)
	return nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[uuid.UUID]models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[uuid.UUID]models.Comment{}}
}

func (r *fakeCommentRepo) Create(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments[c.ID] = *c
	return nil
}

func (r *fakeCommentRepo) Get(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *fakeCommentRepo) ListByIdea(_ context.Context, ideaID uuid.UUID) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Comment, 0)
	for _, c := range r.comments {
		if c.IdeaID == ideaID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

type fakeChatRepo struct {
	mu       sync.Mutex
	chats    map[uuid.UUID]models.Chat
	messages map[uuid.UUID][]models.Message
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: map[uuid.UUID]models.Chat{}, messages: map[uuid.UUID][]models.Message{}}
}

func (r *fakeChatRepo) Create(_ context.Context, chat *models.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats[chat.ID] = *chat
	return nil
}

func (r *fakeChatRepo) Get(_ context.Context, id uuid.UUID) (*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &chat, nil
}

func (r *fakeChatRepo) ListByUser(_ context.Context, userID string) ([]models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Chat, 0)
	for _, chat := range r.chats {
		if chat.UserID == userID {
			out = append(out, chat)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chats[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.chats, id)
	delete(r.messages, id)
	return nil
}

func (r *fakeChatRepo) AddMessage(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[msg.ChatID] = append(r.messages[msg.ChatID], *msg)
	chat := r.chats[msg.ChatID]
	chat.LastMessageAt = msg.CreatedAt
	r.chats[msg.ChatID] = chat
	return nil
}

func (r *fakeChatRepo) Messages(_ context.Context, chatID uuid.UUID) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Message{}, r.messages[chatID]...), nil
}

func (r *fakeChatRepo) SetTitle(_ context.Context, chatID uuid.UUID, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat := r.chats[chatID]
	chat.Title = &title
	r.chats[chatID] = chat
	return nil
}

// recordingPublisher captures index notifications.
type recordingPublisher struct {
	mu      sync.Mutex
	changed []uuid.UUID
	deleted []uuid.UUID
	err     error
}

func (p *recordingPublisher) IdeaChanged(_ context.Context, idea *models.Idea) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, idea.ID)
	return p.err
}

func (p *recordingPublisher) IdeaDeleted(_ context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, id)
	return p.err
}

// fakeCompleter is a Completer backed by a function field.
type fakeCompleter struct {
	available bool
	complete  func(ctx context.Context, messages []llm.Message) (string, error)
}

func (f *fakeCompleter) IsAvailable() bool { return f.available }

func (f *fakeCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	return f.complete(ctx, messages)
}
