package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/originhub/originhub-api/internal/database"
	"github.com/originhub/originhub-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(url), &gorm.Config{})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec("TRUNCATE ideas, idea_upvotes, comments, messages, chats, users, webhook_events, system_logs CASCADE").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func seedIdea(t *testing.T, repo *GormIdeaRepository, title, problem string, tags []string, createdAt time.Time) models.Idea {
	t.Helper()
	idea := models.Idea{
		ID:          uuid.New(),
		Title:       title,
		Description: "description",
		Problem:     problem,
		Solution:    "solution",
		MarketSize:  "small",
		Tags:        pq.StringArray(tags),
		Author:      "tester",
		CreatedAt:   createdAt,
		Status:      models.IdeaStatusDraft,
	}
	if err := repo.Create(context.Background(), &idea); err != nil {
		t.Fatalf("create idea: %v", err)
	}
	return idea
}

func TestIdeaRepositoryListFilters(t *testing.T) {
	db := openTestDB(t)
	repo := NewIdeaRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	a := seedIdea(t, repo, "Beta", "Payments are SLOW", []string{"AI", "fintech"}, now.Add(-2*time.Hour))
	b := seedIdea(t, repo, "Alpha", "nothing", []string{"health"}, now.Add(-1*time.Hour))
	c := seedIdea(t, repo, "Gamma", "nothing", nil, now)

	all, err := repo.List(ctx, IdeaFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != c.ID || all[2].ID != a.ID {
		t.Fatalf("expected newest first, got %v", ids(all))
	}

	byTitle, _ := repo.List(ctx, IdeaFilter{SortBy: SortByTitle})
	if byTitle[0].ID != b.ID {
		t.Errorf("expected Alpha first by title, got %s", byTitle[0].Title)
	}

	tagged, _ := repo.List(ctx, IdeaFilter{Tags: []string{"ai", "health"}})
	if len(tagged) != 2 {
		t.Errorf("expected match-any on tags to return 2 ideas, got %v", ids(tagged))
	}

	searched, _ := repo.List(ctx, IdeaFilter{Search: "slow"})
	if len(searched) != 1 || searched[0].ID != a.ID {
		t.Errorf("expected case-insensitive search hit on problem, got %v", ids(searched))
	}

	none, _ := repo.List(ctx, IdeaFilter{Search: "zzz"})
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", none)
	}
}

func TestIdeaRepositoryUpdateDelete(t *testing.T) {
	db := openTestDB(t)
	repo := NewIdeaRepository(db)
	ctx := context.Background()

	idea := seedIdea(t, repo, "Old", "p", []string{"x"}, time.Now().UTC())

	updated, err := repo.Update(ctx, idea.ID, map[string]interface{}{"title": "New", "marketSize": "huge"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "New" || updated.MarketSize != "huge" || updated.Problem != "p" {
		t.Errorf("unexpected update result: %+v", updated)
	}

	if err := repo.Delete(ctx, idea.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, idea.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := repo.Get(ctx, idea.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestIdeaRepositoryCounters(t *testing.T) {
	db := openTestDB(t)
	repo := NewIdeaRepository(db)
	ctx := context.Background()

	idea := seedIdea(t, repo, "Counted", "p", nil, time.Now().UTC())

	views, err := repo.IncrementViews(ctx, idea.ID)
	if err != nil || views != 1 {
		t.Fatalf("IncrementViews = %d, %v", views, err)
	}

	upvoted, count, err := repo.ToggleUpvote(ctx, idea.ID, "user_1")
	if err != nil || !upvoted || count != 1 {
		t.Fatalf("first toggle = %v %d %v", upvoted, count, err)
	}
	upvoted, count, err = repo.ToggleUpvote(ctx, idea.ID, "user_1")
	if err != nil || upvoted || count != 0 {
		t.Fatalf("second toggle = %v %d %v", upvoted, count, err)
	}

	if _, _, err := repo.ToggleUpvote(ctx, uuid.New(), "user_1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown idea, got %v", err)
	}
}

func TestUserRepositoryUpsertIdempotent(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first, email := "Ada", "ada@example.com"
	for i := 0; i < 2; i++ {
		if err := repo.Upsert(ctx, &models.User{UserID: "user_abc", Email: &email, FirstName: &first}); err != nil {
			t.Fatalf("Upsert #%d: %v", i, err)
		}
	}

	var count int64
	db.Model(&models.User{}).Where("user_id = ?", "user_abc").Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one row, got %d", count)
	}

	removed, err := repo.Delete(ctx, "user_abc")
	if err != nil || !removed {
		t.Fatalf("Delete = %v, %v", removed, err)
	}
	removed, err = repo.Delete(ctx, "user_abc")
	if err != nil || removed {
		t.Fatalf("second Delete = %v, %v", removed, err)
	}
}

func TestWebhookEventRepositoryRecordOnce(t *testing.T) {
	db := openTestDB(t)
	repo := NewWebhookEventRepository(db)
	ctx := context.Background()

	ev := func() *models.WebhookEvent {
		return &models.WebhookEvent{ID: "msg_1", Type: "user.created", ReceivedAt: time.Now().UTC()}
	}

	fresh, err := repo.Record(ctx, ev())
	if err != nil || !fresh {
		t.Fatalf("first Record = %v, %v", fresh, err)
	}
	fresh, err = repo.Record(ctx, ev())
	if err != nil || fresh {
		t.Fatalf("second Record = %v, %v", fresh, err)
	}
}

func TestWebhookEventRepositoryPrune(t *testing.T) {
	db := openTestDB(t)
	repo := NewWebhookEventRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	for id, at := range map[string]time.Time{"msg_old": now.AddDate(0, 0, -10), "msg_new": now} {
		if _, err := repo.Record(ctx, &models.WebhookEvent{ID: id, Type: "user.created", ReceivedAt: at}); err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}

	deleted, err := repo.DeleteOlderThan(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 pruned delivery, got %d", deleted)
	}
	fresh, err := repo.Record(ctx, &models.WebhookEvent{ID: "msg_new", Type: "user.created", ReceivedAt: now})
	if err != nil || fresh {
		t.Errorf("expected msg_new to survive pruning, got fresh=%v err=%v", fresh, err)
	}
}

func TestSystemLogRepositoryRetention(t *testing.T) {
	db := openTestDB(t)
	repo := NewSystemLogRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	logs := []models.SystemLog{
		{ID: uuid.New(), Timestamp: now.AddDate(0, 0, -40), Level: "ERROR", Message: "old"},
		{ID: uuid.New(), Timestamp: now, Level: "ERROR", Message: "new"},
	}
	if err := repo.InsertBatch(ctx, logs); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}

	deleted, err := repo.DeleteOlderThan(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted row, got %d", deleted)
	}
}

func ids(ideas []models.Idea) []string {
	out := make([]string, len(ideas))
	for i, idea := range ideas {
		out[i] = idea.Title
	}
	return out
}
