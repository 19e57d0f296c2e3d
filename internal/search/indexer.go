package search

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const ideasIndex = "ideas"

// ErrIndexUnavailable is returned while Meilisearch fails its health check.
var ErrIndexUnavailable = errors.New("search index unavailable")

type Indexer interface {
	Upsert(ctx context.Context, doc IdeaDocument) error
	Delete(ctx context.Context, id string) error
}

// Meili indexes ideas into Meilisearch and tracks its health in the
// background, reconfiguring the index when the server comes back.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

func NewMeili(url, apiKey string) *Meili {
	m := &Meili{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		done:   make(chan struct{}),
	}

	if _, err := m.client.Health(); err != nil {
		slog.Warn("meilisearch unavailable", "url", url, "error", err)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop(10 * time.Second)
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{Uid: ideasIndex, PrimaryKey: "id"}); err != nil {
		slog.Debug("create ideas index", "error", err)
	}

	index := m.client.Index(ideasIndex)
	filterable := []interface{}{"tags", "status", "user_id"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		slog.Warn("update filterable attributes", "index", ideasIndex, "error", err)
	}
	searchable := []string{"title", "description", "problem", "solution"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		slog.Warn("update searchable attributes", "index", ideasIndex, "error", err)
	}
}

func (m *Meili) healthLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Swap(err == nil)
			if err == nil && !wasHealthy {
				slog.Info("meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

func (m *Meili) Close() {
	close(m.done)
}

func (m *Meili) Upsert(_ context.Context, doc IdeaDocument) error {
	if !m.healthy.Load() {
		return ErrIndexUnavailable
	}
	_, err := m.client.Index(ideasIndex).AddDocuments([]IdeaDocument{doc}, nil)
	return err
}

func (m *Meili) Delete(_ context.Context, id string) error {
	if !m.healthy.Load() {
		return ErrIndexUnavailable
	}
	_, err := m.client.Index(ideasIndex).DeleteDocument(id, nil)
	return err
}

// Noop discards index work when no search backend is configured.
type Noop struct{}

func (Noop) Upsert(context.Context, IdeaDocument) error { return nil }
func (Noop) Delete(context.Context, string) error       { return nil }
