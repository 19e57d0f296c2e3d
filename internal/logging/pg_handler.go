package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/originhub/originhub-api/internal/models"
	"gorm.io/datatypes"
)

const (
	batchSize   = 50
	maxBuffered = 1000
)

// Store persists a batch of log rows.
type Store interface {
	InsertBatch(ctx context.Context, logs []models.SystemLog) error
}

// PGHandler is an slog.Handler that batches ERROR+ records into system_logs.
// Handlers derived through WithAttrs and WithGroup share one buffer.
type PGHandler struct {
	sink  *sink
	attrs []boundAttr
	group string
}

type boundAttr struct {
	group string
	attr  slog.Attr
}

type sink struct {
	store Store

	mu      sync.Mutex
	buffer  []models.SystemLog
	dropped int

	kick    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewPGHandler starts a flusher that writes the buffer every interval, or
// sooner once batchSize records are waiting.
func NewPGHandler(store Store, interval time.Duration) *PGHandler {
	s := &sink{
		store:   store,
		buffer:  make([]models.SystemLog, 0, batchSize),
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.loop(interval)
	return &PGHandler{sink: s}
}

func (s *sink) loop(interval time.Duration) {
	defer close(s.stopped)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush()
		case <-s.kick:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *sink) flush() {
	s.mu.Lock()
	batch := s.buffer
	dropped := s.dropped
	s.buffer = make([]models.SystemLog, 0, batchSize)
	s.dropped = 0
	s.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Write failures go to stderr: the default slog logger feeds this handler.
	if err := s.store.InsertBatch(ctx, batch); err != nil {
		fmt.Fprintf(os.Stderr, "system log flush failed: count=%d error=%v\n", len(batch), err)
	}
	if dropped > 0 {
		fmt.Fprintf(os.Stderr, "system log buffer full: dropped=%d\n", dropped)
	}
}

// Stop flushes what is buffered and waits for the flusher to exit.
func (h *PGHandler) Stop() {
	h.sink.once.Do(func() { close(h.sink.done) })
	<-h.sink.stopped
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time.UTC(),
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	for _, b := range h.attrs {
		apply(&entry, extra, b.group, b.attr)
	}
	record.Attrs(func(a slog.Attr) bool {
		apply(&entry, extra, h.group, a)
		return true
	})

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	s := h.sink
	s.mu.Lock()
	if len(s.buffer) >= maxBuffered {
		s.dropped++
		s.mu.Unlock()
		return nil
	}
	s.buffer = append(s.buffer, entry)
	full := len(s.buffer) >= batchSize
	s.mu.Unlock()

	if full {
		select {
		case s.kick <- struct{}{}:
		default:
		}
	}
	return nil
}

// apply maps well-known keys onto columns; everything else lands in extra.
// Grouped attrs are never mapped onto columns.
func apply(entry *models.SystemLog, extra map[string]interface{}, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Key == "" {
		return
	}
	if group != "" {
		extra[group+"."+a.Key] = valueOf(a.Value)
		return
	}

	switch a.Key {
	case "request_id":
		entry.RequestID = a.Value.String()
	case "user_id":
		if s := a.Value.String(); s != "" {
			entry.UserID = &s
		}
	case "idea_id":
		if s := a.Value.String(); s != "" {
			entry.IdeaID = &s
		}
	case "action":
		entry.Action = a.Value.String()
	case "error":
		entry.Error = a.Value.String()
	case "latency_ms":
		entry.LatencyMs = latencyMs(a.Value)
	default:
		extra[a.Key] = valueOf(a.Value)
	}
}

func latencyMs(v slog.Value) int {
	switch v.Kind() {
	case slog.KindInt64:
		return int(v.Int64())
	case slog.KindUint64:
		return int(v.Uint64())
	case slog.KindFloat64:
		return int(math.Round(v.Float64()))
	case slog.KindDuration:
		return int(v.Duration().Milliseconds())
	}
	return 0
}

func valueOf(v slog.Value) interface{} {
	switch v.Kind() {
	case slog.KindGroup:
		m := make(map[string]interface{}, len(v.Group()))
		for _, a := range v.Group() {
			m[a.Key] = valueOf(a.Value.Resolve())
		}
		return m
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	case slog.KindDuration, slog.KindTime:
		return v.String()
	}
	return v.Any()
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &PGHandler{sink: h.sink, group: h.group}
	next.attrs = make([]boundAttr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, boundAttr{group: h.group, attr: a})
	}
	return next
}

func (h *PGHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &PGHandler{sink: h.sink, attrs: h.attrs, group: group}
}
