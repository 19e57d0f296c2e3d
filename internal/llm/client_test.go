package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCompleteNotConfigured(t *testing.T) {
	c := NewClient("http://unused", "", "m", time.Second)
	if c.IsAvailable() {
		t.Fatal("expected client without key to be unavailable")
	}
	if _, err := c.Complete(context.Background(), nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" || len(req.Messages) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  try a marketplace  "}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", "test-model", time.Second)
	got, err := c.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "ideas?"},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "try a marketplace" {
		t.Errorf("unexpected reply %q", got)
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"down"}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":" "}}]}`},
		{"bad json", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "sk-test", "m", time.Second)
			if _, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "x"}}); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
