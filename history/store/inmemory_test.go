package store

import (
	"context"
	"errors"
	"testing"
	"time"

	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
	"github.com/sweetpotato0/chatbot-factory/history"
)

func TestInMemoryStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	rec := &history.Record{Name: "Help Bot", Type: "customer_support", Success: true, Errors: []string{"a"}}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("Save should fill ID and CreatedAt, got %+v", rec)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Help Bot" || !got.Success {
		t.Errorf("unexpected record %+v", got)
	}

	rec.Errors[0] = "mutated"
	got, _ = s.Get(ctx, rec.ID)
	if got.Errors[0] != "a" {
		t.Errorf("store should keep its own copy of errors, got %v", got.Errors)
	}
}

func TestInMemoryStoreGetMissing(t *testing.T) {
	_, err := NewInMemoryStore().Get(context.Background(), "nope")
	if !errors.Is(err, fterrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryStoreSaveNil(t *testing.T) {
	err := NewInMemoryStore().Save(context.Background(), nil)
	if !errors.Is(err, fterrors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestInMemoryStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		rec := &history.Record{Name: name, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all", limit: 0, want: []string{"third", "second", "first"}},
		{name: "limited", limit: 2, want: []string{"third", "second"}},
		{name: "limit above size", limit: 10, want: []string{"third", "second", "first"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := s.List(ctx, tt.limit)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(recs) != len(tt.want) {
				t.Fatalf("got %d records, want %d", len(recs), len(tt.want))
			}
			for i, rec := range recs {
				if rec.Name != tt.want[i] {
					t.Errorf("record %d = %q, want %q", i, rec.Name, tt.want[i])
				}
			}
		})
	}

	if s.Count() != 3 {
		t.Errorf("Count = %d, want 3", s.Count())
	}
}

func TestOpenBackends(t *testing.T) {
	s, err := Open(context.Background(), "memory")
	if err != nil {
		t.Fatalf("Open(memory) failed: %v", err)
	}
	if _, ok := s.(*InMemoryStore); !ok {
		t.Errorf("expected *InMemoryStore, got %T", s)
	}

	if _, err := Open(context.Background(), "cassandra"); !errors.Is(err, fterrors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown backend, got %v", err)
	}
}

func TestRedisConfigFromEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_TTL", "1h")

	cfg := RedisConfigFromEnv()
	if cfg.Addr != "redis:6380" || cfg.DB != 3 || cfg.TTL != time.Hour {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Prefix != "chatbot-factory:history:" {
		t.Errorf("unexpected default prefix %q", cfg.Prefix)
	}
}
