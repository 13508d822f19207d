package store

import (
	"context"
	"os"
	"testing"

	"github.com/sweetpotato0/chatbot-factory/history"
)

// The stores below need a running server; the tests skip when the
// connection variables are not set.

func exerciseStore(t *testing.T, s history.Store) {
	t.Helper()
	ctx := context.Background()

	rec := &history.Record{
		Name:           "Integration Bot",
		Type:           "knowledge_base",
		Success:        false,
		FilesGenerated: 4,
		Errors:         []string{"Docker creation failed: boom"},
	}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != rec.Name || got.FilesGenerated != 4 || len(got.Errors) != 1 {
		t.Errorf("unexpected record %+v", got)
	}

	recs, err := s.List(ctx, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("expected one record, got %d", len(recs))
	}
}

func TestRedisStore(t *testing.T) {
	if os.Getenv("REDIS_ADDR") == "" {
		t.Skip("REDIS_ADDR not set, skipping Redis store tests")
	}
	cfg := RedisConfigFromEnv()
	cfg.Prefix = "chatbot-factory:test:"
	s := NewRedisStore(cfg)
	defer s.Close()
	if err := s.Ping(context.Background()); err != nil {
		t.Skipf("Redis not reachable: %v", err)
	}
	exerciseStore(t, s)
}

func TestMongoStore(t *testing.T) {
	if os.Getenv("MONGODB_URI") == "" {
		t.Skip("MONGODB_URI not set, skipping MongoDB store tests")
	}
	cfg := MongoConfigFromEnv()
	cfg.Collection = "generations_test"
	s, err := NewMongoStore(context.Background(), cfg)
	if err != nil {
		t.Skipf("Failed to connect to MongoDB: %v", err)
	}
	defer s.Close()
	s.Clear(context.Background())
	exerciseStore(t, s)
}

func TestPostgresStore(t *testing.T) {
	if os.Getenv("POSTGRES_HOST") == "" {
		t.Skip("POSTGRES_HOST not set, skipping PostgreSQL store tests")
	}
	s, err := NewPostgresStore(context.Background(), PostgresConfigFromEnv())
	if err != nil {
		t.Skipf("Failed to connect to PostgreSQL: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}
