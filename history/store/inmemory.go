package store

import (
	"context"
	"fmt"
	"sync"

	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
	"github.com/sweetpotato0/chatbot-factory/history"
)

// InMemoryStore keeps records in process memory
type InMemoryStore struct {
	records map[string]*history.Record
	mu      sync.RWMutex
}

// NewInMemoryStore creates an empty in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]*history.Record),
	}
}

// Save stores a copy of rec, replacing any record with the same ID
func (s *InMemoryStore) Save(ctx context.Context, rec *history.Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil: %w", fterrors.ErrInvalidInput)
	}
	history.Prepare(rec)

	cp := *rec
	cp.Errors = append([]string(nil), rec.Errors...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = &cp
	return nil
}

// Get returns the record with the given ID
func (s *InMemoryStore) Get(ctx context.Context, id string) (*history.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, fterrors.ErrNotFound)
	}
	cp := *rec
	return &cp, nil
}

// List returns the newest records first
func (s *InMemoryStore) List(ctx context.Context, limit int) ([]*history.Record, error) {
	s.mu.RLock()
	out := make([]*history.Record, 0, len(s.records))
	for _, rec := range s.records {
		cp := *rec
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	return history.SortNewestFirst(out, limit), nil
}

// Count returns the number of stored records
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close is a no-op
func (s *InMemoryStore) Close() error {
	return nil
}
