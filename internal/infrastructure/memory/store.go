// Package memory provides an in-memory medication store for tests and
// database-less development runs.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/medisure/go-coverage/internal/domain/medication"
)

// Store keeps records in insertion order behind a single mutex, which
// gives at-most-one-writer-per-key for free.
type Store struct {
	mu      sync.RWMutex
	byCode  map[string]int
	records []medication.Record
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{byCode: make(map[string]int)}
}

// Put inserts a new record, failing with Conflict on a duplicate code.
func (s *Store) Put(_ context.Context, rec medication.Record) (medication.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(rec.Code)
	if _, exists := s.byCode[key]; exists {
		return medication.Record{}, medication.NewError(medication.CodeConflict,
			"medication with this code already exists", nil)
	}

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	s.byCode[key] = len(s.records)
	s.records = append(s.records, rec)
	return rec, nil
}

// Update replaces the mutable fields of an existing record in place, so
// insertion order is preserved.
func (s *Store) Update(_ context.Context, rec medication.Record) (medication.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.byCode[strings.ToLower(rec.Code)]
	if !exists {
		return medication.Record{}, notFound()
	}

	existing := s.records[idx]
	rec.Code = existing.Code
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()
	s.records[idx] = rec
	return rec, nil
}

// Delete removes a record by code.
func (s *Store) Delete(_ context.Context, code string) (medication.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(code)
	idx, exists := s.byCode[key]
	if !exists {
		return medication.Record{}, notFound()
	}

	rec := s.records[idx]
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	delete(s.byCode, key)
	for k, i := range s.byCode {
		if i > idx {
			s.byCode[k] = i - 1
		}
	}
	return rec, nil
}

// GetByCode retrieves a record case-insensitively.
func (s *Store) GetByCode(_ context.Context, code string) (medication.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, exists := s.byCode[strings.ToLower(code)]
	if !exists {
		return medication.Record{}, notFound()
	}
	return s.records[idx], nil
}

// FindByName returns case-insensitive exact matches, oldest first.
func (s *Store) FindByName(_ context.Context, name string) ([]medication.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := strings.ToLower(name)
	var matches []medication.Record
	for _, rec := range s.records {
		if strings.ToLower(rec.Name) == want {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

func notFound() *medication.Error {
	return medication.NewError(medication.CodeNotFound, "medication not found", nil)
}
