package filestore

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"phonetracer/internal/domain/models"
)

// HistoryStore keeps the newest lookups first in a JSON array file
type HistoryStore struct {
	mu    sync.Mutex
	path  string
	limit int
}

// NewHistoryStore creates a store retaining at most limit entries
func NewHistoryStore(dir, file string, limit int) *HistoryStore {
	if limit <= 0 {
		limit = 50
	}
	return &HistoryStore{path: filepath.Join(dir, file), limit: limit}
}

// Add prepends an entry and trims the file to the retention limit
func (s *HistoryStore) Add(_ context.Context, e models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := loadJSON[models.HistoryEntry](s.path)
	if err != nil {
		return err
	}

	entries = append([]models.HistoryEntry{e}, entries...)
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	if err := saveJSON(s.path, entries); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (s *HistoryStore) Recent(_ context.Context, limit int) ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := loadJSON[models.HistoryEntry](s.path)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
