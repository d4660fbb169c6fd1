package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/shared"
)

// HistoryStore persists the full listening history as a single JSON blob under [models.HistoryKey].
type HistoryStore struct {
	blobs BlobStore
	key   string
}

// NewHistoryStore creates a HistoryStore backed by blobs
func NewHistoryStore(blobs BlobStore) *HistoryStore {
	return &HistoryStore{blobs: blobs, key: models.HistoryKey}
}

// Save replaces the stored history with events
func (s *HistoryStore) Save(events []models.PlayEvent) error {
	if events == nil {
		events = []models.PlayEvent{}
	}

	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if err := s.blobs.Put(s.key, data); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// Load returns the stored history.
//
// A missing blob yields [shared.ErrNoHistory]. A blob that no longer decodes is removed and
// reported as [shared.ErrInvalidHistory] so the next load starts clean.
func (s *HistoryStore) Load() ([]models.PlayEvent, error) {
	data, err := s.blobs.Get(s.key)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	var events []models.PlayEvent
	if err := json.Unmarshal(data, &events); err != nil {
		if derr := s.blobs.Delete(s.key); derr != nil {
			return nil, fmt.Errorf("failed to discard corrupt history: %w", derr)
		}
		return nil, fmt.Errorf("%w: stored history discarded: %v", shared.ErrInvalidHistory, err)
	}
	return events, nil
}

// Clear deletes the stored history
func (s *HistoryStore) Clear() error {
	if err := s.blobs.Delete(s.key); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
