package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/spins/internal/shared"
)

// BlobStore is a named-blob key/value store. Writes replace any previous value (last write wins).
type BlobStore interface {
	Get(key string) ([]byte, error) // Get returns [shared.ErrNotFound] when key is absent
	Put(key string, value []byte) error
	Delete(key string) error // Delete is a no-op for absent keys
}

// KVRepository implements [BlobStore] on the kv_store table.
type KVRepository struct {
	db *sql.DB
}

// NewKVRepository creates a new KVRepository with the given database connection
func NewKVRepository(db *sql.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get retrieves the blob stored under key
func (r *KVRepository) Get(key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Put stores value under key, replacing any previous value
func (r *KVRepository) Put(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", shared.ErrInvalidArgument)
	}
	if value == nil {
		value = []byte{}
	}

	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes key from the store
func (r *KVRepository) Delete(key string) error {
	if _, err := r.db.Exec(`DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// MemoryStore is an in-process [BlobStore], used when no database is configured and in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, key)
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Put(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", shared.ErrInvalidArgument)
	}
	v := make([]byte, len(value))
	copy(v, value)

	m.mu.Lock()
	m.blobs[key] = v
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.blobs, key)
	m.mu.Unlock()
	return nil
}
