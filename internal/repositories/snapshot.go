package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/libcat/internal/shared"
)

// SnapshotRepository caches the last fetched item set of each collection for offline listing.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new [SnapshotRepository] with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) save(collection string, data []byte, count int, at time.Time) error {
	query := `
		INSERT INTO collection_snapshots (collection, items, item_count, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(collection) DO UPDATE SET
			items = excluded.items,
			item_count = excluded.item_count,
			fetched_at = excluded.fetched_at
	`
	if _, err := r.db.Exec(query, collection, string(data), count, at); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) load(collection string) ([]byte, time.Time, error) {
	var (
		data      string
		fetchedAt time.Time
	)
	err := r.db.QueryRow("SELECT items, fetched_at FROM collection_snapshots WHERE collection = ?", collection).Scan(&data, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, fmt.Errorf("%w: %s", shared.ErrNoSnapshot, collection)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return []byte(data), fetchedAt, nil
}

// Count returns the number of items in the stored snapshot, or 0 when there is none.
func (r *SnapshotRepository) Count(collection string) (int, error) {
	var n int
	err := r.db.QueryRow("SELECT item_count FROM collection_snapshots WHERE collection = ?", collection).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// SaveSnapshot replaces the cached item set of collection.
func SaveSnapshot[T any](r *SnapshotRepository, collection string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return r.save(collection, data, len(items), time.Now().UTC())
}

// LoadSnapshot returns the cached item set of collection and when it was fetched.
// A missing snapshot reports [shared.ErrNoSnapshot].
func LoadSnapshot[T any](r *SnapshotRepository, collection string) ([]T, time.Time, error) {
	data, fetchedAt, err := r.load(collection)
	if err != nil {
		return nil, time.Time{}, err
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return items, fetchedAt, nil
}
