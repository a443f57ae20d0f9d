package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/libcat/internal/listview"
)

// ViewStateRepository persists the filter, sort, page size and page of each collection's list view.
type ViewStateRepository struct {
	db *sql.DB
}

// NewViewStateRepository creates a new [ViewStateRepository] with the given database connection
func NewViewStateRepository(db *sql.DB) *ViewStateRepository {
	return &ViewStateRepository{db: db}
}

// Save upserts the state stored for collection.
func (r *ViewStateRepository) Save(collection string, state listview.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode view state: %w", err)
	}

	query := `
		INSERT INTO view_states (collection, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(collection) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, collection, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save view state: %w", err)
	}
	return nil
}

// Get returns the stored state for collection; found is false when none has been saved.
func (r *ViewStateRepository) Get(collection string) (state listview.State, found bool, err error) {
	var data string
	err = r.db.QueryRow("SELECT state FROM view_states WHERE collection = ?", collection).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return listview.State{}, false, nil
	}
	if err != nil {
		return listview.State{}, false, fmt.Errorf("failed to query view state: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return listview.State{}, false, fmt.Errorf("failed to decode view state: %w", err)
	}
	return state, true, nil
}

// Reset forgets the state for collection. It reports whether anything was removed.
func (r *ViewStateRepository) Reset(collection string) (bool, error) {
	rows, err := execAffected(r.db, "DELETE FROM view_states WHERE collection = ?", collection)
	if err != nil {
		return false, fmt.Errorf("failed to reset view state: %w", err)
	}
	return rows > 0, nil
}
