// package repositories provides SQLite persistence for local client state.
package repositories

import (
	"database/sql"
	"fmt"
)

// Store groups the repositories backed by one database.
type Store struct {
	Sessions   *SessionRepository
	ViewStates *ViewStateRepository
	Snapshots  *SnapshotRepository
}

// NewStore creates every repository on db. Migrations must already be applied.
func NewStore(db *sql.DB) *Store {
	return &Store{
		Sessions:   NewSessionRepository(db),
		ViewStates: NewViewStateRepository(db),
		Snapshots:  NewSnapshotRepository(db),
	}
}

// execAffected runs a statement and returns the number of affected rows.
func execAffected(db *sql.DB, query string, args ...any) (int64, error) {
	result, err := db.Exec(query, args...)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}
