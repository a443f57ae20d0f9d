package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/libcat/internal/models"
	"github.com/desertthunder/libcat/internal/shared"
)

// Session is the stored credential of the signed-in user.
type Session struct {
	ID        string
	Token     string
	User      models.User
	CreatedAt time.Time
}

// SessionRepository persists the single active [Session].
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save replaces any stored session with one built from auth.
func (r *SessionRepository) Save(auth *models.AuthResponse) (*Session, error) {
	if auth == nil || auth.Token == "" {
		return nil, fmt.Errorf("%w: empty token", shared.ErrInvalidArgument)
	}

	s := &Session{
		ID:        shared.GenerateID(),
		Token:     auth.Token,
		User:      auth.User(),
		CreatedAt: time.Now().UTC(),
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		return nil, fmt.Errorf("failed to clear sessions: %w", err)
	}

	query := `
		INSERT INTO sessions (id, token, user_id, username, email, role, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query, s.ID, s.Token, s.User.ID, s.User.Username, s.User.Email, s.User.Role, s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session: %w", err)
	}
	return s, nil
}

// Current returns the stored session or [shared.ErrNoSession].
func (r *SessionRepository) Current() (*Session, error) {
	query := `
		SELECT id, token, user_id, username, email, role, created_at
		FROM sessions
		ORDER BY created_at DESC
		LIMIT 1
	`

	var s Session
	err := r.db.QueryRow(query).Scan(&s.ID, &s.Token, &s.User.ID, &s.User.Username, &s.User.Email, &s.User.Role, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &s, nil
}

// Clear removes the stored session. Clearing with nothing stored is not an error.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return nil
}
