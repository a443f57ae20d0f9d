// package models defines the data model for the library catalog client
package models

import (
	"slices"
	"time"
)

// Role names returned by the server.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Collection names used to key persisted view state and snapshots.
const (
	CollectionBooks   = "books"
	CollectionReaders = "readers"
)

// Record is implemented by every listable entity.
type Record interface {
	Identifier() uint   // Identifier returns the server-assigned ID
	Created() time.Time // Created returns when the record was created, zero if unknown
}

// Book is a catalog entry as returned by the API.
type Book struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserID      uint      `json:"user_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

func (b Book) Identifier() uint   { return b.ID }
func (b Book) Created() time.Time { return b.CreatedAt }

// CanEdit reports whether u may modify or delete the book: the owner or an admin.
func (b Book) CanEdit(u *User) bool {
	if u == nil {
		return false
	}
	return u.IsAdmin() || (b.UserID != 0 && b.UserID == u.ID)
}

// Reader is a library patron with the books they are currently reading.
type Reader struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Surname          string    `json:"surname"`
	CurrentlyReading []Book    `json:"currently_reading"`
	CreatedAt        time.Time `json:"created_at,omitzero"`
}

func (r Reader) Identifier() uint   { return r.ID }
func (r Reader) Created() time.Time { return r.CreatedAt }

// FullName joins name and surname.
func (r Reader) FullName() string {
	if r.Surname == "" {
		return r.Name
	}
	return r.Name + " " + r.Surname
}

// IsReading reports whether bookID is on the reader's list.
func (r Reader) IsReading(bookID uint) bool {
	return slices.ContainsFunc(r.CurrentlyReading, func(b Book) bool { return b.ID == bookID })
}

// User is the authenticated account.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// AuthResponse is returned by the register and login endpoints.
type AuthResponse struct {
	Token    string `json:"token"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// User extracts the account half of the response.
func (a AuthResponse) User() User {
	return User{ID: a.UserID, Username: a.Username, Email: a.Email, Role: a.Role}
}

// CountCreatedOn returns how many records were created on the same calendar day as day, in day's location.
func CountCreatedOn[T Record](records []T, day time.Time) int {
	y, m, d := day.Date()
	n := 0
	for _, r := range records {
		c := r.Created()
		if c.IsZero() {
			continue
		}
		cy, cm, cd := c.In(day.Location()).Date()
		if cy == y && cm == m && cd == d {
			n++
		}
	}
	return n
}
