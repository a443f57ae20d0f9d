package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/libcat/internal/models"
)

// Credentials accepted by [CatalogServer].
const (
	TestUsername = "ada"
	TestPassword = "secret123"
	TestToken    = "test-token"
	AdminToken   = "admin-token"
)

// CatalogServer is an in-memory fake of the catalog REST API served by [httptest].
//
// Every books, readers and profile route requires a bearer token; login accepts
// [TestUsername]/[TestPassword]. Fail forces a status for "METHOD /path" keys.
type CatalogServer struct {
	*httptest.Server

	mu       sync.Mutex
	books    []models.Book
	readers  []models.Reader
	nextID   uint
	requests []string

	Fail map[string]int
}

// NewCatalogServer starts a fake server that is closed when the test ends.
func NewCatalogServer(t *testing.T) *CatalogServer {
	t.Helper()

	s := &CatalogServer{nextID: 1, Fail: map[string]int{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", s.register)
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("GET /auth/profile", s.authed(s.profile))

	mux.HandleFunc("GET /books/{$}", s.authed(s.listBooks))
	mux.HandleFunc("POST /books/{$}", s.authed(s.createBook))
	mux.HandleFunc("DELETE /books/{$}", s.authed(s.deleteAllBooks))
	mux.HandleFunc("GET /books/{id}", s.authed(s.getBook))
	mux.HandleFunc("PUT /books/{id}", s.authed(s.updateBook))
	mux.HandleFunc("DELETE /books/{id}", s.authed(s.deleteBook))

	mux.HandleFunc("GET /readers/{$}", s.authed(s.listReaders))
	mux.HandleFunc("POST /readers/{$}", s.authed(s.createReader))
	mux.HandleFunc("DELETE /readers/{$}", s.authed(s.deleteAllReaders))
	mux.HandleFunc("GET /readers/{id}", s.authed(s.getReader))
	mux.HandleFunc("PUT /readers/{id}", s.authed(s.updateReader))
	mux.HandleFunc("DELETE /readers/{id}", s.authed(s.deleteReader))
	mux.HandleFunc("POST /readers/{id}/books/{bookId}", s.authed(s.addReading))
	mux.HandleFunc("DELETE /readers/{id}/books/{bookId}", s.authed(s.removeReading))

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.requests = append(s.requests, key)
		status, forced := s.Fail[key]
		s.mu.Unlock()

		if forced {
			writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// SeedBooks stores books, assigning IDs to those without one.
func (s *CatalogServer) SeedBooks(books ...models.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range books {
		if b.ID == 0 {
			b.ID = s.nextID
		}
		s.nextID = max(s.nextID, b.ID+1)
		s.books = append(s.books, b)
	}
}

// SeedReaders stores readers, assigning IDs to those without one.
func (s *CatalogServer) SeedReaders(readers ...models.Reader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range readers {
		if r.ID == 0 {
			r.ID = s.nextID
		}
		s.nextID = max(s.nextID, r.ID+1)
		s.readers = append(s.readers, r)
	}
}

// Books returns a copy of the stored books.
func (s *CatalogServer) Books() []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.books)
}

// Reader returns the stored reader with id.
func (s *CatalogServer) Reader(id uint) (models.Reader, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.readers, func(r models.Reader) bool { return r.ID == id })
	if i < 0 {
		return models.Reader{}, false
	}
	return s.readers[i], true
}

// Requests returns "METHOD /path" for each request received.
func (s *CatalogServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeFieldErrors(w http.ResponseWriter, fields ...string) {
	errs := make([]map[string]string, 0, len(fields))
	for _, f := range fields {
		errs = append(errs, map[string]string{"field": f, "message": f + " is required"})
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}

func (s *CatalogServer) authed(next func(http.ResponseWriter, *http.Request, models.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		switch {
		case ok && token == TestToken:
			next(w, r, models.User{ID: 1, Username: TestUsername, Email: "ada@example.com", Role: models.RoleUser})
		case ok && token == AdminToken:
			next(w, r, models.User{ID: 2, Username: "admin", Email: "admin@example.com", Role: models.RoleAdmin})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authorization header required"})
		}
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
		return 0, false
	}
	return uint(id), true
}

func (s *CatalogServer) register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}
	if in.Username == TestUsername {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Username already exists"})
		return
	}
	writeJSON(w, http.StatusCreated, models.AuthResponse{Token: TestToken, UserID: 3, Username: in.Username, Email: in.Email, Role: models.RoleUser})
}

func (s *CatalogServer) login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}
	if in.Username != TestUsername || in.Password != TestPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResponse{Token: TestToken, UserID: 1, Username: TestUsername, Email: "ada@example.com", Role: models.RoleUser})
}

func (s *CatalogServer) profile(w http.ResponseWriter, _ *http.Request, u models.User) {
	writeJSON(w, http.StatusOK, u)
}

func (s *CatalogServer) listBooks(w http.ResponseWriter, _ *http.Request, _ models.User) {
	writeJSON(w, http.StatusOK, s.Books())
}

func (s *CatalogServer) createBook(w http.ResponseWriter, r *http.Request, u models.User) {
	var in models.BookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}
	if in.Title == "" {
		writeFieldErrors(w, "Title")
		return
	}

	s.mu.Lock()
	b := models.Book{ID: s.nextID, Title: in.Title, Description: in.Description, UserID: u.ID, Username: u.Username, CreatedAt: time.Now()}
	s.nextID++
	s.books = append(s.books, b)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, b)
}

func (s *CatalogServer) getBook(w http.ResponseWriter, r *http.Request, _ models.User) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	i := slices.IndexFunc(s.books, func(b models.Book) bool { return b.ID == id })
	var b models.Book
	if i >= 0 {
		b = s.books[i]
	}
	s.mu.Unlock()

	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Book not found"})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *CatalogServer) updateBook(w http.ResponseWriter, r *http.Request, u models.User) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in models.BookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.books, func(b models.Book) bool { return b.ID == id })
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Book not found"})
		return
	}
	if !s.books[i].CanEdit(&u) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "You can only modify your own books"})
		return
	}
	s.books[i].Title, s.books[i].Description = in.Title, in.Description
	writeJSON(w, http.StatusOK, s.books[i])
}

func (s *CatalogServer) deleteBook(w http.ResponseWriter, r *http.Request, u models.User) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.books, func(b models.Book) bool { return b.ID == id })
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Book not found"})
		return
	}
	if !s.books[i].CanEdit(&u) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "You can only delete your own books"})
		return
	}
	s.books = slices.Delete(s.books, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *CatalogServer) deleteAllBooks(w http.ResponseWriter, _ *http.Request, _ models.User) {
	s.mu.Lock()
	s.books = nil
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *CatalogServer) listReaders(w http.ResponseWriter, _ *http.Request, _ models.User) {
	s.mu.Lock()
	out := slices.Clone(s.readers)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *CatalogServer) createReader(w http.ResponseWriter, r *http.Request, _ models.User) {
	var in models.ReaderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}

	var missing []string
	if in.Name == "" {
		missing = append(missing, "Name")
	}
	if in.Surname == "" {
		missing = append(missing, "Surname")
	}
	if len(missing) > 0 {
		writeFieldErrors(w, missing...)
		return
	}

	s.mu.Lock()
	rd := models.Reader{ID: s.nextID, Name: in.Name, Surname: in.Surname, CurrentlyReading: []models.Book{}, CreatedAt: time.Now()}
	s.nextID++
	s.readers = append(s.readers, rd)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, rd)
}

func (s *CatalogServer) getReader(w http.ResponseWriter, r *http.Request, _ models.User) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rd, found := s.Reader(id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Reader not found"})
		return
	}
	writeJSON(w, http.StatusOK, rd)
}

func (s *CatalogServer) updateReader(w http.ResponseWriter, r *http.Request, _ models.User) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in models.ReaderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.readers, func(r models.Reader) bool { return r.ID == id })
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Reader not found"})
		return
	}
	s.readers[i].Name, s.readers[i].Surname = in.Name, in.Surname
	writeJSON(w, http.StatusOK, s.readers[i])
}

func (s *CatalogServer) deleteReader(w http.ResponseWriter, r *http.Request, _ models.User) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.readers, func(r models.Reader) bool { return r.ID == id })
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Reader not found"})
		return
	}
	s.readers = slices.Delete(s.readers, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *CatalogServer) deleteAllReaders(w http.ResponseWriter, _ *http.Request, _ models.User) {
	s.mu.Lock()
	s.readers = nil
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *CatalogServer) addReading(w http.ResponseWriter, r *http.Request, _ models.User) {
	s.changeReading(w, r, func(rd *models.Reader, b models.Book) {
		if !rd.IsReading(b.ID) {
			rd.CurrentlyReading = append(rd.CurrentlyReading, b)
		}
	})
}

func (s *CatalogServer) removeReading(w http.ResponseWriter, r *http.Request, _ models.User) {
	s.changeReading(w, r, func(rd *models.Reader, b models.Book) {
		rd.CurrentlyReading = slices.DeleteFunc(rd.CurrentlyReading, func(x models.Book) bool { return x.ID == b.ID })
	})
}

func (s *CatalogServer) changeReading(w http.ResponseWriter, r *http.Request, apply func(*models.Reader, models.Book)) {
	readerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	bookID, ok := pathID(w, r, "bookId")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ri := slices.IndexFunc(s.readers, func(r models.Reader) bool { return r.ID == readerID })
	bi := slices.IndexFunc(s.books, func(b models.Book) bool { return b.ID == bookID })
	if ri < 0 || bi < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("Reader %d or book %d not found", readerID, bookID)})
		return
	}
	apply(&s.readers[ri], s.books[bi])
	w.WriteHeader(http.StatusNoContent)
}
