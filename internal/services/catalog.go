package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libcat/internal/models"
	"github.com/desertthunder/libcat/internal/shared"
)

// CatalogService is the typed client for the library catalog API.
type CatalogService struct {
	api    *APIService
	logger *log.Logger
}

// NewCatalogService wraps api. A nil logger discards debug output.
func NewCatalogService(api *APIService, logger *log.Logger) *CatalogService {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CatalogService{api: api, logger: logger}
}

// WithToken returns a client that sends token as a bearer credential.
func (c *CatalogService) WithToken(token string) *CatalogService {
	return &CatalogService{api: c.api.WithToken(token), logger: c.logger}
}

// API exposes the underlying transport for raw requests.
func (c *CatalogService) API() *APIService { return c.api }

// request sends in (if non-nil) as JSON and decodes the response into out (if non-nil).
func (c *CatalogService) request(ctx context.Context, method, path string, in, out any) error {
	var data []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		data = b
	}

	c.logger.Debug("api request", "method", method, "path", path)

	resp, err := c.api.Do(ctx, method, path, data)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: unable to connect to the server at %s: %v", shared.ErrServiceUnavailable, c.api.BaseURL(), err)
	}

	if err := checkResponse(resp); err != nil {
		c.logger.Debug("api error", "method", method, "path", path, "status", resp.StatusCode, "err", err)
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

// Register creates an account and returns its token.
func (c *CatalogService) Register(ctx context.Context, in models.RegisterInput) (*models.AuthResponse, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	var out models.AuthResponse
	if err := c.request(ctx, http.MethodPost, "/auth/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token.
func (c *CatalogService) Login(ctx context.Context, in models.LoginInput) (*models.AuthResponse, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	var out models.AuthResponse
	if err := c.request(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("%w: login response has no token", shared.ErrAuthFailed)
	}
	return &out, nil
}

// Profile returns the account the current token belongs to.
func (c *CatalogService) Profile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.request(ctx, http.MethodGet, "/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CatalogService) ListBooks(ctx context.Context) ([]models.Book, error) {
	var out []models.Book
	if err := c.request(ctx, http.MethodGet, "/books/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogService) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	var out models.Book
	if err := c.request(ctx, http.MethodGet, fmt.Sprintf("/books/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CatalogService) CreateBook(ctx context.Context, in models.BookInput) (*models.Book, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	var out models.Book
	if err := c.request(ctx, http.MethodPost, "/books/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CatalogService) UpdateBook(ctx context.Context, id uint, in models.BookInput) (*models.Book, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	var out models.Book
	if err := c.request(ctx, http.MethodPut, fmt.Sprintf("/books/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CatalogService) DeleteBook(ctx context.Context, id uint) error {
	return c.request(ctx, http.MethodDelete, fmt.Sprintf("/books/%d", id), nil, nil)
}

func (c *CatalogService) DeleteAllBooks(ctx context.Context) error {
	return c.request(ctx, http.MethodDelete, "/books/", nil, nil)
}

func (c *CatalogService) ListReaders(ctx context.Context) ([]models.Reader, error) {
	var out []models.Reader
	if err := c.request(ctx, http.MethodGet, "/readers/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogService) GetReader(ctx context.Context, id uint) (*models.Reader, error) {
	var out models.Reader
	if err := c.request(ctx, http.MethodGet, fmt.Sprintf("/readers/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CatalogService) CreateReader(ctx context.Context, in models.ReaderInput) (*models.Reader, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	var out models.Reader
	if err := c.request(ctx, http.MethodPost, "/readers/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CatalogService) UpdateReader(ctx context.Context, id uint, in models.ReaderInput) (*models.Reader, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	var out models.Reader
	if err := c.request(ctx, http.MethodPut, fmt.Sprintf("/readers/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CatalogService) DeleteReader(ctx context.Context, id uint) error {
	return c.request(ctx, http.MethodDelete, fmt.Sprintf("/readers/%d", id), nil, nil)
}

func (c *CatalogService) DeleteAllReaders(ctx context.Context) error {
	return c.request(ctx, http.MethodDelete, "/readers/", nil, nil)
}

// AddCurrentlyReading puts a book on a reader's currently-reading list.
func (c *CatalogService) AddCurrentlyReading(ctx context.Context, readerID, bookID uint) error {
	return c.request(ctx, http.MethodPost, fmt.Sprintf("/readers/%d/books/%d", readerID, bookID), nil, nil)
}

// RemoveCurrentlyReading takes a book off a reader's currently-reading list.
func (c *CatalogService) RemoveCurrentlyReading(ctx context.Context, readerID, bookID uint) error {
	return c.request(ctx, http.MethodDelete, fmt.Sprintf("/readers/%d/books/%d", readerID, bookID), nil, nil)
}

// AvailableBooks returns every book not already on the reader's list.
func (c *CatalogService) AvailableBooks(ctx context.Context, readerID uint) ([]models.Book, error) {
	reader, err := c.GetReader(ctx, readerID)
	if err != nil {
		return nil, err
	}
	books, err := c.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(books, func(b models.Book) bool { return reader.IsReading(b.ID) }), nil
}
