// package services implements the HTTP client for the library catalog API
package services

import (
	"context"

	"github.com/desertthunder/libcat/internal/models"
)

// Collection is a remote source of a full item set. The list view replaces
// its items wholesale with each successful Fetch.
type Collection[T any] interface {
	Fetch(ctx context.Context) ([]T, error)
}

// Catalog is the set of catalog operations the CLI and TUI depend on.
// [CatalogService] implements it.
type Catalog interface {
	Register(ctx context.Context, in models.RegisterInput) (*models.AuthResponse, error)
	Login(ctx context.Context, in models.LoginInput) (*models.AuthResponse, error)
	Profile(ctx context.Context) (*models.User, error)

	ListBooks(ctx context.Context) ([]models.Book, error)
	GetBook(ctx context.Context, id uint) (*models.Book, error)
	CreateBook(ctx context.Context, in models.BookInput) (*models.Book, error)
	UpdateBook(ctx context.Context, id uint, in models.BookInput) (*models.Book, error)
	DeleteBook(ctx context.Context, id uint) error
	DeleteAllBooks(ctx context.Context) error

	ListReaders(ctx context.Context) ([]models.Reader, error)
	GetReader(ctx context.Context, id uint) (*models.Reader, error)
	CreateReader(ctx context.Context, in models.ReaderInput) (*models.Reader, error)
	UpdateReader(ctx context.Context, id uint, in models.ReaderInput) (*models.Reader, error)
	DeleteReader(ctx context.Context, id uint) error
	DeleteAllReaders(ctx context.Context) error

	AddCurrentlyReading(ctx context.Context, readerID, bookID uint) error
	RemoveCurrentlyReading(ctx context.Context, readerID, bookID uint) error
	AvailableBooks(ctx context.Context, readerID uint) ([]models.Book, error)
}

var _ Catalog = (*CatalogService)(nil)

// BookSource adapts a [Catalog] to a book [Collection].
type BookSource struct{ Catalog Catalog }

func (s BookSource) Fetch(ctx context.Context) ([]models.Book, error) {
	return s.Catalog.ListBooks(ctx)
}

// ReaderSource adapts a [Catalog] to a reader [Collection].
type ReaderSource struct{ Catalog Catalog }

func (s ReaderSource) Fetch(ctx context.Context) ([]models.Reader, error) {
	return s.Catalog.ListReaders(ctx)
}
