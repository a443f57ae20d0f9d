// package tasks implements multi-request catalog operations: aggregate statistics
// and rate-limited bulk changes.
package tasks

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libcat/internal/models"
)

// CatalogClient is the subset of the catalog API the engine drives.
type CatalogClient interface {
	ListBooks(ctx context.Context) ([]models.Book, error)
	ListReaders(ctx context.Context) ([]models.Reader, error)
	DeleteBook(ctx context.Context, id uint) error
	DeleteReader(ctx context.Context, id uint) error
	AddCurrentlyReading(ctx context.Context, readerID, bookID uint) error
	RemoveCurrentlyReading(ctx context.Context, readerID, bookID uint) error
}

// CatalogEngine runs operations that span several API requests.
type CatalogEngine struct {
	catalog CatalogClient
	logger  *log.Logger
}

// NewCatalogEngine creates a new CatalogEngine. A nil logger discards output.
func NewCatalogEngine(catalog CatalogClient, logger *log.Logger) *CatalogEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CatalogEngine{catalog: catalog, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *CatalogEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
