package tasks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/libcat/internal/models"
	"github.com/desertthunder/libcat/internal/shared"
)

// fakeCatalog is an in-memory [CatalogClient].
type fakeCatalog struct {
	mu       sync.Mutex
	books    []models.Book
	readers  []models.Reader
	booksErr error
	failIDs  map[uint]error
	calls    []string
	inFlight int
	peak     int
}

func (f *fakeCatalog) ListBooks(context.Context) ([]models.Book, error) {
	f.record("list_books")
	return f.books, f.booksErr
}

func (f *fakeCatalog) ListReaders(context.Context) ([]models.Reader, error) {
	f.record("list_readers")
	return f.readers, nil
}

func (f *fakeCatalog) DeleteBook(ctx context.Context, id uint) error {
	return f.apply(ctx, fmt.Sprintf("delete_book %d", id), id)
}

func (f *fakeCatalog) DeleteReader(ctx context.Context, id uint) error {
	return f.apply(ctx, fmt.Sprintf("delete_reader %d", id), id)
}

func (f *fakeCatalog) AddCurrentlyReading(ctx context.Context, readerID, bookID uint) error {
	return f.apply(ctx, fmt.Sprintf("add %d %d", readerID, bookID), bookID)
}

func (f *fakeCatalog) RemoveCurrentlyReading(ctx context.Context, readerID, bookID uint) error {
	return f.apply(ctx, fmt.Sprintf("remove %d %d", readerID, bookID), bookID)
}

func (f *fakeCatalog) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeCatalog) apply(_ context.Context, call string, id uint) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.inFlight++
	f.peak = max(f.peak, f.inFlight)
	err := f.failIDs[id]
	f.mu.Unlock()

	time.Sleep(time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return err
}

func drain(ch chan ProgressUpdate) []ProgressUpdate {
	var out []ProgressUpdate
	for {
		select {
		case u := <-ch:
			out = append(out, u)
		default:
			return out
		}
	}
}

func TestStatistics(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.Local)

	t.Run("Counts Totals And Today", func(t *testing.T) {
		catalog := &fakeCatalog{
			books: []models.Book{
				{ID: 1, CreatedAt: now.Add(-time.Hour)},
				{ID: 2, CreatedAt: now.AddDate(0, 0, -2)},
				{ID: 3},
			},
			readers: []models.Reader{
				{ID: 1, CreatedAt: now.Add(-2 * time.Hour)},
				{ID: 2, CreatedAt: now.Add(-3 * time.Hour)},
			},
		}
		engine := NewCatalogEngine(catalog, nil)
		prog := make(chan ProgressUpdate, 10)

		stats, err := engine.Statistics(context.Background(), prog, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := Stats{TotalBooks: 3, TotalReaders: 2, BooksToday: 1, ReadersToday: 2, GeneratedAt: now}
		if *stats != want {
			t.Errorf("expected %+v, got %+v", want, *stats)
		}

		if !slices.Equal(catalog.calls, []string{"list_books", "list_readers"}) {
			t.Errorf("expected books then readers, got %v", catalog.calls)
		}

		updates := drain(prog)
		if len(updates) != 3 || updates[2].Phase != Aggregate {
			t.Errorf("unexpected progress updates %+v", updates)
		}
	})

	t.Run("Empty Collections", func(t *testing.T) {
		stats, err := NewCatalogEngine(&fakeCatalog{}, nil).Statistics(context.Background(), nil, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.TotalBooks != 0 || stats.ReadersToday != 0 {
			t.Errorf("expected zero stats, got %+v", stats)
		}
	})

	t.Run("Fetch Failure", func(t *testing.T) {
		catalog := &fakeCatalog{booksErr: shared.ErrServiceUnavailable}

		_, err := NewCatalogEngine(catalog, nil).Statistics(context.Background(), nil, now)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
		if slices.Contains(catalog.calls, "list_readers") {
			t.Error("readers should not be fetched after books fail")
		}
	})
}

func TestBulkOperations(t *testing.T) {
	fast := BulkOpts{NumWorkers: 3, RateLimit: 1000}

	t.Run("AssignBooks", func(t *testing.T) {
		catalog := &fakeCatalog{}
		prog := make(chan ProgressUpdate, 20)

		result, err := NewCatalogEngine(catalog, nil).AssignBooks(context.Background(), prog, 7, []uint{1, 2, 3, 4}, fast)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Total != 4 || result.Succeeded != 4 || result.Failed != 0 {
			t.Errorf("unexpected result %+v", result)
		}

		calls := slices.Clone(catalog.calls)
		slices.Sort(calls)
		if !slices.Equal(calls, []string{"add 7 1", "add 7 2", "add 7 3", "add 7 4"}) {
			t.Errorf("unexpected calls %v", calls)
		}

		updates := drain(prog)
		if len(updates) != 5 || updates[0].Step != 0 || updates[4].Step != 4 {
			t.Errorf("expected start plus one update per item, got %+v", updates)
		}
	})

	t.Run("Partial Failure", func(t *testing.T) {
		catalog := &fakeCatalog{failIDs: map[uint]error{2: shared.ErrNotFound}}

		result, err := NewCatalogEngine(catalog, nil).UnassignBooks(context.Background(), nil, 7, []uint{1, 2, 3}, fast)
		if err != nil {
			t.Fatalf("partial failures should not fail the operation: %v", err)
		}
		if result.Succeeded != 2 || result.Failed != 1 {
			t.Errorf("unexpected result %+v", result)
		}

		failed := result.Errors()
		if len(failed) != 1 || failed[0].ID != 2 || !errors.Is(failed[0].Error, shared.ErrNotFound) {
			t.Errorf("unexpected failures %+v", failed)
		}
	})

	t.Run("Worker Limit", func(t *testing.T) {
		catalog := &fakeCatalog{}
		ids := make([]uint, 20)
		for i := range ids {
			ids[i] = uint(i + 1)
		}

		result, err := NewCatalogEngine(catalog, nil).DeleteBooks(context.Background(), nil, ids, BulkOpts{NumWorkers: 2, RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Succeeded != 20 || result.Phase != DeleteBooks {
			t.Errorf("unexpected result %+v", result)
		}
		if catalog.peak > 2 {
			t.Errorf("expected at most 2 concurrent calls, saw %d", catalog.peak)
		}
	})

	t.Run("DeleteReaders", func(t *testing.T) {
		catalog := &fakeCatalog{}

		result, err := NewCatalogEngine(catalog, nil).DeleteReaders(context.Background(), nil, []uint{5}, fast)
		if err != nil || result.Succeeded != 1 {
			t.Fatalf("unexpected result %+v (%v)", result, err)
		}
		if catalog.calls[0] != "delete_reader 5" {
			t.Errorf("unexpected call %v", catalog.calls)
		}
	})

	t.Run("No IDs", func(t *testing.T) {
		_, err := NewCatalogEngine(&fakeCatalog{}, nil).DeleteBooks(context.Background(), nil, nil, fast)
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Canceled Context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := NewCatalogEngine(&fakeCatalog{}, nil).DeleteBooks(ctx, nil, []uint{1, 2, 3}, fast)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil || len(result.Results) == 3 {
			t.Errorf("expected an interrupted result, got %+v", result)
		}
	})

	t.Run("Deadline Before Next Token", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		result, err := NewCatalogEngine(&fakeCatalog{}, nil).DeleteBooks(ctx, nil, []uint{1, 2, 3}, BulkOpts{NumWorkers: 1, RateLimit: 0.5})
		if err == nil {
			t.Fatal("expected an interrupted operation")
		}
		if msg := err.Error(); strings.Contains(msg, "%!w") || !strings.Contains(msg, "context deadline") {
			t.Errorf("expected the limiter error to be wrapped, got %q", msg)
		}
		if result == nil || len(result.Results) != 1 {
			t.Errorf("expected one attempted item, got %+v", result)
		}
	})

	t.Run("Options Normalize", func(t *testing.T) {
		o := BulkOpts{NumWorkers: 50}.normalize()
		if o.NumWorkers != maxWorkers || o.RateLimit != defaultRateLimit {
			t.Errorf("unexpected normalized options %+v", o)
		}
		if (BulkOpts{}).normalize().NumWorkers != defaultWorkers {
			t.Error("expected default worker count")
		}
	})
}

func TestPhaseString(t *testing.T) {
	for p := FetchBooks; p <= DeleteReaders; p++ {
		if p.String() == "" {
			t.Errorf("phase %d has no name", p)
		}
	}
	if Phase(99).String() != "" {
		t.Error("unknown phase should have empty name")
	}
}
