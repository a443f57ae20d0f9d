package ui

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/libcat/internal/listview"
	"github.com/desertthunder/libcat/internal/models"
	"github.com/desertthunder/libcat/internal/services"
	"github.com/desertthunder/libcat/internal/tasks"
	tu "github.com/desertthunder/libcat/internal/testing"
)

type recordingSaver struct {
	saved map[string]listview.State
}

func (s *recordingSaver) Save(collection string, state listview.State) error {
	if s.saved == nil {
		s.saved = map[string]listview.State{}
	}
	s.saved[collection] = state
	return nil
}

func newTestModel(t *testing.T, books int, opts Options) (*Model, *tu.CatalogServer) {
	t.Helper()
	server := tu.NewCatalogServer(t)
	for i := range books {
		server.SeedBooks(models.Book{Title: fmt.Sprintf("Book %02d", i+1), Description: "shelf"})
	}
	server.SeedReaders(models.Reader{Name: "Ada", Surname: "Lovelace"}, models.Reader{Name: "Alan", Surname: "Turing"})

	catalog := services.NewCatalogService(services.NewAPIService(server.URL, nil), nil).WithToken(tu.TestToken)
	bookView, err := models.NewBookView(listview.Sort{}, 0)
	if err != nil {
		t.Fatalf("failed to build book view: %v", err)
	}
	readerView, err := models.NewReaderView(listview.Sort{}, 0)
	if err != nil {
		t.Fatalf("failed to build reader view: %v", err)
	}

	opts.Catalog = catalog
	opts.Books = bookView
	opts.Readers = readerView
	return NewModel(context.Background(), opts), server
}

// drain runs cmd and every command it produces, feeding application messages back into m.
// Other messages (cursor blinks, quit) are discarded.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case Msg:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestModelInit(t *testing.T) {
	m, server := newTestModel(t, 3, Options{})
	drain(t, m, m.Init())

	if m.Err() != nil {
		t.Fatalf("expected no error, got %v", m.Err())
	}
	if m.books.view.Len() != 3 {
		t.Errorf("expected 3 books, got %d", m.books.view.Len())
	}
	if m.readers.view.Len() != 2 {
		t.Errorf("expected 2 readers, got %d", m.readers.view.Len())
	}

	view := m.View()
	for _, want := range []string{"Book 03", "Showing 1-3 of 3 books", "sorted by id-desc"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q\n%s", want, view)
		}
	}

	if got := len(server.Requests()); got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}
}

func TestModelStaleResponse(t *testing.T) {
	m, server := newTestModel(t, 1, Options{})
	ctx := context.Background()

	first := m.books.reload(ctx)
	second := m.books.reload(ctx)

	older := first()
	server.SeedBooks(models.Book{Title: "Late Arrival"})
	newer := second()

	m.Update(newer)
	m.Update(older)

	if m.books.view.Len() != 2 {
		t.Errorf("expected newest response to win with 2 books, got %d", m.books.view.Len())
	}
	if m.books.loading() {
		t.Error("expected pane to stop loading after the latest response")
	}
}

func TestModelKeys(t *testing.T) {
	tests := []struct {
		name  string
		keys  []string
		check func(t *testing.T, m *Model)
	}{
		{
			name: "Cycle Sort Field",
			keys: []string{"s"},
			check: func(t *testing.T, m *Model) {
				want := listview.Sort{Field: models.FieldTitle, Direction: listview.Descending}
				if got := m.books.view.Sort(); got != want {
					t.Errorf("expected %v, got %v", want, got)
				}
			},
		},
		{
			name: "Cycle Sort Wraps",
			keys: []string{"s", "s"},
			check: func(t *testing.T, m *Model) {
				if got := m.books.view.Sort().Field; got != models.FieldID {
					t.Errorf("expected id, got %s", got)
				}
			},
		},
		{
			name: "Toggle Direction",
			keys: []string{"d"},
			check: func(t *testing.T, m *Model) {
				if got := m.books.view.Sort().Direction; got != listview.Ascending {
					t.Errorf("expected asc, got %s", got)
				}
				if first := m.books.view.CurrentPageItems()[0]; first.Title != "Book 01" {
					t.Errorf("expected Book 01 first, got %s", first.Title)
				}
			},
		},
		{
			name: "Next Page",
			keys: []string{"l", "right"},
			check: func(t *testing.T, m *Model) {
				if got := m.books.view.CurrentPage(); got != 3 {
					t.Errorf("expected page 3, got %d", got)
				}
			},
		},
		{
			name: "Next Page Stops At Last",
			keys: []string{"l", "l", "l", "l"},
			check: func(t *testing.T, m *Model) {
				if got := m.books.view.CurrentPage(); got != 3 {
					t.Errorf("expected page 3, got %d", got)
				}
			},
		},
		{
			name: "Previous Page",
			keys: []string{"l", "l", "h"},
			check: func(t *testing.T, m *Model) {
				if got := m.books.view.CurrentPage(); got != 2 {
					t.Errorf("expected page 2, got %d", got)
				}
			},
		},
		{
			name: "Grow Page Size",
			keys: []string{"l", "+"},
			check: func(t *testing.T, m *Model) {
				if got := m.books.view.PageSize(); got != 20 {
					t.Errorf("expected page size 20, got %d", got)
				}
				if got := m.books.view.CurrentPage(); got != 1 {
					t.Errorf("expected page reset to 1, got %d", got)
				}
			},
		},
		{
			name: "Shrink Page Size",
			keys: []string{"-", "-"},
			check: func(t *testing.T, m *Model) {
				if got := m.books.view.PageSize(); got != 5 {
					t.Errorf("expected page size to stop at 5, got %d", got)
				}
			},
		},
		{
			name: "Toggle Help",
			keys: []string{"?"},
			check: func(t *testing.T, m *Model) {
				if !m.help.ShowAll {
					t.Error("expected full help")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t, 25, Options{})
			drain(t, m, m.Init())
			press(m, tt.keys...)
			tt.check(t, m)
		})
	}
}

func TestModelSearch(t *testing.T) {
	m, server := newTestModel(t, 12, Options{})
	server.SeedBooks(models.Book{Title: "The Go Programming Language"})
	drain(t, m, m.Init())

	t.Run("Typing Filters", func(t *testing.T) {
		press(m, "/", "g", "o")
		if !m.searching {
			t.Fatal("expected search mode")
		}
		if got := m.books.searchTerm(); got != "go" {
			t.Errorf("expected term go, got %q", got)
		}
		if got := m.books.view.Len(); got != 1 {
			t.Errorf("expected 1 match, got %d", got)
		}
	})

	t.Run("Enter Keeps Filter", func(t *testing.T) {
		press(m, "enter")
		if m.searching {
			t.Error("expected search mode to end")
		}
		if got := m.books.searchTerm(); got != "go" {
			t.Errorf("expected term kept, got %q", got)
		}
		if !strings.Contains(m.View(), `Filtered by "go"`) {
			t.Error("expected filter indicator in view")
		}
	})

	t.Run("Keys Do Not Leak While Searching", func(t *testing.T) {
		press(m, "/", "s")
		if got := m.books.view.Sort().Field; got != models.FieldID {
			t.Errorf("expected sort unchanged, got %s", got)
		}
		if got := m.books.searchTerm(); got != "gos" {
			t.Errorf("expected term gos, got %q", got)
		}
	})

	t.Run("Escape Clears", func(t *testing.T) {
		press(m, "esc")
		if m.searching {
			t.Error("expected search mode to end")
		}
		if got := m.books.view.Len(); got != 13 {
			t.Errorf("expected all 13 books, got %d", got)
		}
	})
}

func TestModelTabs(t *testing.T) {
	saver := &recordingSaver{}
	m, _ := newTestModel(t, 25, Options{States: saver})
	drain(t, m, m.Init())

	press(m, "l")
	drain(t, m, press(m, "tab"))

	if m.ActiveView() != ReadersView {
		t.Fatalf("expected readers tab, got %d", m.ActiveView())
	}
	if !strings.Contains(m.View(), "Lovelace") {
		t.Error("expected readers in view")
	}
	if got := saver.saved[models.CollectionBooks].Page; got != 2 {
		t.Errorf("expected saved books page 2, got %d", got)
	}

	drain(t, m, press(m, "shift+tab"))
	if m.ActiveView() != BooksView {
		t.Fatalf("expected books tab, got %d", m.ActiveView())
	}
	if got := m.books.view.CurrentPage(); got != 2 {
		t.Errorf("expected books page kept at 2, got %d", got)
	}

	drain(t, m, press(m, "shift+tab"))
	if m.ActiveView() != StatsView {
		t.Errorf("expected tab to wrap to stats, got %d", m.ActiveView())
	}
}

func TestModelRestoresSavedState(t *testing.T) {
	saved := &listview.State{
		Sort:     listview.Sort{Field: models.FieldTitle, Direction: listview.Ascending},
		PageSize: 5,
		Page:     3,
	}
	m, _ := newTestModel(t, 12, Options{SavedBooks: saved})
	drain(t, m, m.Init())

	if got := m.books.state(); got != *saved {
		t.Errorf("expected %+v, got %+v", *saved, got)
	}

	t.Run("Reload Keeps Position", func(t *testing.T) {
		drain(t, m, press(m, "r"))
		if got := m.books.view.CurrentPage(); got != 3 {
			t.Errorf("expected page 3 after reload, got %d", got)
		}
	})

	t.Run("Saved Page Is Clamped", func(t *testing.T) {
		far := &listview.State{Sort: models.DefaultBookSort, PageSize: 10, Page: 40}
		m, _ := newTestModel(t, 12, Options{SavedBooks: far})
		drain(t, m, m.Init())
		if got := m.books.view.CurrentPage(); got != 2 {
			t.Errorf("expected page clamped to 2, got %d", got)
		}
	})

	t.Run("Invalid Saved State Is Ignored", func(t *testing.T) {
		bad := &listview.State{Sort: listview.Sort{Field: "isbn", Direction: listview.Ascending}, PageSize: 10, Page: 1}
		m, _ := newTestModel(t, 3, Options{SavedBooks: bad})
		drain(t, m, m.Init())
		if got := m.books.view.Sort(); got != models.DefaultBookSort {
			t.Errorf("expected default sort, got %v", got)
		}
		if got := m.books.view.Len(); got != 3 {
			t.Errorf("expected 3 books, got %d", got)
		}
	})
}

func TestModelActionsBeforeFirstLoad(t *testing.T) {
	saved := &listview.State{
		Filter:   listview.Filter{Search: "old"},
		Sort:     listview.Sort{Field: models.FieldTitle, Direction: listview.Ascending},
		PageSize: 5,
		Page:     2,
	}

	t.Run("Search Wins Over Saved Filter", func(t *testing.T) {
		m, _ := newTestModel(t, 12, Options{SavedBooks: saved})
		init := m.Init()
		press(m, "/", "esc", "/", "0", "7", "enter")
		drain(t, m, init)

		if got := m.books.searchTerm(); got != "07" {
			t.Errorf("expected term 07, got %q", got)
		}
		if got := m.books.view.Len(); got != 1 {
			t.Errorf("expected 1 match, got %d", got)
		}
		if got := m.books.view.Sort(); got != saved.Sort {
			t.Errorf("expected saved sort %v kept, got %v", saved.Sort, got)
		}
		if got := m.books.view.CurrentPage(); got != 1 {
			t.Errorf("expected page 1, got %d", got)
		}
	})

	t.Run("Sort Wins Over Saved Sort", func(t *testing.T) {
		m, _ := newTestModel(t, 12, Options{SavedBooks: &listview.State{Sort: models.DefaultBookSort, PageSize: 5, Page: 3}})
		init := m.Init()
		press(m, "d")
		drain(t, m, init)

		if got := m.books.view.Sort().Direction; got != listview.Ascending {
			t.Errorf("expected direction asc, got %s", got)
		}
		if got := m.books.view.CurrentPage(); got != 1 {
			t.Errorf("expected page 1 after sorting, got %d", got)
		}
	})

	t.Run("Untouched Pane Restores Page", func(t *testing.T) {
		m, _ := newTestModel(t, 12, Options{SavedBooks: &listview.State{Sort: models.DefaultBookSort, PageSize: 5, Page: 3}})
		drain(t, m, m.Init())

		if got := m.books.view.CurrentPage(); got != 3 {
			t.Errorf("expected saved page 3, got %d", got)
		}
	})
}

func TestPaneSearchBeforeFirstLoad(t *testing.T) {
	view, _ := models.NewBookView(listview.Sort{}, 0)
	saved := &listview.State{Filter: listview.Filter{Search: "old"}, Sort: models.DefaultBookSort, PageSize: 10, Page: 1}
	p := newBookPane(nil, view, nil, saved)

	p.reload(context.Background())
	p.search("dune")
	p.receive(fetchResult{collection: models.CollectionBooks, seq: 1, items: []models.Book{{ID: 1, Title: "Dune"}}})

	if got := p.searchTerm(); got != "dune" {
		t.Errorf("expected term dune, got %q", got)
	}
	if got := p.view.Len(); got != 1 {
		t.Errorf("expected 1 match, got %d", got)
	}
}

func TestModelQuitSavesState(t *testing.T) {
	saver := &recordingSaver{}
	m, _ := newTestModel(t, 3, Options{States: saver})
	drain(t, m, m.Init())

	press(m, "d")
	cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}

	if len(saver.saved) != 2 {
		t.Fatalf("expected both collections saved, got %d", len(saver.saved))
	}
	if got := saver.saved[models.CollectionBooks].Sort.Direction; got != listview.Ascending {
		t.Errorf("expected saved direction asc, got %s", got)
	}
}

func TestModelErrors(t *testing.T) {
	m, server := newTestModel(t, 3, Options{})
	server.Fail["GET /books/"] = http.StatusInternalServerError
	drain(t, m, m.Init())

	if m.Err() == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(m.View(), "Error:") {
		t.Error("expected error in view")
	}

	delete(server.Fail, "GET /books/")
	drain(t, m, press(m, "r"))
	if m.Err() != nil {
		t.Errorf("expected error cleared after reload, got %v", m.Err())
	}
	if m.books.view.Len() != 3 {
		t.Errorf("expected 3 books, got %d", m.books.view.Len())
	}
}

func TestModelStats(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	server := tu.NewCatalogServer(t)
	server.SeedBooks(
		models.Book{Title: "Today", CreatedAt: now.Add(-time.Hour)},
		models.Book{Title: "Yesterday", CreatedAt: now.AddDate(0, 0, -1)},
	)
	server.SeedReaders(models.Reader{Name: "Ada", Surname: "Lovelace", CreatedAt: now})

	catalog := services.NewCatalogService(services.NewAPIService(server.URL, nil), nil).WithToken(tu.TestToken)
	bookView, _ := models.NewBookView(listview.Sort{}, 0)
	readerView, _ := models.NewReaderView(listview.Sort{}, 0)
	m := NewModel(context.Background(), Options{
		Catalog: catalog,
		Engine:  tasks.NewCatalogEngine(catalog, nil),
		Books:   bookView,
		Readers: readerView,
		Now:     func() time.Time { return now },
	})

	drain(t, m, press(m, "shift+tab"))

	if m.ActiveView() != StatsView {
		t.Fatalf("expected stats tab, got %d", m.ActiveView())
	}
	if m.Err() != nil {
		t.Fatalf("expected no error, got %v", m.Err())
	}
	if m.stats == nil {
		t.Fatal("expected stats")
	}
	if m.stats.TotalBooks != 2 || m.stats.BooksToday != 1 || m.stats.ReadersToday != 1 {
		t.Errorf("unexpected stats %+v", m.stats)
	}
	if !strings.Contains(m.View(), "Catalog Statistics") {
		t.Error("expected stats title in view")
	}
}

func TestModelErrorClearedOnKey(t *testing.T) {
	server := tu.NewCatalogServer(t)
	server.SeedBooks(models.Book{Title: "Dune"})

	catalog := services.NewCatalogService(services.NewAPIService(server.URL, nil), nil).WithToken(tu.TestToken)
	bookView, _ := models.NewBookView(listview.Sort{}, 0)
	readerView, _ := models.NewReaderView(listview.Sort{}, 0)
	m := NewModel(context.Background(), Options{
		Catalog: catalog,
		Engine:  tasks.NewCatalogEngine(catalog, nil),
		Books:   bookView,
		Readers: readerView,
	})
	drain(t, m, m.Init())

	server.Fail["GET /readers/"] = http.StatusInternalServerError
	drain(t, m, press(m, "shift+tab"))
	if m.Err() == nil {
		t.Fatal("expected stats error")
	}

	delete(server.Fail, "GET /readers/")
	press(m, "tab")
	if m.ActiveView() != BooksView {
		t.Fatalf("expected books tab, got %d", m.ActiveView())
	}
	if err := m.Err(); err != nil {
		t.Errorf("expected error cleared, got %v", err)
	}
	if strings.Contains(m.View(), "Error:") {
		t.Error("expected no error in view")
	}
}
