package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/libcat/internal/formatter"
	"github.com/desertthunder/libcat/internal/listview"
	"github.com/desertthunder/libcat/internal/models"
	"github.com/desertthunder/libcat/internal/services"
)

// pageSizes are the steps used by the grow and shrink keys.
var pageSizes = []int{5, 10, 20, 50, 100}

// pane is one browsable collection tab.
type pane interface {
	collection() string
	reload(ctx context.Context) tea.Cmd
	receive(res fetchResult) bool
	loading() bool
	lastErr() error
	search(term string)
	searchTerm() string
	cycleSort() error
	toggleDirection() error
	nextPage() bool
	prevPage() bool
	resize(step int) error
	state() listview.State
	render() string
}

var (
	_ pane = (*collectionPane[models.Book])(nil)
	_ pane = (*collectionPane[models.Reader])(nil)
)

// collectionPane owns the list view of a single collection and the sequence
// number of its most recent request.
type collectionPane[T any] struct {
	name    string
	noun    string
	empty   string
	source  services.Collection[T]
	view    *listview.Model[T]
	columns []formatter.Column[T]

	seq       int
	pending   bool
	loaded    bool
	savedPage int
	err       error
}

func newBookPane(catalog services.Catalog, view *listview.Model[models.Book], user *models.User, saved *listview.State) *collectionPane[models.Book] {
	p := &collectionPane[models.Book]{
		name:    models.CollectionBooks,
		noun:    "books",
		empty:   "No books found.",
		source:  services.BookSource{Catalog: catalog},
		view:    view,
		columns: formatter.BookColumns(user),
	}
	p.applySaved(saved)
	return p
}

func newReaderPane(catalog services.Catalog, view *listview.Model[models.Reader], saved *listview.State) *collectionPane[models.Reader] {
	p := &collectionPane[models.Reader]{
		name:    models.CollectionReaders,
		noun:    "readers",
		empty:   "No readers found.",
		source:  services.ReaderSource{Catalog: catalog},
		view:    view,
		columns: formatter.ReaderColumns(),
	}
	p.applySaved(saved)
	return p
}

// applySaved restores the filter, sort and page size right away. The page can
// only be restored once items exist, so it waits for the first load unless the
// user moves first. An invalid state is ignored.
func (p *collectionPane[T]) applySaved(saved *listview.State) {
	if saved == nil || p.view.Restore(*saved) != nil {
		return
	}
	p.savedPage = saved.Page
}

func (p *collectionPane[T]) collection() string { return p.name }
func (p *collectionPane[T]) loading() bool      { return p.pending }
func (p *collectionPane[T]) lastErr() error     { return p.err }

// reload issues a new request and supersedes any request still in flight.
func (p *collectionPane[T]) reload(ctx context.Context) tea.Cmd {
	p.seq++
	p.pending = true
	seq, name, source := p.seq, p.name, p.source
	return func() tea.Msg {
		items, err := source.Fetch(ctx)
		return fetchedMsg(name, seq, items, err)
	}
}

// receive applies a fetch result. It reports false when the result belongs to
// a superseded request and was dropped.
func (p *collectionPane[T]) receive(res fetchResult) bool {
	if res.seq != p.seq {
		return false
	}
	p.pending = false
	p.err = res.err
	if res.err != nil {
		return true
	}

	items, _ := res.items.([]T)
	page := p.view.CurrentPage()
	if p.savedPage > 0 {
		page = p.savedPage
	}
	p.view.SetItems(items)
	p.view.GoToPage(min(page, p.view.TotalPages()))
	p.savedPage = 0
	p.loaded = true
	return true
}

func (p *collectionPane[T]) search(term string) {
	p.savedPage = 0
	p.view.SetFilter(listview.Filter{Search: term})
}

func (p *collectionPane[T]) searchTerm() string { return p.view.Filter().Search }

// cycleSort moves to the next sortable field, keeping the direction.
func (p *collectionPane[T]) cycleSort() error {
	p.savedPage = 0
	fields := p.view.Fields()
	current := p.view.Sort()
	i := slices.Index(fields, current.Field)
	next := fields[(i+1)%len(fields)]
	return p.view.SetSort(listview.Sort{Field: next, Direction: current.Direction})
}

func (p *collectionPane[T]) toggleDirection() error {
	p.savedPage = 0
	s := p.view.Sort()
	if s.Direction == listview.Ascending {
		s.Direction = listview.Descending
	} else {
		s.Direction = listview.Ascending
	}
	return p.view.SetSort(s)
}

func (p *collectionPane[T]) nextPage() bool {
	p.savedPage = 0
	return p.view.NextPage()
}

func (p *collectionPane[T]) prevPage() bool {
	p.savedPage = 0
	return p.view.PrevPage()
}

// resize steps the page size through [pageSizes]. A positive step grows it.
func (p *collectionPane[T]) resize(step int) error {
	p.savedPage = 0
	current := p.view.PageSize()
	i, found := slices.BinarySearch(pageSizes, current)
	switch {
	case step > 0 && found:
		i++
	case step < 0:
		i--
	}
	if i < 0 || i >= len(pageSizes) {
		return nil
	}
	return p.view.SetPageSize(pageSizes[i])
}

func (p *collectionPane[T]) state() listview.State { return p.view.State() }

func (p *collectionPane[T]) render() string {
	if !p.loaded {
		return fmt.Sprintf("Loading %s...", p.noun)
	}
	var b strings.Builder
	if err := formatter.RenderPage(&b, p.view, p.columns, p.noun, p.empty); err != nil {
		return err.Error()
	}
	return strings.TrimRight(b.String(), "\n")
}
