package listview

import (
	"fmt"
	"slices"
	"strings"
)

// Options configures a new [Model].
type Options[T any] struct {
	// Search returns the fields scanned by the filter. Nil means the filter
	// only ever matches on an empty term.
	Search func(T) []string
	// Fields is the sort capability table. It must not be empty.
	Fields map[Field]Accessor[T]
	// Sort is the initial sort. The zero value picks the first field (by name)
	// in ascending order.
	Sort Sort
	// PageSize is the initial page size and must be positive.
	PageSize int
}

// Model is the filter → sort → paginate view-model for one collection.
type Model[T any] struct {
	search func(T) []string
	fields map[Field]Accessor[T]

	items []T
	view  []T

	filter   Filter
	sort     Sort
	pageSize int
	page     int
}

// New builds a model from opts.
func New[T any](opts Options[T]) (*Model[T], error) {
	if len(opts.Fields) == 0 {
		return nil, fmt.Errorf("%w: no sort fields configured", ErrInvalidArgument)
	}
	if opts.PageSize <= 0 {
		return nil, fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidArgument, opts.PageSize)
	}

	m := &Model[T]{
		search:   opts.Search,
		fields:   make(map[Field]Accessor[T], len(opts.Fields)),
		pageSize: opts.PageSize,
		page:     1,
	}
	for f, acc := range opts.Fields {
		if acc == nil {
			return nil, fmt.Errorf("%w: nil accessor for field %q", ErrInvalidArgument, f)
		}
		m.fields[f] = acc
	}

	s := opts.Sort
	if s.Field == "" {
		s.Field = m.Fields()[0]
	}
	if s.Direction == "" {
		s.Direction = Ascending
	}
	if err := m.checkSort(s); err != nil {
		return nil, err
	}
	m.sort = s

	return m, nil
}

// Fields lists the configured sort fields in name order.
func (m *Model[T]) Fields() []Field {
	fields := make([]Field, 0, len(m.fields))
	for f := range m.fields {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

// SetItems replaces the full item set and returns to page 1.
func (m *Model[T]) SetItems(items []T) {
	m.items = slices.Clone(items)
	m.recompute()
}

// SetFilter updates the search term and returns to page 1.
func (m *Model[T]) SetFilter(f Filter) {
	m.filter = f
	m.recompute()
}

// SetSort updates the sort spec and returns to page 1. Unknown fields and
// directions are rejected and leave the model untouched.
func (m *Model[T]) SetSort(s Sort) error {
	if err := m.checkSort(s); err != nil {
		return err
	}
	m.sort = s
	m.recompute()
	return nil
}

// SetPageSize changes the page size and returns to page 1. A non-positive
// size is rejected and leaves the model untouched.
func (m *Model[T]) SetPageSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidArgument, n)
	}
	m.pageSize = n
	m.page = 1
	return nil
}

// GoToPage moves to page p. It reports false and changes nothing when p is
// outside [1, TotalPages()].
func (m *Model[T]) GoToPage(p int) bool {
	if p < 1 || p > m.TotalPages() {
		return false
	}
	m.page = p
	return true
}

// NextPage moves forward one page if there is one.
func (m *Model[T]) NextPage() bool { return m.GoToPage(m.page + 1) }

// PrevPage moves back one page if there is one.
func (m *Model[T]) PrevPage() bool { return m.GoToPage(m.page - 1) }

// CurrentPageItems returns the items of the current page.
func (m *Model[T]) CurrentPageItems() []T {
	start := (m.page - 1) * m.pageSize
	if start >= len(m.view) {
		return []T{}
	}
	end := min(start+m.pageSize, len(m.view))
	return slices.Clone(m.view[start:end])
}

// TotalPages is max(1, ceil(len(FilteredSorted())/PageSize())).
func (m *Model[T]) TotalPages() int {
	return max(1, (len(m.view)+m.pageSize-1)/m.pageSize)
}

// Items returns a copy of the full, unfiltered item set.
func (m *Model[T]) Items() []T { return slices.Clone(m.items) }

// FilteredSorted returns a copy of the derived view.
func (m *Model[T]) FilteredSorted() []T { return slices.Clone(m.view) }

// Len is the number of items in the derived view.
func (m *Model[T]) Len() int { return len(m.view) }

func (m *Model[T]) Filter() Filter   { return m.filter }
func (m *Model[T]) Sort() Sort       { return m.sort }
func (m *Model[T]) PageSize() int    { return m.pageSize }
func (m *Model[T]) CurrentPage() int { return m.page }

func (m *Model[T]) checkSort(s Sort) error {
	if _, ok := m.fields[s.Field]; !ok {
		return fmt.Errorf("%w: unknown sort field %q", ErrInvalidArgument, s.Field)
	}
	if !validDirection(s.Direction) {
		return fmt.Errorf("%w: unknown sort direction %q", ErrInvalidArgument, s.Direction)
	}
	return nil
}

// recompute derives the view from the full set. Matching items are sorted
// with a stable sort so equal keys keep their insertion order.
func (m *Model[T]) recompute() {
	term := strings.ToLower(m.filter.Search)

	view := make([]T, 0, len(m.items))
	for _, item := range m.items {
		if m.matches(item, term) {
			view = append(view, item)
		}
	}

	acc := m.fields[m.sort.Field]
	dir := m.sort.Direction
	slices.SortStableFunc(view, func(a, b T) int {
		return compare(acc(a), acc(b), dir)
	})

	m.view = view
	m.page = 1
}

func (m *Model[T]) matches(item T, term string) bool {
	if term == "" {
		return true
	}
	if m.search == nil {
		return false
	}
	for _, field := range m.search(item) {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
