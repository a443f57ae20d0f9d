package models

import (
	"github.com/desertthunder/libcat/internal/listview"
)

// Sortable fields.
const (
	FieldID      listview.Field = "id"
	FieldTitle   listview.Field = "title"
	FieldName    listview.Field = "name"
	FieldSurname listview.Field = "surname"
)

// Default view settings.
var (
	DefaultBookSort   = listview.Sort{Field: FieldID, Direction: listview.Descending}
	DefaultReaderSort = listview.Sort{Field: FieldID, Direction: listview.Ascending}
)

const DefaultPageSize = 10

// BookFields returns list view options for books: search over title and description,
// sort by id or title.
func BookFields(sort listview.Sort, pageSize int) listview.Options[Book] {
	return listview.Options[Book]{
		Search: func(b Book) []string { return []string{b.Title, b.Description} },
		Fields: map[listview.Field]listview.Accessor[Book]{
			FieldID:    func(b Book) listview.Key { return listview.UintKey(b.ID) },
			FieldTitle: func(b Book) listview.Key { return listview.StringKey(b.Title) },
		},
		Sort:     sort,
		PageSize: pageSize,
	}
}

// ReaderFields returns list view options for readers: search over name and surname,
// sort by id, name or surname.
func ReaderFields(sort listview.Sort, pageSize int) listview.Options[Reader] {
	return listview.Options[Reader]{
		Search: func(r Reader) []string { return []string{r.Name, r.Surname} },
		Fields: map[listview.Field]listview.Accessor[Reader]{
			FieldID:      func(r Reader) listview.Key { return listview.UintKey(r.ID) },
			FieldName:    func(r Reader) listview.Key { return listview.StringKey(r.Name) },
			FieldSurname: func(r Reader) listview.Key { return listview.StringKey(r.Surname) },
		},
		Sort:     sort,
		PageSize: pageSize,
	}
}

// NewBookView builds a book list view, falling back to the defaults for a zero sort or page size.
func NewBookView(sort listview.Sort, pageSize int) (*listview.Model[Book], error) {
	if sort == (listview.Sort{}) {
		sort = DefaultBookSort
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	return listview.New(BookFields(sort, pageSize))
}

// NewReaderView builds a reader list view, falling back to the defaults for a zero sort or page size.
func NewReaderView(sort listview.Sort, pageSize int) (*listview.Model[Reader], error) {
	if sort == (listview.Sort{}) {
		sort = DefaultReaderSort
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	return listview.New(ReaderFields(sort, pageSize))
}
