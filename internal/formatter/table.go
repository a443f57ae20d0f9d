package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/libcat/internal/listview"
	"github.com/desertthunder/libcat/internal/models"
)

// Column is one rendered column of a list page.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// BookColumns returns the columns shown for books. The Edit column marks books
// user may modify and is omitted when user is nil.
func BookColumns(user *models.User) []Column[models.Book] {
	cols := []Column[models.Book]{
		{Header: "ID", Value: func(b models.Book) string { return strconv.FormatUint(uint64(b.ID), 10) }},
		{Header: "Title", Value: func(b models.Book) string { return b.Title }},
		{Header: "Description", Value: func(b models.Book) string { return truncate(b.Description, 48) }},
	}
	if user != nil {
		cols = append(cols, Column[models.Book]{Header: "Edit", Value: func(b models.Book) string {
			if b.CanEdit(user) {
				return "yes"
			}
			return ""
		}})
	}
	return cols
}

// ReaderColumns returns the columns shown for readers.
func ReaderColumns() []Column[models.Reader] {
	return []Column[models.Reader]{
		{Header: "ID", Value: func(r models.Reader) string { return strconv.FormatUint(uint64(r.ID), 10) }},
		{Header: "Name", Value: func(r models.Reader) string { return r.Name }},
		{Header: "Surname", Value: func(r models.Reader) string { return r.Surname }},
		{Header: "Reading", Value: func(r models.Reader) string {
			titles := make([]string, len(r.CurrentlyReading))
			for i, b := range r.CurrentlyReading {
				titles[i] = b.Title
			}
			return truncate(strings.Join(titles, ", "), 40)
		}},
	}
}

// RenderTable renders items as a bordered table.
func RenderTable[T any](items []T, cols []Column[T]) string {
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}

	rows := make([][]string, len(items))
	for i, item := range items {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = c.Value(item)
		}
		rows[i] = row
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.String()
}

// RenderPage writes the current page of m as a table, a summary line and the
// pagination control. An empty view renders emptyMsg instead.
func RenderPage[T any](w io.Writer, m *listview.Model[T], cols []Column[T], noun, emptyMsg string) error {
	if m.Len() == 0 {
		_, err := fmt.Fprintln(w, emptyMsg)
		return err
	}

	items := m.CurrentPageItems()
	start := (m.CurrentPage()-1)*m.PageSize() + 1

	_, err := fmt.Fprintf(w, "%s\nShowing %d-%d of %d %s (sorted by %s)\n%s\n",
		RenderTable(items, cols),
		start, start+len(items)-1, m.Len(), noun, m.Sort(),
		RenderPagination(m.PageWindow()),
	)
	return err
}

// RenderPagination renders a page window like "‹ 1 … 4 [5] 6 … 12 ›".
// The arrows appear only when a previous or next page exists.
func RenderPagination(links []listview.PageLink) string {
	if len(links) == 0 {
		return ""
	}

	var parts []string
	current, last := 0, 0
	for _, l := range links {
		switch {
		case l.Ellipsis:
			parts = append(parts, "…")
		case l.Current:
			current = l.Page
			parts = append(parts, "["+strconv.Itoa(l.Page)+"]")
		default:
			parts = append(parts, strconv.Itoa(l.Page))
		}
		if !l.Ellipsis {
			last = l.Page
		}
	}

	if current > 1 {
		parts = append([]string{"‹"}, parts...)
	}
	if current < last {
		parts = append(parts, "›")
	}
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
