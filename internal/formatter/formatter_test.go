package formatter

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/desertthunder/libcat/internal/listview"
	"github.com/desertthunder/libcat/internal/models"
	th "github.com/desertthunder/libcat/internal/testing"
)

func TestExporters(t *testing.T) {
	t.Run("BooksToCSV", func(t *testing.T) {
		books := []models.Book{
			{ID: 1, Title: "Dune", Description: "Spice, sand and \"worms\""},
			{ID: 12, Title: "Emma"},
		}

		data, err := BooksToCSV(books)
		if err != nil {
			t.Fatalf("BooksToCSV failed: %v", err)
		}

		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}

		want := [][]string{
			{"ID", "Title", "Description"},
			{"1", "Dune", "Spice, sand and \"worms\""},
			{"12", "Emma", ""},
		}
		if len(records) != len(want) {
			t.Fatalf("expected %d records, got %d", len(want), len(records))
		}
		for i := range want {
			if strings.Join(records[i], "|") != strings.Join(want[i], "|") {
				t.Errorf("record %d: expected %v, got %v", i, want[i], records[i])
			}
		}
	})

	t.Run("ReadersToCSV", func(t *testing.T) {
		data, err := ReadersToCSV([]models.Reader{{ID: 3, Name: "Ada", Surname: "Lovelace"}})
		if err != nil {
			t.Fatalf("ReadersToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "ID,Name,Surname\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "3,Ada,Lovelace") {
			t.Errorf("CSV missing reader row, got: %s", output)
		}
	})

	t.Run("Empty Input Writes Headers Only", func(t *testing.T) {
		data, err := BooksToCSV(nil)
		if err != nil {
			t.Fatalf("BooksToCSV failed: %v", err)
		}
		if string(data) != "ID,Title,Description\n" {
			t.Errorf("unexpected output %q", data)
		}
	})

	t.Run("WriteCSVExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "books.csv")

		written, err := WriteCSVExport(path, BooksCSVFile, []byte("ID,Title,Description\n"))
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}
		th.AssertFileExists(t, path)
		if got := th.MustReadFile(t, path); got != "ID,Title,Description\n" {
			t.Errorf("unexpected file content %q", got)
		}
	})

	t.Run("ToJSON", func(t *testing.T) {
		compact, err := ToJSON(models.Book{ID: 1, Title: "Dune"}, false)
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}
		if string(compact) != `{"id":1,"title":"Dune","description":""}` {
			t.Errorf("unexpected JSON %s", compact)
		}

		pretty, _ := ToJSON(models.Book{ID: 1}, true)
		if !strings.Contains(string(pretty), "\n  \"id\": 1") {
			t.Errorf("expected indented JSON, got %s", pretty)
		}
	})
}

func TestRenderPagination(t *testing.T) {
	tc := []struct {
		name    string
		current int
		total   int
		want    string
	}{
		{name: "single page", current: 1, total: 1, want: "[1]"},
		{name: "first of many", current: 1, total: 10, want: "[1] 2 3 … 10 ›"},
		{name: "middle", current: 5, total: 10, want: "‹ 1 … 3 4 [5] 6 7 … 10 ›"},
		{name: "last", current: 10, total: 10, want: "‹ 1 … 8 9 [10]"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			m := newBookModel(t, tt.total, 1)
			m.GoToPage(tt.current)

			if got := RenderPagination(m.PageWindow()); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	if RenderPagination(nil) != "" {
		t.Error("expected empty string for no links")
	}
}

func TestRenderPage(t *testing.T) {
	t.Run("Table And Summary", func(t *testing.T) {
		m := newBookModel(t, 25, 10)
		m.GoToPage(2)

		var buf bytes.Buffer
		if err := RenderPage(&buf, m, BookColumns(nil), "books", "No books found"); err != nil {
			t.Fatalf("RenderPage failed: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"Title", "Book 11", "Book 20", "Showing 11-20 of 25 books (sorted by id-asc)", "‹ 1 [2] 3 ›"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "Book 21") || strings.Contains(out, "Edit") {
			t.Errorf("output has rows or columns it should not:\n%s", out)
		}
	})

	t.Run("Edit Column", func(t *testing.T) {
		m := newBookModel(t, 2, 10)

		var buf bytes.Buffer
		if err := RenderPage(&buf, m, BookColumns(&models.User{ID: 1}), "books", ""); err != nil {
			t.Fatalf("RenderPage failed: %v", err)
		}
		if !strings.Contains(buf.String(), "Edit") || !strings.Contains(buf.String(), "yes") {
			t.Errorf("expected edit column for owned book:\n%s", buf.String())
		}
	})

	t.Run("Empty State", func(t *testing.T) {
		m := newBookModel(t, 0, 10)

		var buf bytes.Buffer
		if err := RenderPage(&buf, m, BookColumns(nil), "books", "No books found"); err != nil {
			t.Fatalf("RenderPage failed: %v", err)
		}
		if buf.String() != "No books found\n" {
			t.Errorf("expected empty state message, got %q", buf.String())
		}
	})

	t.Run("Readers", func(t *testing.T) {
		m, err := models.NewReaderView(models.DefaultReaderSort, 10)
		if err != nil {
			t.Fatalf("failed to create view: %v", err)
		}
		m.SetItems([]models.Reader{{ID: 1, Name: "Ada", Surname: "Lovelace", CurrentlyReading: []models.Book{{Title: "Dune"}, {Title: "Emma"}}}})

		var buf bytes.Buffer
		if err := RenderPage(&buf, m, ReaderColumns(), "readers", "No readers found"); err != nil {
			t.Fatalf("RenderPage failed: %v", err)
		}
		if !strings.Contains(buf.String(), "Dune, Emma") {
			t.Errorf("expected reading list column:\n%s", buf.String())
		}
	})

	t.Run("Write Failure", func(t *testing.T) {
		m := newBookModel(t, 3, 10)
		if err := RenderPage(&th.FWriter{}, m, BookColumns(nil), "books", ""); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestTruncate(t *testing.T) {
	if truncate("short", 10) != "short" {
		t.Error("short strings should be unchanged")
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("expected abcd…, got %q", got)
	}
}

func newBookModel(t *testing.T, n, pageSize int) *listview.Model[models.Book] {
	t.Helper()

	m, err := models.NewBookView(listview.Sort{Field: models.FieldID, Direction: listview.Ascending}, pageSize)
	if err != nil {
		t.Fatalf("failed to create view: %v", err)
	}

	books := make([]models.Book, n)
	for i := range books {
		books[i] = models.Book{ID: uint(i + 1), Title: "Book " + strconv.Itoa(i+1), UserID: 1}
	}
	m.SetItems(books)
	return m
}
