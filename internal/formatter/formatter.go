// package formatter renders catalog collections as CSV, JSON and terminal tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/libcat/internal/models"
)

// Default export filenames.
const (
	BooksCSVFile   = "books.csv"
	ReadersCSVFile = "readers.csv"
)

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV records: %w", err)
	}

	return buf.Bytes(), nil
}

// BooksToCSV converts books to CSV with columns: ID, Title, Description
func BooksToCSV(books []models.Book) ([]byte, error) {
	rows := make([][]string, len(books))
	for i, b := range books {
		rows[i] = []string{strconv.FormatUint(uint64(b.ID), 10), b.Title, b.Description}
	}
	return writeCSV([]string{"ID", "Title", "Description"}, rows)
}

// ReadersToCSV converts readers to CSV with columns: ID, Name, Surname
func ReadersToCSV(readers []models.Reader) ([]byte, error) {
	rows := make([][]string, len(readers))
	for i, r := range readers {
		rows[i] = []string{strconv.FormatUint(uint64(r.ID), 10), r.Name, r.Surname}
	}
	return writeCSV([]string{"ID", "Name", "Surname"}, rows)
}

// WriteCSVExport writes data to path, creating parent directories, and returns the path written.
//
// Defaults to fallback in the working directory when path is empty.
func WriteCSVExport(path, fallback string, data []byte) (string, error) {
	if path == "" {
		path = fallback
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}
	return path, nil
}

// ToJSON marshals v, indented when pretty is set.
func ToJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
