// Package ingest loads knowledge entries from CSV files, web pages and the
// built-in demo data set.
package ingest

import (
	"context"
	"errors"

	"agrichat/internal/logging"
)

var (
	// ErrMissingColumns is returned for CSV files without Question and
	// Answer columns.
	ErrMissingColumns = errors.New("CSV must have Question and Answer columns")
	// ErrUnsupportedFile is returned for files that are not .csv.
	ErrUnsupportedFile = errors.New("only .csv files can be imported")
	// ErrFileTooLarge is returned for files above MaxFileSize.
	ErrFileTooLarge = errors.New("file exceeds import size limit")
	// ErrNoContent is returned when a fetched page has no readable text.
	ErrNoContent = errors.New("page has no readable content")
)

// MaxFileSize bounds a single CSV import.
const MaxFileSize = 10 * 1024 * 1024

// Entry is a knowledge entry to be stored. Empty Intent and Language get
// the store defaults.
type Entry struct {
	Question string
	Answer   string
	Intent   string
	Crop     string
	Language string
	Topic    string
}

// Store is the write side of the knowledge base
type Store interface {
	// QuestionExists compares case-insensitively.
	QuestionExists(ctx context.Context, question string) (bool, error)
	AddEntry(ctx context.Context, e Entry) (int64, error)
}

// Result summarizes one import
type Result struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
}

// Importer writes entries into the knowledge base, skipping questions that
// are already present.
type Importer struct {
	store  Store
	logger *logging.Logger
}

// NewImporter creates a new Importer
func NewImporter(store Store, logger *logging.Logger) *Importer {
	return &Importer{store: store, logger: logger}
}
