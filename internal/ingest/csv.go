package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ImportCSV reads rows with Question and Answer columns (header names are
// case-insensitive; Intent, Crop, Topic and Language are optional).
// Questions are stored lowercased. Rows missing a question or answer are
// skipped, as are questions already in the store or earlier in the file.
func (imp *Importer) ImportCSV(ctx context.Context, r io.Reader, source string) (Result, error) {
	logger := imp.logger.WithContext("source", source)
	var res Result

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return res, ErrMissingColumns
	}
	if err != nil {
		return res, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := columnIndex(header)
	if _, ok := cols["question"]; !ok {
		return res, ErrMissingColumns
	}
	if _, ok := cols["answer"]; !ok {
		return res, ErrMissingColumns
	}

	seen := make(map[string]struct{})
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		e := Entry{
			Question: strings.ToLower(field(record, cols, "question")),
			Answer:   field(record, cols, "answer"),
			Intent:   field(record, cols, "intent"),
			Crop:     field(record, cols, "crop"),
			Language: field(record, cols, "language"),
			Topic:    field(record, cols, "topic"),
		}
		if e.Question == "" || e.Answer == "" {
			logger.Debug("line %d: skipping, missing question or answer", line)
			res.Skipped++
			continue
		}

		if _, dup := seen[e.Question]; dup {
			res.Duplicates++
			continue
		}
		seen[e.Question] = struct{}{}

		exists, err := imp.store.QuestionExists(ctx, e.Question)
		if err != nil {
			return res, err
		}
		if exists {
			res.Duplicates++
			continue
		}

		if _, err := imp.store.AddEntry(ctx, e); err != nil {
			return res, fmt.Errorf("failed to add line %d: %w", line, err)
		}
		res.Added++
		if res.Added%50 == 0 {
			logger.Debug("processing... %d entries added", res.Added)
		}
	}

	logger.WithFields(map[string]interface{}{
		"added":      res.Added,
		"duplicates": res.Duplicates,
		"skipped":    res.Skipped,
	}).Info("CSV import finished")
	return res, nil
}

// ImportFile imports a CSV file from disk.
func (imp *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	if !IsImportable(path) {
		return Result{}, fmt.Errorf("%s: %w", path, ErrUnsupportedFile)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Result{}, err
	}
	if info.Size() > MaxFileSize {
		return Result{}, fmt.Errorf("%s is %d bytes: %w", path, info.Size(), ErrFileTooLarge)
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	return imp.ImportCSV(ctx, f, filepath.Base(path))
}

// IsImportable reports whether path has a .csv extension.
func IsImportable(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
