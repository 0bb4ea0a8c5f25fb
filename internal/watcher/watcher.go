// Package watcher imports CSV files dropped into the import folder.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"agrichat/internal/ingest"
	"agrichat/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay unchanged before it is
// imported. Editors and copy tools write in several steps.
const DefaultSettle = 500 * time.Millisecond

// Importer loads a CSV file into the knowledge base
type Importer interface {
	ImportFile(ctx context.Context, path string) (ingest.Result, error)
}

// Watcher monitors the import folder for new or changed CSV files
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	importer  Importer
	folder    string
	settle    time.Duration
	logger    *logging.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	stopped bool
	// wg covers the event loop and every import started by a settle timer
	wg sync.WaitGroup
}

// NewWatcher creates a folder watcher with fsnotify initialization. The
// folder is created if it does not exist.
func NewWatcher(folder string, importer Importer, logger *logging.Logger) (*Watcher, error) {
	if err := validatePath(folder); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create import folder: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		logger.WithContext("error", err.Error()).Error("failed to create fsnotify watcher")
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		importer:  importer,
		folder:    folder,
		settle:    DefaultSettle,
		logger:    logger.WithContext("folder_path", folder),
		pending:   make(map[string]*time.Timer),
	}, nil
}

// SetSettle changes the quiet period before a file is imported.
func (w *Watcher) SetSettle(d time.Duration) {
	w.settle = d
}

// Start imports the CSV files already in the folder, then watches it until
// ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Debug("starting import watcher")

	if err := w.fsWatcher.Add(w.folder); err != nil {
		w.fsWatcher.Close()
		return fmt.Errorf("failed to watch folder: %w", err)
	}

	entries, err := os.ReadDir(w.folder)
	if err != nil {
		w.fsWatcher.Close()
		return fmt.Errorf("failed to scan import folder: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && ingest.IsImportable(e.Name()) {
			w.importFile(ctx, filepath.Join(w.folder, e.Name()))
		}
	}

	w.wg.Add(1)
	go w.eventLoop(ctx)

	w.logger.Info("import watcher started")
	return nil
}

// Wait blocks until the event loop and any running import have finished.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// eventLoop processes filesystem events
func (w *Watcher) eventLoop(ctx context.Context) {
	defer w.wg.Done()
	defer w.stopPending()

	for {
		select {
		case <-ctx.Done():
			w.fsWatcher.Close()
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			w.handleEvent(ctx, event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.WithContext("error", err.Error()).Error("watcher error")
		}
	}
}

// handleEvent schedules imports for created or modified CSV files
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !ingest.IsImportable(event.Name) {
		return
	}
	logger := w.logger.WithFields(map[string]interface{}{
		"file_path":  event.Name,
		"event_type": event.Op.String(),
	})

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		logger.Debug("file changed")
		w.schedule(ctx, event.Name)

	case event.Op&fsnotify.Remove == fsnotify.Remove:
		// imported entries stay in the knowledge base
		logger.Debug("file removed")
	}
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		if w.pending[path] == timer {
			delete(w.pending, path)
		}
		if w.stopped || ctx.Err() != nil {
			w.mu.Unlock()
			return
		}
		// the event loop still holds its own count here, so Add never
		// races a Wait on a zero counter
		w.wg.Add(1)
		w.mu.Unlock()

		defer w.wg.Done()
		w.importFile(ctx, path)
	})
	w.pending[path] = timer
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// importFile runs the importer and logs the outcome
func (w *Watcher) importFile(ctx context.Context, path string) {
	logger := w.logger.WithContext("file_path", path)

	res, err := w.importer.ImportFile(ctx, path)
	if err != nil {
		logger.WithContext("error", err.Error()).Error("failed to import file")
		return
	}
	logger.WithFields(map[string]interface{}{
		"added":      res.Added,
		"duplicates": res.Duplicates,
	}).Info("file imported")
}

// validatePath blocks system directories
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("import folder must not be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	systemDirs := []string{"/etc", "/System", "/Windows", "/sys", "/proc", "C:\\Windows", "C:\\System"}
	for _, sysDir := range systemDirs {
		if abs == sysDir || strings.HasPrefix(abs, sysDir+string(filepath.Separator)) {
			return fmt.Errorf("cannot watch system directory: %s", path)
		}
	}

	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}
	return nil
}
