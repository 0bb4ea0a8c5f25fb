package logging

import (
	"fmt"
	"os"
)

// LogRotator renames a log file through numbered backups once it grows
// past a size threshold: agrichat.log → agrichat.log.1 → agrichat.log.2 ...
type LogRotator struct {
	basePath   string
	maxSizeMB  int
	maxBackups int
}

// NewLogRotator creates a rotator for basePath.
func NewLogRotator(basePath string, maxSizeMB, maxBackups int) *LogRotator {
	return &LogRotator{
		basePath:   basePath,
		maxSizeMB:  maxSizeMB,
		maxBackups: maxBackups,
	}
}

// ShouldRotate reports whether currentSize has reached maxSizeMB.
func (r *LogRotator) ShouldRotate(currentSize int64) bool {
	return currentSize >= int64(r.maxSizeMB)*1024*1024
}

func (r *LogRotator) backupPath(n int) string {
	return fmt.Sprintf("%s.%d", r.basePath, n)
}

// Rotate shifts existing backups up by one, drops the oldest, and moves the
// live file to .1. With maxBackups == 0 the live file is simply removed.
// A missing live file is not an error.
func (r *LogRotator) Rotate() error {
	if r.maxBackups == 0 {
		if err := os.Remove(r.basePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove current log file: %w", err)
		}
		return nil
	}

	oldest := r.backupPath(r.maxBackups)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete oldest backup %s: %w", oldest, err)
	}

	for i := r.maxBackups - 1; i >= 1; i-- {
		from, to := r.backupPath(i), r.backupPath(i+1)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("failed to rename backup %s to %s: %w", from, to, err)
		}
	}

	if _, err := os.Stat(r.basePath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat current log file: %w", err)
	}
	if err := os.Rename(r.basePath, r.backupPath(1)); err != nil {
		return fmt.Errorf("failed to rename current log %s: %w", r.basePath, err)
	}

	return nil
}
