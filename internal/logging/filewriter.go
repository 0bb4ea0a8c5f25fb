package logging

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"
)

const (
	fileBufferSize    = 64 * 1024
	fileFlushInterval = 5 * time.Second
)

// FileWriter is a buffered, size-rotated log file. It implements
// zapcore.WriteSyncer so it can back a zap core directly.
type FileWriter struct {
	path       string
	file       *os.File
	buffer     *bufio.Writer
	rotator    *LogRotator
	mu         sync.Mutex
	flushTimer *time.Timer
	closed     bool
}

// NewFileWriter opens path for appending and starts a periodic flush.
func NewFileWriter(path string, maxSizeMB int, maxBackups int) (*FileWriter, error) {
	file, err := openLogFile(path)
	if err != nil {
		return nil, err
	}

	fw := &FileWriter{
		path:    path,
		file:    file,
		buffer:  bufio.NewWriterSize(file, fileBufferSize),
		rotator: NewLogRotator(path, maxSizeMB, maxBackups),
	}

	fw.flushTimer = time.AfterFunc(fileFlushInterval, func() {
		fw.mu.Lock()
		defer fw.mu.Unlock()
		if !fw.closed {
			fw.flushLocked()
			fw.flushTimer.Reset(fileFlushInterval)
		}
	})

	return fw, nil
}

func openLogFile(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file, nil
}

// Write appends p to the buffer.
func (fw *FileWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.closed {
		return 0, fmt.Errorf("file writer is closed")
	}
	return fw.buffer.Write(p)
}

// Sync flushes buffered entries and rotates the file if it is too large.
func (fw *FileWriter) Sync() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.closed {
		return nil
	}
	return fw.flushLocked()
}

// flushLocked requires fw.mu.
func (fw *FileWriter) flushLocked() error {
	if err := fw.buffer.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] failed to flush log buffer: %v\n", err)
		return err
	}

	info, err := fw.file.Stat()
	if err != nil {
		return err
	}
	if !fw.rotator.ShouldRotate(info.Size()) {
		return nil
	}

	if err := fw.file.Close(); err != nil {
		return fmt.Errorf("failed to close file before rotation: %w", err)
	}
	rotateErr := fw.rotator.Rotate()

	// Reopen even if rotation failed so logging keeps working.
	file, err := openLogFile(fw.path)
	if err != nil {
		return err
	}
	fw.file = file
	fw.buffer = bufio.NewWriterSize(file, fileBufferSize)

	if rotateErr != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] failed to rotate log file: %v\n", rotateErr)
	}
	return rotateErr
}

// Close flushes and closes the file. Safe to call twice.
func (fw *FileWriter) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.closed {
		return nil
	}
	fw.closed = true
	fw.flushTimer.Stop()

	if err := fw.buffer.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] failed to flush buffer during close: %v\n", err)
	}
	return fw.file.Close()
}
