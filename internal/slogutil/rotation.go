package slogutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
)

// RotatingFile is an append-only log file that is moved aside once it
// would grow past maxBytes. Old generations are kept as path.1 .. path.N.
type RotatingFile struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	keep     int
	file     *os.File
	written  int64
}

// OpenRotatingFile opens path for appending. maxBytes <= 0 never rotates;
// keep == 0 discards the old file on rotation.
func OpenRotatingFile(path string, maxBytes int64, keep int) (*RotatingFile, error) {
	rf := &RotatingFile{path: path, maxBytes: maxBytes, keep: keep}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (r *RotatingFile) open() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	r.file, r.written = f, info.Size()
	return nil
}

// Write appends p, rotating first when p would overflow the limit. A failed
// rotation does not drop the record.
func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxBytes > 0 && r.written > 0 && r.written+int64(len(p)) > r.maxBytes {
		_ = r.rotate()
	}
	n, err := r.file.Write(p)
	r.written += int64(n)
	return n, err
}

// Close closes the current file.
func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *RotatingFile) generation(n int) string {
	return fmt.Sprintf("%s.%d", r.path, n)
}

// rotate shifts path.N-1 -> path.N down to path -> path.1, dropping the
// oldest generation.
func (r *RotatingFile) rotate() error {
	if err := r.file.Close(); err != nil {
		return err
	}

	if r.keep == 0 {
		_ = os.Remove(r.path)
	} else {
		_ = os.Remove(r.generation(r.keep))
		for n := r.keep - 1; n >= 1; n-- {
			_ = os.Rename(r.generation(n), r.generation(n+1))
		}
		_ = os.Rename(r.path, r.generation(1))
	}
	return r.open()
}

// ParseSize converts a size such as "10MB" or "512 KiB" to bytes. Empty or
// invalid input yields 0, which disables rotation.
func ParseSize(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0
	}
	return int64(n)
}

// NewRotatingFileLogger creates a logger appending to path that rotates at
// maxSize, keeping keep old files. An empty or invalid maxSize gives a plain
// append-only file.
func NewRotatingFileLogger(path string, level slog.Level, maxSize string, keep int) (*slog.Logger, io.Closer, error) {
	limit := ParseSize(maxSize)
	if limit <= 0 {
		return NewFileLogger(path, level)
	}
	rf, err := OpenRotatingFile(path, limit, keep)
	if err != nil {
		return nil, nil, err
	}
	return NewLogger(rf, level), rf, nil
}
