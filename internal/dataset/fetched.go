package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FetchedStore remembers which repositories already have a sample so
// repeated runs skip them. *storage.DB implements it.
type FetchedStore interface {
	FetchedRepos(ctx context.Context) (map[string]bool, error)
	MarkFetched(ctx context.Context, name string) error
}

// LogStore keeps the fetched set in a newline separated text file.
type LogStore struct {
	path string
	mu   sync.Mutex
}

// NewLogStore returns a store backed by the file at path. The file is
// created on the first MarkFetched.
func NewLogStore(path string) *LogStore {
	return &LogStore{path: path}
}

// FetchedRepos reads every name in the log. A missing log is an empty set.
func (s *LogStore) FetchedRepos(ctx context.Context) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make(map[string]bool)
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return names, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open fetched log: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names[name] = true
		}
	}
	return names, scanner.Err()
}

// MarkFetched appends name to the log.
func (s *LogStore) MarkFetched(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open fetched log: %w", err)
	}
	if _, err := fmt.Fprintln(f, name); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to fetched log: %w", err)
	}
	return f.Close()
}
