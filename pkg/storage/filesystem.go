package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore keeps generated report artifacts on the local filesystem under a
// single base directory. File names are validated so callers cannot escape it.
type LocalStore struct {
	baseDir string
}

// NewLocalStore ensures the base directory exists and returns the store.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("storage base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// Save writes content under the given file name and returns its full path.
func (s *LocalStore) Save(name string, content []byte) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// Open returns a reader for a stored artifact.
func (s *LocalStore) Open(name string) (io.ReadCloser, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	return f, nil
}

// Delete removes a stored artifact. Missing files are not an error.
func (s *LocalStore) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete artifact: %w", err)
	}
	return nil
}

// CleanupOlderThan removes artifacts whose modification time predates the
// cutoff and reports how many were deleted.
func (s *LocalStore) CleanupOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("list storage directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.baseDir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (s *LocalStore) resolve(name string) (string, error) {
	cleaned := filepath.Base(filepath.Clean(name))
	if cleaned == "." || cleaned == string(filepath.Separator) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}
