// Package storage persists attachment content on disk. The database keeps
// the metadata; the bytes live here.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrFileNotFound  = errors.New("file not found")
	ErrFileTooLarge  = errors.New("file exceeds maximum size")
	ErrInvalidPath   = errors.New("invalid file path")
	ErrPathTraversal = errors.New("path traversal not allowed")
)

// FileStore provides read/write operations for attachment content.
type FileStore interface {
	// Store writes content at the given relative path and returns the final
	// path the caller should persist. Storage must succeed before any
	// attachment metadata is written.
	Store(ctx context.Context, content []byte, path string) (string, error)

	// Read retrieves previously stored content.
	Read(ctx context.Context, path string) ([]byte, error)

	// Exists checks whether content is present at the given path.
	Exists(ctx context.Context, path string) (bool, error)
}

// LocalFileStore implements FileStore using the local filesystem.
type LocalFileStore struct {
	rootDir  string
	maxBytes int64
}

// NewLocalFileStore creates a LocalFileStore rooted at rootDir.
func NewLocalFileStore(rootDir string, maxBytes int64) (*LocalFileStore, error) {
	if rootDir == "" {
		return nil, fmt.Errorf("attachment root directory is required")
	}

	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating attachment root directory: %w", err)
	}

	return &LocalFileStore{rootDir: rootDir, maxBytes: maxBytes}, nil
}

func (s *LocalFileStore) Store(ctx context.Context, content []byte, path string) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("attachment content cannot be empty")
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return "", ErrFileTooLarge
	}
	if err := s.validatePath(path); err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.rootDir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("creating attachment directory: %w", err)
	}

	// Atomic write: write to temp file, then rename
	tmpPath := fullPath + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o644); err != nil {
		return "", fmt.Errorf("writing temp attachment: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming attachment: %w", err)
	}

	return path, nil
}

func (s *LocalFileStore) Read(ctx context.Context, path string) ([]byte, error) {
	if err := s.validatePath(path); err != nil {
		return nil, err
	}

	fullPath := filepath.Join(s.rootDir, filepath.FromSlash(path))
	content, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("reading attachment: %w", err)
	}
	return content, nil
}

func (s *LocalFileStore) Exists(ctx context.Context, path string) (bool, error) {
	if err := s.validatePath(path); err != nil {
		return false, err
	}

	fullPath := filepath.Join(s.rootDir, filepath.FromSlash(path))
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking attachment existence: %w", err)
	}
	return true, nil
}

// validatePath ensures the path is safe (no traversal, stays under root).
func (s *LocalFileStore) validatePath(path string) error {
	if path == "" {
		return ErrInvalidPath
	}
	if strings.Contains(path, "..") {
		return ErrPathTraversal
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return ErrPathTraversal
	}
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if strings.HasPrefix(cleaned, "..") {
		return ErrPathTraversal
	}
	return nil
}
