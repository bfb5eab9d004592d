package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStore persists images on the local filesystem under a base directory.
// References are paths relative to the base directory.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a local disk image store rooted at baseDir.
func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{baseDir: baseDir}
}

// Store writes data under <base>/<folder>/<uuid><ext> and returns the
// reference relative to the base directory.
func (s *LocalStore) Store(ctx context.Context, folder, filename string, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.New().String() + filepath.Ext(filename)
	ref := filepath.Join(folder, name)
	if err := os.WriteFile(filepath.Join(s.baseDir, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return ref, nil
}

// Delete removes a stored image. Missing files are not an error.
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	err := os.Remove(filepath.Join(s.baseDir, ref))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
