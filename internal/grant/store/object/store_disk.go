// Package object persists uploaded bytes. Implementations must provide
// atomic-replace semantics for Write: concurrent writers to the same key
// leave the last complete write visible, never interleaved bytes.
package object

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"provet/pkg/platform/sentinel"
)

// DiskStore writes objects under a single root directory. Writes go to a
// temp file in the destination directory and are renamed into place, so a
// reader never observes a partial object and same-key races resolve to
// whichever rename lands last.
type DiskStore struct {
	root string
}

// NewDisk creates the root directory if needed and returns a store over it.
func NewDisk(root string) (*DiskStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &DiskStore{root: abs}, nil
}

// resolve maps a logical key onto a path under the root, rejecting any key
// that would escape it after normalization.
func (s *DiskStore) resolve(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || cleaned == ".." ||
		strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) ||
		filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("key %q escapes storage root: %w", key, sentinel.ErrInvalidState)
	}
	return filepath.Join(s.root, cleaned), nil
}

func (s *DiskStore) Write(ctx context.Context, key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	// Temp file in the destination directory so the rename stays on one
	// filesystem and is atomic.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp object: %w", err)
	}

	if err := ctx.Err(); err != nil {
		// Aborted mid-write: leave no partial object visible.
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish object: %w", err)
	}
	return nil
}

func (s *DiskStore) Read(_ context.Context, key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %q: %w", key, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

func (s *DiskStore) Delete(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("object %q: %w", key, sentinel.ErrNotFound)
		}
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
