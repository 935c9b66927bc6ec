package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes files below a root directory.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	err := os.MkdirAll(root, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &LocalStorage{
		root:    filepath.Clean(root),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save writes atomically: the file is written next to its target and renamed,
// so a preview server never serves a half-written page.
func (s *LocalStorage) Save(ctx context.Context, path, contentType string, body io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(path)
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(target), 0755)
	if err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, body)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	err = os.Chmod(tmp.Name(), 0644)
	if err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}

	return os.Rename(tmp.Name(), target)
}

func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	err = os.Remove(target)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}

	// Drop directories left empty, so post/<slug>/ goes with its page.
	for dir := filepath.Dir(target); dir != s.root && strings.HasPrefix(dir, s.root); dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break
		}
	}
	return nil
}

func (s *LocalStorage) List(ctx context.Context, prefix string) ([]string, error) {
	dir, err := s.resolve(prefix)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = filepath.WalkDir(dir, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			if name == dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, name)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	return paths, nil
}

func (s *LocalStorage) URL(path string) string {
	return s.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// resolve maps a slash separated storage path into the root, refusing paths
// that would escape it.
func (s *LocalStorage) resolve(path string) (string, error) {
	clean := filepath.FromSlash(strings.TrimPrefix(path, "/"))
	if !filepath.IsLocal(clean) {
		return "", fmt.Errorf("invalid storage path %q", path)
	}
	return filepath.Join(s.root, clean), nil
}
