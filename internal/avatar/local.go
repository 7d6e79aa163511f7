package avatar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidKey = errors.New("invalid avatar key")

// LocalStorage writes avatars under a directory served as static files
type LocalStorage struct {
	dir       string
	urlPrefix string
}

func NewLocalStorage(dir, urlPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create avatar directory: %w", err)
	}
	return &LocalStorage{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

// Dir is the directory the router serves under URLPrefix
func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) URLPrefix() string {
	return s.urlPrefix
}

func (s *LocalStorage) Save(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	name := filepath.Base(key)
	if name != key || name == "." || name == ".." {
		return "", ErrInvalidKey
	}

	// write to a temp file first so a failed upload never replaces a served file
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to set avatar permissions: %w", err)
	}

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write avatar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write avatar: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to move avatar into place: %w", err)
	}

	return s.urlPrefix + "/" + name, nil
}

// Delete removes the file behind a URL returned by Save. A missing file is
// not an error.
func (s *LocalStorage) Delete(ctx context.Context, url string) error {
	name, ok := strings.CutPrefix(url, s.urlPrefix+"/")
	if !ok || name == "" || filepath.Base(name) != name || name == ".." {
		return ErrInvalidKey
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove avatar: %w", err)
	}
	return nil
}
