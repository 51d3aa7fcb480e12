package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// LocalStorage writes into a directory served as static files under urlPrefix.
type LocalStorage struct {
	fs        afero.Fs
	dir       string
	urlPrefix string
}

func NewLocalStorage(fs afero.Fs, dir, urlPrefix string) (*LocalStorage, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create static dir: %w", err)
	}
	return &LocalStorage{fs: fs, dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (s *LocalStorage) Save(_ context.Context, name string, data io.Reader, _ string) (string, error) {
	name = filepath.Base(name)
	if err := afero.WriteReader(s.fs, filepath.Join(s.dir, name), data); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return s.urlPrefix + "/" + name, nil
}
