// Package storage publishes generated audio files and returns the URL a
// client can fetch them from.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/nikhilbhutani/mediainsight/internal/config"
)

type Storage interface {
	Save(ctx context.Context, name string, data io.Reader, contentType string) (string, error)
}

// New selects the backend named by cfg.Backend.
func New(cfg config.StorageConfig, fs afero.Fs) (Storage, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStorage(fs, cfg.Dir, cfg.URLPrefix)
	case "supabase":
		return NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
