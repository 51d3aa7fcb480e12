// Package relay acquires audio for a social-media link by trying an ordered
// chain of independent download strategies until one yields a usable file.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
	"github.com/nikhilbhutani/mediainsight/internal/models"
)

// Strategy downloads the media behind url. destBase is a path without an
// extension; the strategy picks the extension and returns the final path.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, url, destBase string) (string, error)
}

type Chain struct {
	strategies []Strategy
	minBytes   int64
	timeout    time.Duration
	fs         afero.Fs
}

func NewChain(fs afero.Fs, minBytes int64, timeout time.Duration, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, minBytes: minBytes, timeout: timeout, fs: fs}
}

func (c *Chain) Names() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Acquire runs the strategies in order and returns the first viable artifact.
// Individual failures are logged; only exhaustion is reported.
func (c *Chain) Acquire(ctx context.Context, url, destDir string) (models.Artifact, error) {
	var errs []error
	for i, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return models.Artifact{}, err
		}

		destBase := filepath.Join(destDir, fmt.Sprintf("link-%d-%s", i, s.Name()))
		art, err := c.attempt(ctx, s, url, destBase)
		if err != nil {
			slog.Warn("relay strategy failed", "strategy", s.Name(), "url", url, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}

		slog.Info("relay strategy succeeded",
			"strategy", s.Name(),
			"size", humanize.Bytes(uint64(art.Size)),
			"mime", art.MimeType,
		)
		return art, nil
	}
	return models.Artifact{}, apperr.Acquisition(errors.Join(errs...))
}

func (c *Chain) attempt(ctx context.Context, s Strategy, url, destBase string) (models.Artifact, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	path, err := s.Fetch(ctx, url, destBase)
	if err != nil {
		c.discard(destBase, path)
		return models.Artifact{}, err
	}

	art, err := c.validate(path)
	if err != nil {
		c.discard(destBase, path)
		return models.Artifact{}, err
	}
	return art, nil
}

// validate checks that path holds media larger than the viability threshold.
// Relays sometimes answer with an error document saved as the "file".
func (c *Chain) validate(path string) (models.Artifact, error) {
	info, err := c.fs.Stat(path)
	if err != nil {
		return models.Artifact{}, fmt.Errorf("no output file: %w", err)
	}
	if info.Size() <= c.minBytes {
		return models.Artifact{}, fmt.Errorf("output too small (%d bytes)", info.Size())
	}

	mime, err := sniff(c.fs, path)
	if err != nil {
		return models.Artifact{}, fmt.Errorf("inspect output: %w", err)
	}
	if strings.HasPrefix(mime, "text/") || strings.Contains(mime, "json") || strings.Contains(mime, "html") {
		return models.Artifact{}, fmt.Errorf("output is %s, not media", mime)
	}
	if !strings.HasPrefix(mime, "audio/") && !strings.HasPrefix(mime, "video/") {
		mime = mimeForExt(filepath.Ext(path))
	}
	return models.Artifact{Path: path, MimeType: mime, Size: info.Size()}, nil
}

func (c *Chain) discard(destBase, path string) {
	if path != "" {
		_ = c.fs.Remove(path)
	}
	matches, _ := afero.Glob(c.fs, destBase+".*")
	for _, m := range matches {
		_ = c.fs.Remove(m)
	}
}

func sniff(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	m, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}

func mimeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".m4a", ".mp4":
		return "audio/mp4"
	case ".webm":
		return "audio/webm"
	case ".ogg", ".opus":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	default:
		return "audio/mp3"
	}
}
