package transcription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
	"github.com/nikhilbhutani/mediainsight/internal/models"
	"github.com/nikhilbhutani/mediainsight/internal/retry"
)

const releaseTimeout = 15 * time.Second

type Client struct {
	engine       Engine
	retrier      *retry.Retrier
	pollInterval time.Duration
	pollTimeout  time.Duration
	sleep        retry.SleepFunc // overridden in tests
}

func NewClient(engine Engine, retrier *retry.Retrier, pollInterval, pollTimeout time.Duration) *Client {
	return &Client{
		engine:       engine,
		retrier:      retrier,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		sleep:        retry.Sleep,
	}
}

// Transcribe uploads the artifact, waits for the engine to finish ingesting
// it, and returns the engine's raw reply to prompt. The remote file is
// released on every path once the upload succeeded.
func (c *Client) Transcribe(ctx context.Context, art models.Artifact, prompt string) (string, error) {
	slog.Info("uploading artifact to engine",
		"mime", art.MimeType,
		"size", humanize.Bytes(uint64(art.Size)),
	)

	file, err := c.engine.Upload(ctx, art.Path, art.MimeType)
	if err != nil {
		return "", fmt.Errorf("upload artifact: %w", err)
	}
	defer c.release(ctx, file.Name)

	file, err = c.awaitReady(ctx, file)
	if err != nil {
		return "", err
	}

	var text string
	err = c.retrier.Do(ctx, "generate", func(ctx context.Context) error {
		var genErr error
		text, genErr = c.engine.Generate(ctx, GenerateRequest{File: file, Prompt: prompt})
		return genErr
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// awaitReady polls while the file is processing. Hitting the poll timeout is
// not fatal: generation is attempted anyway and the engine decides.
func (c *Client) awaitReady(ctx context.Context, file *RemoteFile) (*RemoteFile, error) {
	var waited time.Duration
	for file.State == StateProcessing || file.State == StateUploading {
		if waited >= c.pollTimeout {
			slog.Warn("engine still processing after poll timeout, continuing",
				"file", file.Name,
				"waited", waited.String(),
			)
			return file, nil
		}
		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return nil, err
		}
		waited += c.pollInterval

		next, err := c.engine.GetFile(ctx, file.Name)
		if err != nil {
			slog.Warn("engine file status check failed", "file", file.Name, "error", err)
			continue
		}
		file = next
		slog.Debug("engine file state", "file", file.Name, "state", file.State)
	}

	if file.State == StateFailed {
		return nil, apperr.Engine(fmt.Errorf("engine failed to process file %s", file.Name))
	}
	return file, nil
}

func (c *Client) release(ctx context.Context, name string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := c.engine.DeleteFile(ctx, name); err != nil {
		slog.Warn("failed to release engine file", "file", name, "error", err)
	}
}

// ListModels exposes the engine's model catalogue.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	return c.engine.ListModels(ctx)
}
