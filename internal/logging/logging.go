// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/nikhilbhutani/mediainsight/internal/config"
)

// New returns a JSON logger, or a human-readable charm logger when
// cfg.Format is "text".
func New(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level := parseLevel(cfg.Level)

	if strings.EqualFold(cfg.Format, "text") {
		h := charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			Prefix:          "mediainsight",
			Level:           charmlog.Level(level),
		})
		return slog.New(h)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
