// Package history persists processed results per user. Records are
// append-only and listed newest first.
package history

import (
	"context"

	"github.com/nikhilbhutani/mediainsight/internal/models"
)

const DefaultListLimit = 100

type Store interface {
	// Append assigns ID and CreatedAt when they are empty and stores rec.
	Append(ctx context.Context, rec *models.HistoryRecord) error
	List(ctx context.Context, userID string, limit int) ([]models.HistoryRecord, error)
	// Delete removes the record only if it belongs to userID. A missing
	// record returns an apperr NotFound error.
	Delete(ctx context.Context, userID, id string) error
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}
