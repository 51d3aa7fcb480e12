package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
	"github.com/nikhilbhutani/mediainsight/internal/models"
)

// MemoryStore keeps history in process. Used when DATABASE_URL is unset.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.HistoryRecord
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Append(_ context.Context, rec *models.HistoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *rec)
	return nil
}

func (s *MemoryStore) List(_ context.Context, userID string, limit int) ([]models.HistoryRecord, error) {
	limit = normalizeLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.HistoryRecord, 0)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		if s.records[i].UserID == userID {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range s.records {
		if rec.ID == id && rec.UserID == userID {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Document not found")
}
