package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
	"github.com/nikhilbhutani/mediainsight/internal/models"
)

// DB is the part of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, rec *models.HistoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO history_records (id, user_id, filename, source, transcript, blog_post, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		rec.ID, rec.UserID, rec.Filename, rec.Source, rec.Transcript, rec.BlogPost, rec.Summary,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, userID string, limit int) ([]models.HistoryRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, filename, source, transcript, blog_post, summary, created_at
		FROM history_records
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.HistoryRecord])
	if err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.NotFound("Document not found")
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM history_records WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete history record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Document not found")
	}
	return nil
}
