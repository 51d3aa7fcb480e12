package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
	"github.com/nikhilbhutani/mediainsight/internal/models"
)

var historyColumns = []string{"id", "user_id", "filename", "source", "transcript", "blog_post", "summary", "created_at"}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return NewPostgresStore(mock), mock
}

func TestPostgresAppendAssignsIDAndCreatedAt(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO history_records`).
		WithArgs(pgxmock.AnyArg(), "u1", "clip.mp4", "media", "words", "post", "short").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	rec := &models.HistoryRecord{
		UserID: "u1", Filename: "clip.mp4", Source: "media",
		Transcript: "words", BlogPost: "post", Summary: "short",
	}
	require.NoError(t, store.Append(context.Background(), rec))
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, created, rec.CreatedAt)
}

func TestPostgresAppendWrapsErrors(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`INSERT INTO history_records`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	err := store.Append(context.Background(), &models.HistoryRecord{UserID: "u1"})
	assert.ErrorContains(t, err, "insert history record: connection reset")
}

func TestPostgresListMapsColumns(t *testing.T) {
	store, mock := newMockStore(t)
	newer := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	mock.ExpectQuery(`SELECT id, user_id, filename, source, transcript, blog_post, summary, created_at\s+FROM history_records`).
		WithArgs("u1", DefaultListLimit).
		WillReturnRows(pgxmock.NewRows(historyColumns).
			AddRow("b", "u1", "Text input", "text", "t2", "p2", "s2", newer).
			AddRow("a", "u1", "clip.mp4", "media", "t1", "p1", "s1", older))

	got, err := store.List(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.HistoryRecord{
		ID: "b", UserID: "u1", Filename: "Text input", Source: "text",
		Transcript: "t2", BlogPost: "p2", Summary: "s2", CreatedAt: newer,
	}, got[0])
	assert.Equal(t, "a", got[1].ID)
}

func TestPostgresListEmpty(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`FROM history_records`).
		WithArgs("nobody", 5).
		WillReturnRows(pgxmock.NewRows(historyColumns))

	got, err := store.List(context.Background(), "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPostgresDeleteTwiceIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	id := "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	mock.ExpectExec(`DELETE FROM history_records`).WithArgs(id, "u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM history_records`).WithArgs(id, "u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, store.Delete(context.Background(), "u1", id))
	err := store.Delete(context.Background(), "u1", id)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPostgresDeleteMalformedIDSkipsQuery(t *testing.T) {
	store, _ := newMockStore(t)

	err := store.Delete(context.Background(), "u1", "not-a-uuid")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
