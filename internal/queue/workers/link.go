package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
	"github.com/nikhilbhutani/mediainsight/internal/models"
	"github.com/nikhilbhutani/mediainsight/internal/pipeline"
	"github.com/nikhilbhutani/mediainsight/internal/queue"
)

type Processor interface {
	Process(ctx context.Context, in models.JobInput) (*pipeline.Outcome, error)
}

// LinkWorker runs queued link jobs through the same pipeline as the
// synchronous endpoint.
type LinkWorker struct {
	proc Processor
}

func NewLinkWorker(proc Processor) *LinkWorker {
	return &LinkWorker{proc: proc}
}

func (w *LinkWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.LinkProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	slog.Info("processing link job", "url", payload.URL, "user_id", payload.UserID)

	out, err := w.proc.Process(ctx, models.JobInput{
		Kind:   models.InputLink,
		UserID: payload.UserID,
		URL:    payload.URL,
	})
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindInput, apperr.KindAcquisitionFailed:
			// Retrying will not make a private or malformed link downloadable.
			return fmt.Errorf("%s: %v: %w", apperr.PublicMessage(err), err, asynq.SkipRetry)
		}
		return fmt.Errorf("process link: %w", err)
	}

	if rw := t.ResultWriter(); rw != nil {
		data, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		if _, err := rw.Write(data); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}

	slog.Info("link job done", "url", payload.URL, "history_id", out.HistoryID)
	return nil
}
