package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
	"github.com/nikhilbhutani/mediainsight/internal/config"
)

// Finished link jobs keep their result this long so clients can poll for it.
const resultRetention = 24 * time.Hour

type Client struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

// JobStatus is what GET /api/jobs/{id} reports.
type JobStatus struct {
	TaskID string          `json:"task_id"`
	State  string          `json:"state"`
	Error  string          `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(cfg config.RedisConfig) *Client {
	opt := RedisOpt(cfg)
	return &Client{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
	}
}

func (c *Client) Close() error {
	return errors.Join(c.client.Close(), c.inspector.Close())
}

// EnqueueLinkProcess schedules a link job and returns its task id.
func (c *Client) EnqueueLinkProcess(ctx context.Context, payload LinkProcessPayload) (string, error) {
	task, err := NewLinkProcessTask(payload)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(15*time.Minute),
		asynq.Retention(resultRetention),
	)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", TypeLinkProcess, err)
	}
	return info.ID, nil
}

func (c *Client) TaskStatus(_ context.Context, taskID string) (*JobStatus, error) {
	info, err := c.inspector.GetTaskInfo(QueueDefault, taskID)
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil, apperr.NotFound("Job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("inspect task %s: %w", taskID, err)
	}
	return statusFromInfo(info), nil
}

func statusFromInfo(info *asynq.TaskInfo) *JobStatus {
	st := &JobStatus{
		TaskID: info.ID,
		State:  info.State.String(),
		Error:  info.LastErr,
	}
	if info.State == asynq.TaskStateCompleted && len(info.Result) > 0 {
		st.Result = json.RawMessage(info.Result)
	}
	return st
}
