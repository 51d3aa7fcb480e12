package queue

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	TypeLinkProcess = "link:process"

	QueueDefault = "default"
)

type LinkProcessPayload struct {
	URL    string `json:"url"`
	UserID string `json:"user_id"`
}

func NewLinkProcessTask(p LinkProcessPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(TypeLinkProcess, data), nil
}
