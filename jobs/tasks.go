package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup precomputes the default trial balance and balance
	// sheet so the first request after an invalidation is served warm.
	TaskReportsWarmup = "reports:warmup"
)

// ReportsWarmupPayload selects what the warmup pass computes.
type ReportsWarmupPayload struct {
	Currency string `json:"currency,omitempty"`
}

// NewReportsWarmupTask constructs the warmup task.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}
