package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup reloads the report cache.
	TaskReportsWarmup = "rapports:warmup"
)

// Warmup reasons.
const (
	ReasonSchedule = "schedule"
	ReasonRefresh  = "refresh"
)

// ReportsWarmupPayload records what triggered a warmup.
type ReportsWarmupPayload struct {
	Reason string `json:"reason"`
}

// NewReportsWarmupTask constructs an Asynq task.
func NewReportsWarmupTask(reason string) (*asynq.Task, error) {
	if reason == "" {
		reason = ReasonSchedule
	}
	data, err := json.Marshal(ReportsWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
	), nil
}
