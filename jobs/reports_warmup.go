package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/atelier-sur-mesure/atelier-admin/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Warmer loads reports into the cache and reports how many entries it loaded.
type Warmer interface {
	Warm(ctx context.Context) (int, error)
}

// ReportsWarmupJob pre-populates the report cache.
type ReportsWarmupJob struct {
	Reports Warmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(reports Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{Reports: reports, Logger: logger, Metrics: metrics, Timeout: time.Minute}
}

// Handle processes report warmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("reports warmup: decode payload: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskReportsWarmup)
	logger := j.logger().With(slog.String("reason", payload.Reason))
	start := time.Now()

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	warmed, err := j.Reports.Warm(ctx)
	if err != nil {
		logger.Error("reports warmup failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics().AddWarmed(TaskReportsWarmup, warmed)
	logger.Info("completed reports warmup", slog.Int("entries", warmed), slog.Duration("duration", time.Since(start)))
	return tracker.End(nil)
}

func (j *ReportsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportsWarmup))
}

func (j *ReportsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
