package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/atelier-sur-mesure/atelier-admin/internal/jobs"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeWarmer struct {
	n      int
	err    error
	calls  int
	bounds bool
}

func (f *fakeWarmer) Warm(ctx context.Context) (int, error) {
	f.calls++
	_, f.bounds = ctx.Deadline()
	return f.n, f.err
}

func TestNewReportsWarmupTask(t *testing.T) {
	task, err := NewReportsWarmupTask("")
	require.NoError(t, err)

	assert.Equal(t, TaskReportsWarmup, task.Type())
	var payload ReportsWarmupPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, ReasonSchedule, payload.Reason)
}

func TestReportsWarmupJobHandle(t *testing.T) {
	warmer := &fakeWarmer{n: 4}
	job := NewReportsWarmupJob(warmer, quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := NewReportsWarmupTask(ReasonRefresh)
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, 1, warmer.calls)
	assert.True(t, warmer.bounds, "warmup runs under a deadline")
}

func TestReportsWarmupJobReturnsErrors(t *testing.T) {
	boom := errors.New("backend down")
	job := NewReportsWarmupJob(&fakeWarmer{err: boom}, quietLogger(), nil)
	task, err := NewReportsWarmupTask(ReasonSchedule)
	require.NoError(t, err)

	assert.ErrorIs(t, job.Handle(context.Background(), task), boom)
}

func TestReportsWarmupJobSkipsBadPayload(t *testing.T) {
	warmer := &fakeWarmer{}
	job := NewReportsWarmupJob(warmer, quietLogger(), nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskReportsWarmup, []byte("{")))

	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, warmer.calls)
}

func TestReportsWarmupJobNotConfigured(t *testing.T) {
	var job *ReportsWarmupJob
	task, _ := NewReportsWarmupTask("")
	assert.Error(t, job.Handle(context.Background(), task))
}

func TestNewWorker(t *testing.T) {
	mr := miniredis.RunT(t)
	opts := asynq.RedisClientOpt{Addr: mr.Addr()}
	handler := TaskHandler{Type: TaskReportsWarmup, Handler: func(context.Context, *asynq.Task) error { return nil }}
	task, err := NewReportsWarmupTask("")
	require.NoError(t, err)

	_, err = NewWorker(WorkerConfig{RedisOpts: opts})
	assert.Error(t, err, "a worker needs handlers")

	_, err = NewWorker(WorkerConfig{RedisOpts: opts, Handlers: []TaskHandler{handler}, Cron: []CronRegistration{{Spec: "tous les jours", Task: task}}})
	assert.Error(t, err)

	w, err := NewWorker(WorkerConfig{RedisOpts: opts, Handlers: []TaskHandler{handler}, Cron: []CronRegistration{{Spec: "*/15 7-21 * * *", Task: task}}})
	require.NoError(t, err)
	assert.NotNil(t, w.scheduler)
}

func TestNilWorkerRun(t *testing.T) {
	var w *Worker
	assert.Error(t, w.Run(context.Background()))
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return f.info, f.err
}

func serveHealth(t *testing.T, inspector QueueInspector) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(inspector, quietLogger()).MountRoutes)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	return rec
}

func TestJobsHealth(t *testing.T) {
	rec := serveHealth(t, fakeInspector{info: &asynq.QueueInfo{
		Queue: QueueDefault, Size: 6, Pending: 3, Active: 1, Retry: 1, Archived: 1,
		Processed: 40, Failed: 2, Timestamp: time.Now(),
	}})

	require.Equal(t, http.StatusOK, rec.Code)
	var health QueueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, QueueHealth{Queue: QueueDefault, Size: 6, Pending: 3, Active: 1, Retry: 1, Archived: 1}, health)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, key := range []string{"queue", "size", "pending", "active", "retry", "archived"} {
		assert.Contains(t, raw, key)
	}
}

func TestJobsHealthWithoutInspector(t *testing.T) {
	rec := serveHealth(t, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"queue":"default"`)
}

func TestJobsHealthQueueDown(t *testing.T) {
	rec := serveHealth(t, fakeInspector{err: errors.New("dial tcp: refused")})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "refused")
}
