package httpx

import (
	"context"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthReport is the /healthz body.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health runs every check concurrently within timeout. Any failure answers 503.
func Health(timeout time.Duration, checks map[string]Check) http.Handler {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		// Goroutines never fail the group so every check reports.
		results := make([]error, len(names))
		var g errgroup.Group
		for i, name := range names {
			check := checks[name]
			g.Go(func() error {
				results[i] = check(ctx)
				return nil
			})
		}
		_ = g.Wait()

		report := HealthReport{Status: "ok"}
		if len(names) > 0 {
			report.Checks = make(map[string]string, len(names))
		}
		for i, name := range names {
			if err := results[i]; err != nil {
				report.Checks[name] = err.Error()
				report.Status = "degraded"
				continue
			}
			report.Checks[name] = "ok"
		}

		status := http.StatusOK
		if report.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, report)
	})
}
