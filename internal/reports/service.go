package reports

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/cache"
)

// Dashboard windows.
const (
	dashboardDays     = 30
	dashboardProducts = 5
	// ReportProducts is the length of the top products report.
	ReportProducts = 50
)

// Service holds the reporting use cases.
type Service struct {
	repo   Repository
	cache  *cache.JSON
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a Service. cache may be nil.
func NewService(repo Repository, c *cache.JSON, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: c, logger: logger, now: time.Now}
}

// Now is the service clock, for default periods.
func (s *Service) Now() time.Time {
	return s.now()
}

// Dashboard loads the counters, the last 30 days of sales and the month's
// best sellers concurrently. Only the counters are required.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	now := s.now()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Stats, err = s.repo.Stats(ctx)
		return err
	})
	g.Go(func() error {
		p := LastDays(now, dashboardDays)
		rows, err := s.Sales(ctx, p)
		if err != nil {
			s.logger.Warn("dashboard sales failed", "error", err)
			return nil
		}
		d.Sales = FillDays(rows, p)
		return nil
	})
	g.Go(func() error {
		rows, err := s.TopProducts(ctx, MonthToDate(now), dashboardProducts)
		if err != nil {
			s.logger.Warn("dashboard products failed", "error", err)
			return nil
		}
		d.Products = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// Sales returns the daily sales of p.
func (s *Service) Sales(ctx context.Context, p Period) ([]SalesRow, error) {
	var rows []SalesRow
	err := s.cache.Lookup(ctx, &rows, func(ctx context.Context) (any, error) {
		return s.repo.Sales(ctx, p)
	}, "ventes", p.Slug())
	return rows, err
}

// TopProducts returns the best sellers of p.
func (s *Service) TopProducts(ctx context.Context, p Period, limit int) ([]ProductRow, error) {
	var rows []ProductRow
	err := s.cache.Lookup(ctx, &rows, func(ctx context.Context) (any, error) {
		return s.repo.TopProducts(ctx, p, limit)
	}, "produits", p.Slug(), strconv.Itoa(limit))
	return rows, err
}

// Refresh drops every cached report.
func (s *Service) Refresh(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Warm loads the reports admins open first into the cache: the dashboard
// windows and the month to date reports.
func (s *Service) Warm(ctx context.Context) (int, error) {
	now := s.now()
	month := MonthToDate(now)
	loads := []func(context.Context) error{
		func(ctx context.Context) error { _, err := s.Sales(ctx, LastDays(now, dashboardDays)); return err },
		func(ctx context.Context) error { _, err := s.Sales(ctx, month); return err },
		func(ctx context.Context) error { _, err := s.TopProducts(ctx, month, dashboardProducts); return err },
		func(ctx context.Context) error { _, err := s.TopProducts(ctx, month, ReportProducts); return err },
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, load := range loads {
		g.Go(func() error { return load(ctx) })
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(loads), nil
}
