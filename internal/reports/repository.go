package reports

import (
	"context"
	"fmt"
	"strconv"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
)

// Repository is the reporting backend.
type Repository interface {
	Stats(ctx context.Context) (Stats, error)
	Sales(ctx context.Context, p Period) ([]SalesRow, error)
	TopProducts(ctx context.Context, p Period, limit int) ([]ProductRow, error)
}

type repository struct {
	client *api.Client
}

// NewRepository returns the API backed repository.
func NewRepository(client *api.Client) Repository {
	return &repository{client: client}
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := r.client.Get(ctx, "dashboard/stats", nil, &s); err != nil {
		return Stats{}, fmt.Errorf("dashboard stats: %w", err)
	}
	return s, nil
}

func (r *repository) Sales(ctx context.Context, p Period) ([]SalesRow, error) {
	var rows []SalesRow
	if err := r.client.Get(ctx, "rapports/ventes", p.Query(), &rows); err != nil {
		return nil, fmt.Errorf("sales report %s: %w", p.Slug(), err)
	}
	return rows, nil
}

func (r *repository) TopProducts(ctx context.Context, p Period, limit int) ([]ProductRow, error) {
	query := p.Query()
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var rows []ProductRow
	if err := r.client.Get(ctx, "rapports/produits", query, &rows); err != nil {
		return nil, fmt.Errorf("products report %s: %w", p.Slug(), err)
	}
	return rows, nil
}
