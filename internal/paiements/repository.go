package paiements

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
)

// Repository is the payment backend.
type Repository interface {
	List(ctx context.Context, query url.Values) (api.Page[Payment], error)
	Stats(ctx context.Context) (Stats, error)
	Get(ctx context.Context, id int64) (Payment, error)
	Create(ctx context.Context, body createPayload) (Payment, error)
	Confirm(ctx context.Context, id int64) (Payment, error)
	Reject(ctx context.Context, id int64, motif string) (Payment, error)
	Verify(ctx context.Context, id int64) (Payment, error)
}

type repository struct {
	client *api.Client
}

// NewRepository returns the API backed repository.
func NewRepository(client *api.Client) Repository {
	return &repository{client: client}
}

func (r *repository) List(ctx context.Context, query url.Values) (api.Page[Payment], error) {
	var page api.Page[Payment]
	if err := r.client.Get(ctx, "paiements", query, &page); err != nil {
		return api.Page[Payment]{}, fmt.Errorf("list payments: %w", err)
	}
	return page, nil
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := r.client.Get(ctx, "paiements/stats", nil, &s); err != nil {
		return Stats{}, fmt.Errorf("payment stats: %w", err)
	}
	return s, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Payment, error) {
	var p Payment
	if err := r.client.Get(ctx, path(id), nil, &p); err != nil {
		return Payment{}, fmt.Errorf("get payment %d: %w", id, err)
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, body createPayload) (Payment, error) {
	var p Payment
	if err := r.client.Post(ctx, "paiements", body, &p); err != nil {
		return Payment{}, fmt.Errorf("create payment: %w", err)
	}
	return p, nil
}

func (r *repository) Confirm(ctx context.Context, id int64) (Payment, error) {
	var p Payment
	if err := r.client.Post(ctx, path(id)+"/confirmer", nil, &p); err != nil {
		return Payment{}, fmt.Errorf("confirm payment %d: %w", id, err)
	}
	return p, nil
}

func (r *repository) Reject(ctx context.Context, id int64, motif string) (Payment, error) {
	var p Payment
	if err := r.client.Post(ctx, path(id)+"/rejeter", map[string]string{"motif": motif}, &p); err != nil {
		return Payment{}, fmt.Errorf("reject payment %d: %w", id, err)
	}
	return p, nil
}

// Verify asks the backend to query the payment operator.
func (r *repository) Verify(ctx context.Context, id int64) (Payment, error) {
	var p Payment
	if err := r.client.Get(ctx, path(id)+"/verifier", nil, &p); err != nil {
		return Payment{}, fmt.Errorf("verify payment %d: %w", id, err)
	}
	return p, nil
}

func path(id int64) string {
	return "paiements/" + strconv.FormatInt(id, 10)
}
