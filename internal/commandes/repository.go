package commandes

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
)

// Repository is the order backend.
type Repository interface {
	List(ctx context.Context, query url.Values) (api.Page[Order], error)
	Get(ctx context.Context, id int64) (Order, error)
	Create(ctx context.Context, body createPayload) (Order, error)
	UpdateStatus(ctx context.Context, id int64, statut string) (Order, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	client *api.Client
}

// NewRepository returns the API backed repository.
func NewRepository(client *api.Client) Repository {
	return &repository{client: client}
}

func (r *repository) List(ctx context.Context, query url.Values) (api.Page[Order], error) {
	var page api.Page[Order]
	if err := r.client.Get(ctx, "commandes", query, &page); err != nil {
		return api.Page[Order]{}, fmt.Errorf("list orders: %w", err)
	}
	return page, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Order, error) {
	var o Order
	if err := r.client.Get(ctx, path(id), nil, &o); err != nil {
		return Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

func (r *repository) Create(ctx context.Context, body createPayload) (Order, error) {
	var o Order
	if err := r.client.Post(ctx, "commandes", body, &o); err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, statut string) (Order, error) {
	var o Order
	body := map[string]string{"statut": statut}
	if err := r.client.Patch(ctx, path(id)+"/statut", body, &o); err != nil {
		return Order{}, fmt.Errorf("update order %d status: %w", id, err)
	}
	return o, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, path(id), nil); err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	return nil
}

func path(id int64) string {
	return "commandes/" + strconv.FormatInt(id, 10)
}
