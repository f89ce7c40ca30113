package clients

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
)

// Repository is the client backend.
type Repository interface {
	List(ctx context.Context, query url.Values) (api.Page[Client], error)
	Search(ctx context.Context, term string, limit int) ([]Client, error)
	Get(ctx context.Context, id int64) (Detail, error)
	Create(ctx context.Context, form Form) (Client, error)
	Update(ctx context.Context, id int64, form Form) (Client, error)
	Delete(ctx context.Context, id int64) error
	SaveMesures(ctx context.Context, id int64, body mesuresPayload) (Mesures, error)
}

type repository struct {
	client *api.Client
}

// NewRepository returns the API backed repository.
func NewRepository(client *api.Client) Repository {
	return &repository{client: client}
}

func (r *repository) List(ctx context.Context, query url.Values) (api.Page[Client], error) {
	var page api.Page[Client]
	if err := r.client.Get(ctx, "clients", query, &page); err != nil {
		return api.Page[Client]{}, fmt.Errorf("list clients: %w", err)
	}
	return page, nil
}

// Search returns the first clients matching term, for pickers.
func (r *repository) Search(ctx context.Context, term string, limit int) ([]Client, error) {
	query := api.PageQuery(1, limit, map[string]string{"search": term})
	var page api.Page[Client]
	if err := r.client.Get(ctx, "clients", query, &page); err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}
	return page.Items, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Detail, error) {
	var d Detail
	if err := r.client.Get(ctx, path(id), nil, &d); err != nil {
		return Detail{}, fmt.Errorf("get client %d: %w", id, err)
	}
	return d, nil
}

func (r *repository) Create(ctx context.Context, form Form) (Client, error) {
	var c Client
	if err := r.client.Post(ctx, "clients", form, &c); err != nil {
		return Client{}, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, id int64, form Form) (Client, error) {
	var c Client
	if err := r.client.Put(ctx, path(id), form, &c); err != nil {
		return Client{}, fmt.Errorf("update client %d: %w", id, err)
	}
	return c, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, path(id), nil); err != nil {
		return fmt.Errorf("delete client %d: %w", id, err)
	}
	return nil
}

func (r *repository) SaveMesures(ctx context.Context, id int64, body mesuresPayload) (Mesures, error) {
	var m Mesures
	if err := r.client.Post(ctx, path(id)+"/mesures", body, &m); err != nil {
		return Mesures{}, fmt.Errorf("save measurements for client %d: %w", id, err)
	}
	return m, nil
}

func path(id int64) string {
	return "clients/" + strconv.FormatInt(id, 10)
}
