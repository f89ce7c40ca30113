package categories

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
)

// Repository is the category backend.
type Repository interface {
	List(ctx context.Context, query url.Values) (api.Page[Category], error)
	Options(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, form Form, image *shared.Upload) (Category, error)
	Update(ctx context.Context, id int64, form Form, image *shared.Upload) (Category, error)
	Delete(ctx context.Context, id int64) error
	Toggle(ctx context.Context, id int64) (Category, error)
}

type repository struct {
	client *api.Client
}

// NewRepository returns the API backed repository.
func NewRepository(client *api.Client) Repository {
	return &repository{client: client}
}

func (r *repository) List(ctx context.Context, query url.Values) (api.Page[Category], error) {
	var page api.Page[Category]
	if err := r.client.Get(ctx, "categories", query, &page); err != nil {
		return api.Page[Category]{}, fmt.Errorf("list categories: %w", err)
	}
	return page, nil
}

// Options loads every active category for select inputs.
func (r *repository) Options(ctx context.Context) ([]Category, error) {
	var page api.Page[Category]
	query := url.Values{"actif": {"1"}, "per_page": {"100"}}
	if err := r.client.Get(ctx, "categories", query, &page); err != nil {
		return nil, fmt.Errorf("list category options: %w", err)
	}
	return page.Items, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	var c Category
	if err := r.client.Get(ctx, path(id), nil, &c); err != nil {
		return Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, form Form, image *shared.Upload) (Category, error) {
	var c Category
	if err := r.client.PostMultipart(ctx, "categories", multipartFor(form, image), &c); err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, id int64, form Form, image *shared.Upload) (Category, error) {
	var c Category
	body := multipartFor(form, image).MethodOverride(http.MethodPut)
	if err := r.client.PostMultipart(ctx, path(id), body, &c); err != nil {
		return Category{}, fmt.Errorf("update category %d: %w", id, err)
	}
	return c, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, path(id), nil); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}

func (r *repository) Toggle(ctx context.Context, id int64) (Category, error) {
	var c Category
	if err := r.client.Patch(ctx, path(id)+"/toggle", nil, &c); err != nil {
		return Category{}, fmt.Errorf("toggle category %d: %w", id, err)
	}
	return c, nil
}

func path(id int64) string {
	return "categories/" + strconv.FormatInt(id, 10)
}

func multipartFor(form Form, image *shared.Upload) *api.Multipart {
	actif := "0"
	if form.Actif {
		actif = "1"
	}
	body := api.NewMultipart().
		Set("nom", form.Nom).
		Set("description", form.Description).
		Set("actif", actif)
	if image != nil {
		body.File("image", image.Filename, image.ContentType, image.Reader())
	}
	return body
}
