package produits

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
)

// Repository is the product backend.
type Repository interface {
	List(ctx context.Context, query url.Values) (api.Page[Product], error)
	Options(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, p payload, image *shared.Upload) (Product, error)
	Update(ctx context.Context, id int64, p payload, image *shared.Upload) (Product, error)
	Delete(ctx context.Context, id int64) error
	Toggle(ctx context.Context, id int64) (Product, error)
}

type repository struct {
	client *api.Client
}

// NewRepository returns the API backed repository.
func NewRepository(client *api.Client) Repository {
	return &repository{client: client}
}

func (r *repository) List(ctx context.Context, query url.Values) (api.Page[Product], error) {
	var page api.Page[Product]
	if err := r.client.Get(ctx, "produits", query, &page); err != nil {
		return api.Page[Product]{}, fmt.Errorf("list products: %w", err)
	}
	return page, nil
}

// Options loads the active products offered on the order form.
func (r *repository) Options(ctx context.Context) ([]Product, error) {
	var page api.Page[Product]
	query := url.Values{"actif": {"1"}, "per_page": {"100"}}
	if err := r.client.Get(ctx, "produits", query, &page); err != nil {
		return nil, fmt.Errorf("list product options: %w", err)
	}
	return page.Items, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	if err := r.client.Get(ctx, path(id), nil, &p); err != nil {
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, p payload, image *shared.Upload) (Product, error) {
	var out Product
	if err := r.client.PostMultipart(ctx, "produits", multipartFor(p, image), &out); err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return out, nil
}

func (r *repository) Update(ctx context.Context, id int64, p payload, image *shared.Upload) (Product, error) {
	var out Product
	body := multipartFor(p, image).MethodOverride(http.MethodPut)
	if err := r.client.PostMultipart(ctx, path(id), body, &out); err != nil {
		return Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	return out, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, path(id), nil); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

func (r *repository) Toggle(ctx context.Context, id int64) (Product, error) {
	var out Product
	if err := r.client.Patch(ctx, path(id)+"/toggle", nil, &out); err != nil {
		return Product{}, fmt.Errorf("toggle product %d: %w", id, err)
	}
	return out, nil
}

func path(id int64) string {
	return "produits/" + strconv.FormatInt(id, 10)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func multipartFor(p payload, image *shared.Upload) *api.Multipart {
	body := api.NewMultipart().
		Set("nom", p.Nom).
		Set("description", p.Description).
		Set("categorie_id", strconv.FormatInt(p.CategorieID, 10)).
		Set("prix", p.prix.StringFixed(2)).
		Set("stock", strconv.Itoa(p.Stock)).
		Set("sur_mesure", flag(p.SurMesure)).
		Set("actif", flag(p.Actif))
	// An empty prix_promo clears the promotion.
	if p.prixPromo.Valid {
		body.Set("prix_promo", p.prixPromo.Decimal.StringFixed(2))
	} else {
		body.Set("prix_promo", "")
	}
	if image != nil {
		body.File("image", image.Filename, image.ContentType, image.Reader())
	}
	return body
}
