package produits

import (
	"context"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
)

// Service holds the product use cases.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, query url.Values) (api.Page[Product], error) {
	return s.repo.List(ctx, query)
}

func (s *Service) Options(ctx context.Context) ([]Product, error) {
	return s.repo.Options(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form Form, image *shared.Upload) (Product, shared.FieldErrors, error) {
	p, fe := validate(form)
	if fe != nil {
		return Product{}, fe, nil
	}
	created, err := s.repo.Create(ctx, p, image)
	if err != nil {
		return Product{}, backendErrors(err), err
	}
	return created, nil, nil
}

func (s *Service) Update(ctx context.Context, id int64, form Form, image *shared.Upload) (Product, shared.FieldErrors, error) {
	if id <= 0 {
		return Product{}, nil, shared.ErrInvalidID
	}
	p, fe := validate(form)
	if fe != nil {
		return Product{}, fe, nil
	}
	updated, err := s.repo.Update(ctx, id, p, image)
	if err != nil {
		return Product{}, backendErrors(err), err
	}
	return updated, nil, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Toggle(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	return s.repo.Toggle(ctx, id)
}

// validate checks the form and parses its amounts. A nil FieldErrors means valid.
func validate(form Form) (payload, shared.FieldErrors) {
	form.Nom = strings.TrimSpace(form.Nom)
	form.Description = strings.TrimSpace(form.Description)
	fe := shared.ValidateForm(form)
	if fe == nil {
		fe = shared.FieldErrors{}
	}
	p := payload{Form: form}

	if form.Prix != "" {
		prix, err := shared.ParseAmount(form.Prix)
		switch {
		case err != nil:
			fe.Add("prix", "Montant invalide.")
		case !prix.IsPositive():
			fe.Add("prix", "Le prix doit être supérieur à 0.")
		default:
			p.prix = prix
		}
	}
	if strings.TrimSpace(form.PrixPromo) != "" {
		promo, err := shared.ParseAmount(form.PrixPromo)
		switch {
		case err != nil:
			fe.Add("prix_promo", "Montant invalide.")
		case !promo.IsPositive():
			fe.Add("prix_promo", "Le prix promotionnel doit être supérieur à 0.")
		case !fe.Has("prix") && promo.GreaterThanOrEqual(p.prix):
			fe.Add("prix_promo", "Le prix promotionnel doit être inférieur au prix.")
		default:
			p.prixPromo = decimal.NewNullDecimal(promo)
		}
	}
	if fe.Any() {
		return payload{}, fe
	}
	return p, nil
}

func backendErrors(err error) shared.FieldErrors {
	if fe := shared.FieldErrorsFrom(err); fe.Any() {
		return fe
	}
	return nil
}
