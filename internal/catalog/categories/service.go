package categories

import (
	"context"
	"net/url"
	"strings"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
)

// Service holds the category use cases.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, query url.Values) (api.Page[Category], error) {
	return s.repo.List(ctx, query)
}

func (s *Service) Options(ctx context.Context) ([]Category, error) {
	return s.repo.Options(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// Create validates the form, then submits it. Inline errors come back as FieldErrors.
func (s *Service) Create(ctx context.Context, form Form, image *shared.Upload) (Category, shared.FieldErrors, error) {
	form = normalize(form)
	if fe := shared.ValidateForm(form); fe != nil {
		return Category{}, fe, nil
	}
	created, err := s.repo.Create(ctx, form, image)
	if err != nil {
		return Category{}, backendErrors(err), err
	}
	return created, nil, nil
}

func (s *Service) Update(ctx context.Context, id int64, form Form, image *shared.Upload) (Category, shared.FieldErrors, error) {
	if id <= 0 {
		return Category{}, nil, shared.ErrInvalidID
	}
	form = normalize(form)
	if fe := shared.ValidateForm(form); fe != nil {
		return Category{}, fe, nil
	}
	updated, err := s.repo.Update(ctx, id, form, image)
	if err != nil {
		return Category{}, backendErrors(err), err
	}
	return updated, nil, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Toggle(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, shared.ErrInvalidID
	}
	return s.repo.Toggle(ctx, id)
}

func normalize(form Form) Form {
	form.Nom = strings.TrimSpace(form.Nom)
	form.Description = strings.TrimSpace(form.Description)
	return form
}

func backendErrors(err error) shared.FieldErrors {
	if fe := shared.FieldErrorsFrom(err); fe.Any() {
		return fe
	}
	return nil
}
