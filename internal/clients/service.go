package clients

import (
	"context"
	"net/url"
	"strings"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
)

// Service holds the client use cases.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, query url.Values) (api.Page[Client], error) {
	return s.repo.List(ctx, query)
}

// Search feeds the client picker of the order form.
func (s *Service) Search(ctx context.Context, term string) ([]Client, error) {
	return s.repo.Search(ctx, strings.TrimSpace(term), 20)
}

func (s *Service) Get(ctx context.Context, id int64) (Detail, error) {
	if id <= 0 {
		return Detail{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form Form) (Client, shared.FieldErrors, error) {
	form = normalize(form)
	if fe := shared.ValidateForm(form); fe != nil {
		return Client{}, fe, nil
	}
	c, err := s.repo.Create(ctx, form)
	if err != nil {
		return Client{}, backendErrors(err), err
	}
	return c, nil, nil
}

func (s *Service) Update(ctx context.Context, id int64, form Form) (Client, shared.FieldErrors, error) {
	if id <= 0 {
		return Client{}, nil, shared.ErrInvalidID
	}
	form = normalize(form)
	if fe := shared.ValidateForm(form); fe != nil {
		return Client{}, fe, nil
	}
	c, err := s.repo.Update(ctx, id, form)
	if err != nil {
		return Client{}, backendErrors(err), err
	}
	return c, nil, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

// SaveMesures records a measurement set. At least one measurement is required.
func (s *Service) SaveMesures(ctx context.Context, id int64, form MesuresForm) (Mesures, shared.FieldErrors, error) {
	if id <= 0 {
		return Mesures{}, nil, shared.ErrInvalidID
	}
	form.TypeVetement = strings.TrimSpace(form.TypeVetement)
	form.Notes = strings.TrimSpace(form.Notes)
	fe := shared.ValidateForm(form)
	if fe == nil {
		fe = shared.FieldErrors{}
	}
	_, values, valueErrs := ParseValues(func(name string) string { return form.Values[name] }, "")
	for k, v := range valueErrs {
		fe.Add("mesure_"+k, v)
	}
	if len(values) == 0 && !valueErrs.Any() {
		fe.Add("mesures", "Saisissez au moins une mesure.")
	}
	if fe.Any() {
		return Mesures{}, fe, nil
	}
	m, err := s.repo.SaveMesures(ctx, id, mesuresPayload{
		TypeVetement: form.TypeVetement,
		Mesures:      values,
		Unite:        Unit,
		Notes:        form.Notes,
	})
	if err != nil {
		return Mesures{}, backendErrors(err), err
	}
	return m, nil, nil
}

func normalize(form Form) Form {
	form.Nom = strings.TrimSpace(form.Nom)
	form.Prenom = strings.TrimSpace(form.Prenom)
	form.Telephone = strings.Join(strings.Fields(form.Telephone), "")
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))
	form.Adresse = strings.TrimSpace(form.Adresse)
	form.Ville = strings.TrimSpace(form.Ville)
	form.Genre = strings.TrimSpace(form.Genre)
	form.Notes = strings.TrimSpace(form.Notes)
	return form
}

func backendErrors(err error) shared.FieldErrors {
	if fe := shared.FieldErrorsFrom(err); fe.Any() {
		return fe
	}
	return nil
}
