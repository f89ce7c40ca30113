package commandes

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/pdf"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
)

// Renderer turns an HTML document into a PDF.
type Renderer interface {
	RenderHTML(ctx context.Context, html string, opts pdf.Options) ([]byte, error)
}

// Service holds the order use cases.
type Service struct {
	repo Repository
	pdf  Renderer
	now  func() time.Time
}

// NewService builds a Service. renderer may be nil when PDF sheets are disabled.
func NewService(repo Repository, renderer Renderer) *Service {
	return &Service{repo: repo, pdf: renderer, now: time.Now}
}

func (s *Service) List(ctx context.Context, query url.Values) (api.Page[Order], error) {
	return s.repo.List(ctx, query)
}

func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	if id <= 0 {
		return Order{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// ChangeStatus moves the order to statut when its current status, read again
// from the backend, offers that change.
func (s *Service) ChangeStatus(ctx context.Context, id int64, statut string) (Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(order.Statut, statut) {
		return Order{}, fmt.Errorf("order %d from %q to %q: %w", id, order.Statut, statut, shared.ErrActionNotAllowed)
	}
	return s.repo.UpdateStatus(ctx, id, statut)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

// Submit sends the draft. Field errors are either local checks or the
// backend validation response.
func (s *Service) Submit(ctx context.Context, d Draft) (Order, shared.FieldErrors, error) {
	if fe := s.CheckDraft(d); fe.Any() {
		return Order{}, fe, nil
	}
	order, err := s.repo.Create(ctx, d.payload())
	if err != nil {
		if fe := shared.FieldErrorsFrom(err); fe.Any() {
			return Order{}, fe, err
		}
		return Order{}, nil, err
	}
	return order, nil, nil
}

// CheckDraft validates a complete draft before submit.
func (s *Service) CheckDraft(d Draft) shared.FieldErrors {
	fe := shared.FieldErrors{}
	if d.ClientID == 0 {
		fe.Add("client_id", "Choisissez un client.")
	}
	if len(d.Lines) == 0 {
		fe.Add("articles", "Ajoutez au moins un article.")
	}
	for i, l := range d.Lines {
		if l.Quantite < 1 {
			fe.Add(fmt.Sprintf("articles.%d.quantite", i), "Quantité invalide.")
		}
		if l.PrixUnitaire.IsNegative() {
			fe.Add(fmt.Sprintf("articles.%d.prix_unitaire", i), "Prix invalide.")
		}
	}
	if !d.DateLivraison.IsZero() {
		now := s.now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if d.DateLivraison.Before(today) {
			fe.Add("date_livraison", "La date de livraison ne peut pas être passée.")
		}
	}
	if d.Remise.IsNegative() {
		fe.Add("remise", "La remise ne peut pas être négative.")
	}
	if d.Acompte.IsNegative() {
		fe.Add("acompte", "L'acompte ne peut pas être négatif.")
	}
	return fe
}

// ErrPDFDisabled is returned when order sheets cannot be rendered.
var ErrPDFDisabled = errors.New("order sheet rendering disabled")

// OrderSheet renders html to PDF.
func (s *Service) OrderSheet(ctx context.Context, html string) ([]byte, error) {
	if s.pdf == nil {
		return nil, ErrPDFDisabled
	}
	out, err := s.pdf.RenderHTML(ctx, html, pdf.A4)
	if errors.Is(err, pdf.ErrDisabled) {
		return nil, ErrPDFDisabled
	}
	return out, err
}
