package paiements

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
)

// Service holds the payment use cases.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, query url.Values) (api.Page[Payment], error) {
	return s.repo.List(ctx, query)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Payment, error) {
	if id <= 0 {
		return Payment{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// Confirm marks a pending payment as received.
func (s *Service) Confirm(ctx context.Context, id int64) (Payment, error) {
	if _, err := s.allowed(ctx, id, ActionConfirm); err != nil {
		return Payment{}, err
	}
	return s.repo.Confirm(ctx, id)
}

// Reject refuses a pending payment with a reason.
func (s *Service) Reject(ctx context.Context, id int64, form RejectForm) (Payment, shared.FieldErrors, error) {
	form.Motif = strings.TrimSpace(form.Motif)
	if fe := shared.ValidateForm(form); fe.Any() {
		return Payment{}, fe, nil
	}
	if _, err := s.allowed(ctx, id, ActionReject); err != nil {
		return Payment{}, nil, err
	}
	p, err := s.repo.Reject(ctx, id, form.Motif)
	if err != nil {
		if fe := shared.FieldErrorsFrom(err); fe.Any() {
			return Payment{}, fe, err
		}
		return Payment{}, nil, err
	}
	return p, nil, nil
}

// Verify asks the operator for the current status of a pending gateway payment.
func (s *Service) Verify(ctx context.Context, id int64) (Payment, error) {
	if _, err := s.allowed(ctx, id, ActionVerify); err != nil {
		return Payment{}, err
	}
	return s.repo.Verify(ctx, id)
}

// Record registers a manual payment. When the order is known, due is its
// reste_a_payer and caps the amount; a settled order takes no payment.
func (s *Service) Record(ctx context.Context, form Form, due *decimal.Decimal) (Payment, shared.FieldErrors, error) {
	body, fe := validate(form, due)
	if fe.Any() {
		return Payment{}, fe, nil
	}
	p, err := s.repo.Create(ctx, body)
	if err != nil {
		if fe := shared.FieldErrorsFrom(err); fe.Any() {
			return Payment{}, fe, err
		}
		return Payment{}, nil, err
	}
	return p, nil, nil
}

func validate(form Form, due *decimal.Decimal) (createPayload, shared.FieldErrors) {
	fe := shared.ValidateForm(form)
	if fe == nil {
		fe = shared.FieldErrors{}
	}
	montant, err := shared.ParseAmount(form.Montant)
	switch {
	case form.Montant == "":
	case err != nil:
		fe.Add("montant", "Montant invalide.")
	case !montant.IsPositive():
		fe.Add("montant", "Le montant doit être positif.")
	case due != nil && !due.IsPositive():
		fe.Add("montant", "Cette commande est déjà soldée.")
	case due != nil && montant.GreaterThan(*due):
		fe.Add("montant", "Le montant dépasse le reste à payer.")
	}
	return createPayload{
		CommandeID:    form.CommandeID,
		Montant:       montant.Round(2),
		Methode:       form.Methode,
		TransactionID: strings.TrimSpace(form.TransactionID),
		Notes:         strings.TrimSpace(form.Notes),
	}, fe
}

func (s *Service) allowed(ctx context.Context, id int64, action string) (Payment, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if !p.Allows(action) {
		return Payment{}, fmt.Errorf("payment %d %s while %q: %w", id, action, p.Statut, shared.ErrActionNotAllowed)
	}
	return p, nil
}
