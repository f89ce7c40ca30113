package paiements

import (
	"github.com/shopspring/decimal"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
)

// OrderRef is the order a payment settles.
type OrderRef struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`
}

// Payment is a payment record ("paiement").
type Payment struct {
	ID            int64           `json:"id"`
	Reference     string          `json:"reference"`
	CommandeID    int64           `json:"commande_id"`
	Commande      *OrderRef       `json:"commande"`
	ClientNom     string          `json:"client_nom"`
	Montant       decimal.Decimal `json:"montant"`
	Methode       string          `json:"methode"`
	Statut        string          `json:"statut"`
	StatutLabel   string          `json:"statut_label"`
	StatutColor   string          `json:"statut_color"`
	TransactionID string          `json:"transaction_id"`
	MotifRejet    string          `json:"motif_rejet"`
	Notes         string          `json:"notes"`
	CreatedAt     api.Date        `json:"created_at"`
}

// OrderID is the settled order, from the nested object or the flat field.
func (p Payment) OrderID() int64 {
	if p.Commande != nil && p.Commande.ID > 0 {
		return p.Commande.ID
	}
	return p.CommandeID
}

// OrderReference is the settled order reference, empty when unknown.
func (p Payment) OrderReference() string {
	if p.Commande == nil {
		return ""
	}
	return p.Commande.Reference
}

// MethodLabel is the display name of the payment method.
func (p Payment) MethodLabel() string {
	return MethodLabel(p.Methode)
}

// Actions lists the buttons offered for the payment.
func (p Payment) Actions() []Action {
	return ActionsFor(p.Statut, p.Methode)
}

// Allows reports whether action is offered for the payment.
func (p Payment) Allows(action string) bool {
	return Allowed(p.Statut, p.Methode, action)
}

// StatusTotal is one row of the stats header.
type StatusTotal struct {
	Statut  string          `json:"statut"`
	Label   string          `json:"statut_label"`
	Color   string          `json:"statut_color"`
	Nombre  int             `json:"nombre"`
	Montant decimal.Decimal `json:"montant"`
}

// Stats are the totals shown above the payment list.
type Stats struct {
	Total     decimal.Decimal `json:"total"`
	Nombre    int             `json:"nombre"`
	ParStatut []StatusTotal   `json:"par_statut"`
}

// Form is the manual payment form.
type Form struct {
	CommandeID    int64  `form:"commande_id" validate:"gt=0"`
	Montant       string `form:"montant" validate:"required"`
	Methode       string `form:"methode" validate:"required,oneof=especes wave orange_money carte virement"`
	TransactionID string `form:"transaction_id" validate:"max=100"`
	Notes         string `form:"notes" validate:"max=1000"`
}

// createPayload is the body of POST /paiements.
type createPayload struct {
	CommandeID    int64           `json:"commande_id"`
	Montant       decimal.Decimal `json:"montant"`
	Methode       string          `json:"methode"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// RejectForm carries the rejection reason.
type RejectForm struct {
	Motif string `form:"motif" validate:"required,min=3,max=500"`
}
