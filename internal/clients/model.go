package clients

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
)

// Client is a customer of the shop.
type Client struct {
	ID             int64    `json:"id"`
	Nom            string   `json:"nom"`
	Prenom         string   `json:"prenom"`
	Telephone      string   `json:"telephone"`
	Email          string   `json:"email"`
	Adresse        string   `json:"adresse"`
	Ville          string   `json:"ville"`
	Genre          string   `json:"genre"`
	Notes          string   `json:"notes"`
	CommandesCount int      `json:"commandes_count"`
	CreatedAt      api.Date `json:"created_at"`
}

// FullName is "Prénom Nom", or whichever part is set.
func (c Client) FullName() string {
	return strings.TrimSpace(c.Prenom + " " + c.Nom)
}

// OrderSummary is an order as listed on the client page.
type OrderSummary struct {
	ID           int64           `json:"id"`
	Reference    string          `json:"reference"`
	Statut       string          `json:"statut"`
	StatutLabel  string          `json:"statut_label"`
	StatutColor  string          `json:"statut_color"`
	MontantTotal decimal.Decimal `json:"montant_total"`
	DateCommande api.Date        `json:"date_commande"`
}

// Detail is the client page payload.
type Detail struct {
	Client
	Commandes []OrderSummary `json:"commandes"`
	Mesures   []Mesures      `json:"mesures"`
}

// Mesures is one measurement set, taken for a garment type.
type Mesures struct {
	ID           int64                      `json:"id"`
	ClientID     int64                      `json:"client_id"`
	TypeVetement string                     `json:"type_vetement"`
	Valeurs      map[string]decimal.Decimal `json:"mesures"`
	Unite        string                     `json:"unite"`
	Notes        string                     `json:"notes"`
	UpdatedAt    api.Date                   `json:"updated_at"`
}

// Value returns the measurement for key, formatted without trailing zeros.
func (m Mesures) Value(key string) string {
	v, ok := m.Valeurs[key]
	if !ok {
		return ""
	}
	return v.String()
}

// Form is the create/edit client form.
type Form struct {
	Nom       string `form:"nom" json:"nom" validate:"required,max=100"`
	Prenom    string `form:"prenom" json:"prenom" validate:"max=100"`
	Telephone string `form:"telephone" json:"telephone" validate:"required,min=6,max=20"`
	Email     string `form:"email" json:"email,omitempty" validate:"omitempty,email,max=150"`
	Adresse   string `form:"adresse" json:"adresse" validate:"max=255"`
	Ville     string `form:"ville" json:"ville" validate:"max=100"`
	Genre     string `form:"genre" json:"genre,omitempty" validate:"omitempty,oneof=homme femme"`
	Notes     string `form:"notes" json:"notes" validate:"max=2000"`
}

// FormFrom pre-fills the edit form.
func FormFrom(c Client) Form {
	return Form{
		Nom:       c.Nom,
		Prenom:    c.Prenom,
		Telephone: c.Telephone,
		Email:     c.Email,
		Adresse:   c.Adresse,
		Ville:     c.Ville,
		Genre:     c.Genre,
		Notes:     c.Notes,
	}
}

// MesuresForm is the measurement form. Values hold the raw user input.
type MesuresForm struct {
	TypeVetement string            `form:"type_vetement" validate:"required,max=60"`
	Notes        string            `form:"notes" validate:"max=1000"`
	Values       map[string]string `form:"-"`
}

// Value returns the raw input for key.
func (f MesuresForm) Value(key string) string {
	return f.Values[key]
}

// mesuresPayload is the body of POST /clients/{id}/mesures.
type mesuresPayload struct {
	TypeVetement string                     `json:"type_vetement"`
	Mesures      map[string]decimal.Decimal `json:"mesures"`
	Unite        string                     `json:"unite"`
	Notes        string                     `json:"notes,omitempty"`
}
