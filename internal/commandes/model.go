package commandes

import (
	"github.com/shopspring/decimal"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
)

// ClientRef is the client embedded in an order payload.
type ClientRef struct {
	ID        int64  `json:"id"`
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Telephone string `json:"telephone"`
}

// Name is the display name of the client.
func (c *ClientRef) Name() string {
	if c == nil {
		return ""
	}
	if c.Prenom == "" {
		return c.Nom
	}
	return c.Prenom + " " + c.Nom
}

// Article is an order line.
type Article struct {
	ID           int64                      `json:"id"`
	ProduitID    int64                      `json:"produit_id"`
	ProduitNom   string                     `json:"produit_nom"`
	Quantite     int                        `json:"quantite"`
	PrixUnitaire decimal.Decimal            `json:"prix_unitaire"`
	SousTotal    decimal.Decimal            `json:"sous_total"`
	Mesures      map[string]decimal.Decimal `json:"mesures"`
}

// LineTotal is the server subtotal, recomputed when the server omits it.
func (a Article) LineTotal() decimal.Decimal {
	if !a.SousTotal.IsZero() {
		return a.SousTotal
	}
	return a.PrixUnitaire.Mul(decimal.NewFromInt(int64(a.Quantite)))
}

// PaymentRef is a payment as listed on the order page.
type PaymentRef struct {
	ID          int64           `json:"id"`
	Reference   string          `json:"reference"`
	Montant     decimal.Decimal `json:"montant"`
	Methode     string          `json:"methode"`
	Statut      string          `json:"statut"`
	StatutLabel string          `json:"statut_label"`
	StatutColor string          `json:"statut_color"`
	CreatedAt   api.Date        `json:"created_at"`
}

// Order is a customer order ("commande").
type Order struct {
	ID                  int64           `json:"id"`
	Reference           string          `json:"reference"`
	ClientID            int64           `json:"client_id"`
	Client              *ClientRef      `json:"client"`
	Statut              string          `json:"statut"`
	StatutLabel         string          `json:"statut_label"`
	StatutColor         string          `json:"statut_color"`
	DateCommande        api.Date        `json:"date_commande"`
	DateLivraisonPrevue api.Date        `json:"date_livraison_prevue"`
	Articles            []Article       `json:"articles"`
	MontantTotal        decimal.Decimal `json:"montant_total"`
	Remise              decimal.Decimal `json:"remise"`
	Acompte             decimal.Decimal `json:"acompte"`
	MontantPaye         decimal.Decimal `json:"montant_paye"`
	ResteAPayer         decimal.Decimal `json:"reste_a_payer"`
	Notes               string          `json:"notes"`
	Paiements           []PaymentRef    `json:"paiements"`
}

// Transitions lists the status changes offered for the order.
func (o Order) Transitions() []Transition {
	return TransitionsFrom(o.Statut)
}

// Subtotal sums the lines before discount.
func (o Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range o.Articles {
		sum = sum.Add(a.LineTotal())
	}
	return sum
}

// createPayload is the body of POST /commandes.
type createPayload struct {
	ClientID            int64            `json:"client_id"`
	Articles            []articlePayload `json:"articles"`
	DateLivraisonPrevue *api.Date        `json:"date_livraison_prevue,omitempty"`
	Remise              decimal.Decimal  `json:"remise"`
	Acompte             decimal.Decimal  `json:"acompte"`
	Notes               string           `json:"notes,omitempty"`
}

type articlePayload struct {
	ProduitID    int64                      `json:"produit_id"`
	Quantite     int                        `json:"quantite"`
	PrixUnitaire decimal.Decimal            `json:"prix_unitaire"`
	Mesures      map[string]decimal.Decimal `json:"mesures,omitempty"`
}

// Mesure returns the measurement for key, empty when not taken.
func (a Article) Mesure(key string) string {
	return formatMesure(a.Mesures, key)
}

func formatMesure(values map[string]decimal.Decimal, key string) string {
	v, ok := values[key]
	if !ok {
		return ""
	}
	return v.String()
}
