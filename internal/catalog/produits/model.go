package produits

import (
	"github.com/shopspring/decimal"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
)

// CategoryRef is the category embedded in a product payload.
type CategoryRef struct {
	ID  int64  `json:"id"`
	Nom string `json:"nom"`
}

// Product is an item of the catalogue. SurMesure products take measurements
// when ordered.
type Product struct {
	ID          int64               `json:"id"`
	Nom         string              `json:"nom"`
	Slug        string              `json:"slug"`
	Description string              `json:"description"`
	CategorieID int64               `json:"categorie_id"`
	Categorie   *CategoryRef        `json:"categorie"`
	Prix        decimal.Decimal     `json:"prix"`
	PrixPromo   decimal.NullDecimal `json:"prix_promo"`
	Stock       int                 `json:"stock"`
	ImageURL    string              `json:"image_url"`
	SurMesure   api.Bool            `json:"sur_mesure"`
	Actif       api.Bool            `json:"actif"`
}

// CategoryName returns the category label, empty when not embedded.
func (p Product) CategoryName() string {
	if p.Categorie == nil {
		return ""
	}
	return p.Categorie.Nom
}

// OnPromo reports whether a promotional price below the list price is set.
func (p Product) OnPromo() bool {
	return p.PrixPromo.Valid && p.PrixPromo.Decimal.IsPositive() && p.PrixPromo.Decimal.LessThan(p.Prix)
}

// UnitPrice is the price charged by default on an order line.
func (p Product) UnitPrice() decimal.Decimal {
	if p.OnPromo() {
		return p.PrixPromo.Decimal
	}
	return p.Prix
}

// Form is the create/edit form. Amounts stay strings so the user input is
// shown back untouched on error.
type Form struct {
	Nom         string `form:"nom" validate:"required,max=150"`
	Description string `form:"description" validate:"max=5000"`
	CategorieID int64  `form:"categorie_id" validate:"required,gt=0"`
	Prix        string `form:"prix" validate:"required"`
	PrixPromo   string `form:"prix_promo"`
	Stock       int    `form:"stock" validate:"gte=0"`
	SurMesure   bool   `form:"sur_mesure"`
	Actif       bool   `form:"actif"`
}

// FormFrom pre-fills the edit form.
func FormFrom(p Product) Form {
	f := Form{
		Nom:         p.Nom,
		Description: p.Description,
		CategorieID: p.CategorieID,
		Prix:        p.Prix.String(),
		Stock:       p.Stock,
		SurMesure:   bool(p.SurMesure),
		Actif:       bool(p.Actif),
	}
	if f.CategorieID == 0 && p.Categorie != nil {
		f.CategorieID = p.Categorie.ID
	}
	if p.PrixPromo.Valid {
		f.PrixPromo = p.PrixPromo.Decimal.String()
	}
	return f
}

// payload is the validated form with parsed amounts.
type payload struct {
	Form
	prix      decimal.Decimal
	prixPromo decimal.NullDecimal
}
