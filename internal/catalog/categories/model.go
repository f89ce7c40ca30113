package categories

import "github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"

// Category groups products in the shop catalogue.
type Category struct {
	ID            int64    `json:"id"`
	Nom           string   `json:"nom"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description"`
	ImageURL      string   `json:"image_url"`
	Actif         api.Bool `json:"actif"`
	ProduitsCount int      `json:"produits_count"`
}

// Form is the create/edit form.
type Form struct {
	Nom         string `form:"nom" validate:"required,max=120"`
	Description string `form:"description" validate:"max=2000"`
	Actif       bool   `form:"actif"`
}

// FormFrom pre-fills the edit form.
func FormFrom(c Category) Form {
	return Form{Nom: c.Nom, Description: c.Description, Actif: bool(c.Actif)}
}
