package commandes

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
)

// draftKey is the session key of the order being entered.
const draftKey = "commande_draft"

// Draft bounds.
const (
	MaxDraftLines   = 50
	MaxLineQuantity = 999
)

var (
	// ErrTooManyLines is returned when the draft already holds MaxDraftLines lines.
	ErrTooManyLines = errors.New("commandes: too many lines")
	// ErrQuantityLimit is returned when a line would exceed MaxLineQuantity.
	ErrQuantityLimit = errors.New("commandes: line quantity limit")
)

// Steps of the order form.
const (
	StepClient   = "client"
	StepArticles = "articles"
	StepRecap    = "recap"
)

// DraftLine is an order line being entered.
type DraftLine struct {
	ProduitID    int64                      `json:"produit_id"`
	ProduitNom   string                     `json:"produit_nom"`
	SurMesure    bool                       `json:"sur_mesure"`
	Quantite     int                        `json:"quantite"`
	PrixUnitaire decimal.Decimal            `json:"prix_unitaire"`
	Mesures      map[string]decimal.Decimal `json:"mesures,omitempty"`
}

// Total is quantity times unit price.
func (l DraftLine) Total() decimal.Decimal {
	return l.PrixUnitaire.Mul(decimal.NewFromInt(int64(l.Quantite)))
}

// Mesure returns the measurement for key, empty when not taken.
func (l DraftLine) Mesure(key string) string {
	return formatMesure(l.Mesures, key)
}

// Draft is the order form state kept in the session across steps.
type Draft struct {
	ClientID      int64           `json:"client_id"`
	ClientNom     string          `json:"client_nom"`
	Lines         []DraftLine     `json:"lines"`
	DateLivraison api.Date        `json:"date_livraison"`
	Remise        decimal.Decimal `json:"remise"`
	Acompte       decimal.Decimal `json:"acompte"`
	Notes         string          `json:"notes"`
}

// Step is the first step whose data is still missing.
func (d Draft) Step() string {
	switch {
	case d.ClientID == 0:
		return StepClient
	case len(d.Lines) == 0:
		return StepArticles
	}
	return StepRecap
}

// Summary prices the draft.
func (d Draft) Summary() Summary {
	return Price(d.Lines, d.Remise, d.Acompte)
}

// AddLine appends a line, merging it into an existing line for the same
// ready-to-wear product at the same price. A merge past MaxLineQuantity
// leaves the draft unchanged.
func (d *Draft) AddLine(line DraftLine) error {
	if line.Quantite > MaxLineQuantity {
		return ErrQuantityLimit
	}
	if !line.SurMesure {
		for i, l := range d.Lines {
			if l.ProduitID == line.ProduitID && !l.SurMesure && l.PrixUnitaire.Equal(line.PrixUnitaire) {
				if l.Quantite+line.Quantite > MaxLineQuantity {
					return ErrQuantityLimit
				}
				d.Lines[i].Quantite += line.Quantite
				return nil
			}
		}
	}
	if len(d.Lines) >= MaxDraftLines {
		return ErrTooManyLines
	}
	d.Lines = append(d.Lines, line)
	return nil
}

// RemoveLine drops line i. Out of range indexes are ignored.
func (d *Draft) RemoveLine(i int) {
	if i < 0 || i >= len(d.Lines) {
		return
	}
	d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
}

// SetClient selects the client. Changing client keeps the lines.
func (d *Draft) SetClient(id int64, name string) {
	d.ClientID = id
	d.ClientNom = name
}

func (d Draft) payload() createPayload {
	p := createPayload{
		ClientID: d.ClientID,
		Articles: make([]articlePayload, 0, len(d.Lines)),
		Notes:    d.Notes,
	}
	summary := d.Summary()
	p.Remise = summary.Remise
	p.Acompte = summary.Acompte
	if !d.DateLivraison.IsZero() {
		date := d.DateLivraison
		p.DateLivraisonPrevue = &date
	}
	for _, l := range d.Lines {
		p.Articles = append(p.Articles, articlePayload{
			ProduitID:    l.ProduitID,
			Quantite:     l.Quantite,
			PrixUnitaire: l.PrixUnitaire.Round(2),
			Mesures:      l.Mesures,
		})
	}
	return p
}

// LoadDraft returns the draft held in the session, or an empty draft.
func LoadDraft(sess *shared.Session) (Draft, error) {
	var d Draft
	if sess == nil {
		return d, nil
	}
	if _, err := sess.GetJSON(draftKey, &d); err != nil {
		// Undecodable drafts are dropped.
		sess.Delete(draftKey)
		return Draft{}, fmt.Errorf("decode order draft: %w", err)
	}
	return d, nil
}

// SaveDraft stores the draft in the session.
func SaveDraft(sess *shared.Session, d Draft) error {
	if sess == nil {
		return fmt.Errorf("save order draft: no session")
	}
	return sess.SetJSON(draftKey, d)
}

// ClearDraft discards the draft: the form starts over empty.
func ClearDraft(sess *shared.Session) {
	if sess != nil {
		sess.Delete(draftKey)
	}
}
