package reports

import (
	"github.com/shopspring/decimal"

	"github.com/atelier-sur-mesure/atelier-admin/internal/commandes"
	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
)

// StatusCount is the number of orders in one status.
type StatusCount struct {
	Statut string `json:"statut"`
	Label  string `json:"statut_label"`
	Color  string `json:"statut_color"`
	Nombre int    `json:"nombre"`
}

// Stats are the dashboard counters.
type Stats struct {
	CommandesParStatut  []StatusCount     `json:"commandes_par_statut"`
	CommandesMois       int               `json:"commandes_mois"`
	ChiffreAffairesMois decimal.Decimal   `json:"chiffre_affaires_mois"`
	EncaisseMois        decimal.Decimal   `json:"encaisse_mois"`
	TotalClients        int               `json:"total_clients"`
	NouveauxClients     int               `json:"nouveaux_clients"`
	PaiementsEnAttente  int               `json:"paiements_en_attente"`
	MontantEnAttente    decimal.Decimal   `json:"montant_en_attente"`
	DernieresCommandes  []commandes.Order `json:"dernieres_commandes"`
}

// SalesRow is one day of the sales report.
type SalesRow struct {
	Date            api.Date        `json:"date"`
	NombreCommandes int             `json:"nombre_commandes"`
	MontantTotal    decimal.Decimal `json:"montant_total"`
	MontantPaye     decimal.Decimal `json:"montant_paye"`
}

// Reste is what remains to be collected on the day's orders.
func (r SalesRow) Reste() decimal.Decimal {
	return r.MontantTotal.Sub(r.MontantPaye)
}

// SalesTotals sums a sales report.
type SalesTotals struct {
	NombreCommandes int
	MontantTotal    decimal.Decimal
	MontantPaye     decimal.Decimal
}

// Reste is the amount left to collect over the period.
func (t SalesTotals) Reste() decimal.Decimal {
	return t.MontantTotal.Sub(t.MontantPaye)
}

// SumSales totals rows.
func SumSales(rows []SalesRow) SalesTotals {
	t := SalesTotals{MontantTotal: decimal.Zero, MontantPaye: decimal.Zero}
	for _, r := range rows {
		t.NombreCommandes += r.NombreCommandes
		t.MontantTotal = t.MontantTotal.Add(r.MontantTotal)
		t.MontantPaye = t.MontantPaye.Add(r.MontantPaye)
	}
	return t
}

// ProductRow is one line of the top products report.
type ProductRow struct {
	ProduitID       int64           `json:"produit_id"`
	Produit         string          `json:"produit"`
	Quantite        int             `json:"quantite"`
	ChiffreAffaires decimal.Decimal `json:"chiffre_affaires"`
}

// Dashboard is everything the home page shows.
type Dashboard struct {
	Stats    Stats
	Sales    []SalesRow
	Products []ProductRow
}
