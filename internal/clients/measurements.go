package clients

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
)

// Unit of every measurement.
const Unit = "cm"

// Field is a measurement taken on the customer.
type Field struct {
	Key   string
	Label string
}

// Fields lists the measurements offered on the forms, in display order.
var Fields = []Field{
	{Key: "tour_cou", Label: "Tour de cou"},
	{Key: "epaule", Label: "Largeur d'épaules"},
	{Key: "tour_poitrine", Label: "Tour de poitrine"},
	{Key: "tour_taille", Label: "Tour de taille"},
	{Key: "tour_hanches", Label: "Tour de hanches"},
	{Key: "longueur_manche", Label: "Longueur de manche"},
	{Key: "tour_bras", Label: "Tour de bras"},
	{Key: "tour_poignet", Label: "Tour de poignet"},
	{Key: "longueur_buste", Label: "Longueur de buste"},
	{Key: "longueur_totale", Label: "Longueur totale"},
	{Key: "entrejambe", Label: "Entrejambe"},
	{Key: "tour_cuisse", Label: "Tour de cuisse"},
	{Key: "longueur_pantalon", Label: "Longueur de pantalon"},
}

// GarmentTypes are the garment types a measurement set can be taken for.
var GarmentTypes = []string{"boubou", "chemise", "pantalon", "robe", "jupe", "veste", "costume", "tunique", "autre"}

// ParseValues reads the measurement inputs named prefix+key. Empty inputs are
// skipped, errors are reported under the same input name.
func ParseValues(get func(name string) string, prefix string) (map[string]string, map[string]decimal.Decimal, shared.FieldErrors) {
	raw := make(map[string]string, len(Fields))
	values := make(map[string]decimal.Decimal, len(Fields))
	fe := shared.FieldErrors{}
	for _, f := range Fields {
		name := prefix + f.Key
		in := strings.TrimSpace(get(name))
		if in == "" {
			continue
		}
		raw[f.Key] = in
		v, err := shared.ParseAmount(in)
		switch {
		case err != nil:
			fe.Add(name, "Mesure invalide.")
		case !v.IsPositive():
			fe.Add(name, "La mesure doit être positive.")
		case v.GreaterThan(decimal.NewFromInt(300)):
			fe.Add(name, "Mesure trop grande (300 cm maximum).")
		default:
			values[f.Key] = v.Round(1)
		}
	}
	return raw, values, fe
}
