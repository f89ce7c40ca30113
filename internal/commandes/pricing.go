package commandes

import "github.com/shopspring/decimal"

// Summary is the pricing shown before submitting an order. The backend computes
// the authoritative amounts.
type Summary struct {
	Subtotal decimal.Decimal
	Remise   decimal.Decimal
	Total    decimal.Decimal
	Acompte  decimal.Decimal
	Reste    decimal.Decimal
}

// Price computes the summary of lines. The discount is clamped to
// [0, subtotal] and the deposit to [0, total]; amounts are rounded to 2 places.
func Price(lines []DraftLine, remise, acompte decimal.Decimal) Summary {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	subtotal = subtotal.Round(2)
	remise = clamp(remise.Round(2), decimal.Zero, subtotal)
	total := subtotal.Sub(remise)
	acompte = clamp(acompte.Round(2), decimal.Zero, total)
	return Summary{
		Subtotal: subtotal,
		Remise:   remise,
		Total:    total,
		Acompte:  acompte,
		Reste:    total.Sub(acompte),
	}
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
