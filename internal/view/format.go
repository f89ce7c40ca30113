package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
)

var currencySymbols = map[string]string{
	"XOF": "FCFA",
	"XAF": "FCFA",
	"EUR": "€",
	"MAD": "DH",
}

// Formatter renders numbers, amounts and dates the French way.
type Formatter struct {
	printer *message.Printer
	symbol  string
	scale   int
	layout  string
}

// NewFormatter builds a Formatter for an ISO 4217 currency code.
func NewFormatter(code string) (*Formatter, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("view: unknown currency %q: %w", code, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	symbol, ok := currencySymbols[unit.String()]
	if !ok {
		symbol = unit.String()
	}
	return &Formatter{
		printer: message.NewPrinter(language.French),
		symbol:  symbol,
		scale:   scale,
		layout:  fmt.Sprintf("%%.%df", scale),
	}, nil
}

// Money formats an amount with grouping and the currency symbol, e.g. "12 500 FCFA".
func (f *Formatter) Money(v any) string {
	d := toDecimal(v).Round(int32(f.scale))
	return f.printer.Sprintf(f.layout, d.InexactFloat64()) + " " + f.symbol
}

// Number formats an integer with grouping.
func (f *Formatter) Number(n int) string {
	return f.printer.Sprintf("%d", n)
}

// Symbol is the currency symbol shown next to amount inputs.
func (f *Formatter) Symbol() string {
	return f.symbol
}

var months = [...]string{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."}

// Date formats a date as "14 mars 2026".
func Date(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return "—"
	}
	return fmt.Sprintf("%d %s %d", t.Day(), months[t.Month()-1], t.Year())
}

// DateTime formats a timestamp as "14/03/2026 10:20".
func DateTime(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return "—"
	}
	return t.Format("02/01/2006 15:04")
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case api.Date:
		return t.Time
	case *api.Date:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

func toDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case *decimal.Decimal:
		if n != nil {
			return *n
		}
	case decimal.NullDecimal:
		if n.Valid {
			return n.Decimal
		}
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case float64:
		return decimal.NewFromFloat(n)
	case string:
		if d, err := decimal.NewFromString(n); err == nil {
			return d
		}
	}
	return decimal.Zero
}
