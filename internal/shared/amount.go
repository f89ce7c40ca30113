package shared

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeAmount turns user input such as "12 500,50" into "12500.50".
func NormalizeAmount(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "_", "").Replace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	s = strings.ReplaceAll(s, ",", "")
	return s
}

// ParseAmount parses a user amount. Empty input is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = NormalizeAmount(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
