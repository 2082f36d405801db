package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount converts a statement amount like "1,250.00" to a decimal,
// stripping thousands separators, currency symbols and stray whitespace.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.ReplaceAll(s, "Rs.", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "") // non-breaking space

	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %s", amount)
	}
	return amount, nil
}

// collapseWhitespace trims the string and folds embedded newlines and runs
// of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
