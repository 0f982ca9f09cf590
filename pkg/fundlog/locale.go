package fundlog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses a number written with a thousands dot and a decimal
// comma, e.g. "1.234,56".
func ParseDecimal(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedNumber, text)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedNumber, text)
	}
	return d, nil
}

// ParsePercent strips a leading or trailing percent sign and parses the rest
// with ParseDecimal, e.g. "%-1,23" is -1.23.
func ParsePercent(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "%")
	s = strings.TrimSuffix(s, "%")
	d, err := ParseDecimal(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedNumber, text)
	}
	return d, nil
}
