package bank

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount coerces user text to a positive amount.
func ParseAmount(text string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// parsePIN coerces user text to a numeric PIN. ok is false for anything
// that is not an integer.
func parsePIN(text string) (pin int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	return n, true
}
