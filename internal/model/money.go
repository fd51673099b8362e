package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Money validation errors.
var (
	ErrInvalidAmount = errors.New("amount must be a positive number with exactly 2 decimal places")
	ErrAmountZero    = errors.New("amount must be greater than zero")
	ErrAmountTooHigh = errors.New("offer cannot exceed the listing price")
)

var amountPattern = regexp.MustCompile(`^\d+\.\d{2}$`)

// ParseAmount parses a user-typed currency amount. The input must have
// exactly two decimal places and be greater than zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrAmountZero
	}
	return d, nil
}

// ParseOfferAmount parses an offer amount and checks it against the
// listing price.
func ParseOfferAmount(s string, price decimal.Decimal) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.GreaterThan(price) {
		return decimal.Zero, ErrAmountTooHigh
	}
	return d, nil
}

// FormatMoney renders an amount as dollars with two decimals.
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
