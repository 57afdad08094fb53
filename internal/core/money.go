// Package core holds the finance domain: users, transactions, budgets,
// amount parsing and the dashboard summary.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Bounds on accepted amounts. Values must stay below 10^maxIntegerDigits and
// carry at most maxFractionDigits decimals, so every accepted amount has a
// finite float64 form that is cheap to compute.
const (
	maxAmountInput    = 64
	maxIntegerDigits  = 15
	maxFractionDigits = 20
)

// ParseAmount converts user input into a decimal.
//
// Both dot (12.34) and comma (12,34) separators are accepted. The sign is
// preserved; callers decide whether negative or zero values are allowed.
// Amounts of 10^15 or more, or with more than 20 decimals, are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,5")  -> 12.5, nil
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxAmountInput {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}
	// Check magnitude from exponent and digit count; rescaling a huge
	// exponent would allocate 10^exp.
	coef := d.Coefficient()
	exp := int64(d.Exponent())
	digits := int64(len(coef.Abs(coef).String()))
	if exp < -maxFractionDigits || digits+exp > maxIntegerDigits {
		return decimal.Zero, ErrInvalidAmount
	}
	if f := d.InexactFloat64(); math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// SumAmounts adds float amounts without accumulating binary rounding error.
func SumAmounts(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.InexactFloat64()
}

// Percent returns part/whole*100 rounded to two places, or 0 when whole is 0.
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	p := decimal.NewFromFloat(part).
		Div(decimal.NewFromFloat(whole)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return p.InexactFloat64()
}
