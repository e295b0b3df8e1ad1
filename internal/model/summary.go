package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Summary holds the figures shown under the movement list.
type Summary struct {
	Income   decimal.Decimal
	Out      decimal.Decimal // absolute value of all withdrawals
	Interest decimal.Decimal
}

var (
	hundred     = decimal.NewFromInt(100)
	minInterest = decimal.NewFromInt(1)
)

// Summarize computes income, outflow and interest for an account.
// Interest is paid per deposit at the account rate; deposits earning less
// than 1 unit of interest are skipped.
func Summarize(a *Account) Summary {
	s := Summary{Income: decimal.Zero, Out: decimal.Zero, Interest: decimal.Zero}
	for _, m := range a.Movements {
		switch {
		case m.Amount.IsPositive():
			s.Income = s.Income.Add(m.Amount)
			interest := m.Amount.Mul(a.InterestRate).Div(hundred)
			if interest.GreaterThanOrEqual(minInterest) {
				s.Interest = s.Interest.Add(interest)
			}
		case m.Amount.IsNegative():
			s.Out = s.Out.Add(m.Amount.Abs())
		}
	}
	return s
}

// SortedByAmount returns a copy of the movements ordered by ascending amount.
// The account itself is left untouched.
func SortedByAmount(movements []Movement) []Movement {
	out := append([]Movement(nil), movements...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.LessThan(out[j].Amount)
	})
	return out
}
