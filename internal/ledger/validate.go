package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rule identifies which movement rule a row broke.
type Rule string

const (
	RuleKnownAccount Rule = "known-account"
	RuleNonZero      Rule = "non-zero"
	RuleTwoDecimals  Rule = "two-decimals"
	RuleDated        Rule = "dated"
	RuleChronology   Rule = "chronology"
)

// ValidationError describes a single broken rule.
type ValidationError struct {
	Rule        Rule
	Row         int // 1-based, header excluded
	Username    string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [row %d, %s]: %s", e.Rule, e.Row, e.Username, e.Description)
}

// AccountChecker tests whether a username exists in the store.
type AccountChecker interface {
	Exists(username string) bool
}

// Validate checks loaded movements before they are appended to accounts.
// Each account's movements must be in non-decreasing date order, since
// movement history is append-only.
func Validate(rows []Row, accounts AccountChecker) []ValidationError {
	var errs []ValidationError
	hundred := decimal.NewFromInt(100)
	last := make(map[string]Row)

	for i, row := range rows {
		n := i + 1

		if !accounts.Exists(row.Username) {
			errs = append(errs, ValidationError{
				Rule:        RuleKnownAccount,
				Row:         n,
				Username:    row.Username,
				Description: fmt.Sprintf("unknown account %q", row.Username),
			})
		}

		if row.Amount.IsZero() {
			errs = append(errs, ValidationError{
				Rule:        RuleNonZero,
				Row:         n,
				Username:    row.Username,
				Description: "movement amount is zero",
			})
		}

		scaled := row.Amount.Mul(hundred)
		if !scaled.Equal(scaled.Floor()) {
			errs = append(errs, ValidationError{
				Rule:        RuleTwoDecimals,
				Row:         n,
				Username:    row.Username,
				Description: fmt.Sprintf("amount %s has more than 2 decimal places", row.Amount),
			})
		}

		if row.Date.IsZero() {
			errs = append(errs, ValidationError{
				Rule:        RuleDated,
				Row:         n,
				Username:    row.Username,
				Description: "movement has no date",
			})
			continue
		}

		if prev, ok := last[row.Username]; ok && row.Date.Before(prev.Date) {
			errs = append(errs, ValidationError{
				Rule:     RuleChronology,
				Row:      n,
				Username: row.Username,
				Description: fmt.Sprintf("date %s is before previous movement %s",
					row.Date.Format("2006-01-02"), prev.Date.Format("2006-01-02")),
			})
		}
		last[row.Username] = row
	}

	return errs
}

// Errors converts validation errors to plain errors, e.g. for errors.Join.
func Errors(verrs []ValidationError) []error {
	out := make([]error, len(verrs))
	for i, ve := range verrs {
		out[i] = ve
	}
	return out
}
