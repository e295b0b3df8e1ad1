package accounts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankist/internal/model"
)

// Header is the CSV header for accounts.csv.
var Header = []string{"username", "owner", "pin_hash", "interest_rate", "currency", "locale"}

const (
	numFields   = 6
	colUsername = 0
	colOwner    = 1
	colPINHash  = 2
	colRate     = 3
	colCurrency = 4
	colLocale   = 5
)

// ReadAccounts reads accounts.csv. Movements are loaded separately.
func ReadAccounts(r io.Reader) ([]*model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []*model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accounts []*model.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct *model.Account) []string {
	row := make([]string, numFields)
	row[colUsername] = acct.Username
	row[colOwner] = acct.Owner
	row[colPINHash] = string(acct.PINHash)
	row[colRate] = acct.InterestRate.String()
	row[colCurrency] = acct.Currency
	row[colLocale] = acct.Locale
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (*model.Account, error) {
	if len(record) != numFields {
		return nil, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	if record[colUsername] == "" {
		return nil, fmt.Errorf("empty username")
	}

	rate, err := decimal.NewFromString(record[colRate])
	if err != nil {
		return nil, fmt.Errorf("parsing interest_rate %q: %w", record[colRate], err)
	}

	return &model.Account{
		Username:     record[colUsername],
		Owner:        record[colOwner],
		PINHash:      []byte(record[colPINHash]),
		InterestRate: rate,
		Currency:     record[colCurrency],
		Locale:       record[colLocale],
	}, nil
}
