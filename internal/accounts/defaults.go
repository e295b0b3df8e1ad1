package accounts

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankist/internal/id"
	"github.com/cleared-dev/bankist/internal/model"
)

// Seed describes one demo account before its PIN is hashed.
type Seed struct {
	Owner        string
	PIN          int
	InterestRate string
	Currency     string
	Locale       string
	Movements    []int64
	Dates        []string // RFC3339, index-aligned with Movements
}

// DefaultSeeds returns the four demo accounts.
func DefaultSeeds() []Seed {
	return []Seed{
		{
			Owner:        "Jonas Schmedtmann",
			PIN:          1111,
			InterestRate: "1.2",
			Currency:     "EUR",
			Locale:       "pt-PT",
			Movements:    []int64{200, 450, -400, 3000, -650, -130, 70, 1300},
			Dates: []string{
				"2019-11-18T21:31:17Z", "2019-12-23T07:42:02Z", "2020-01-28T09:15:04Z", "2020-04-01T10:17:24Z",
				"2020-05-08T14:11:59Z", "2020-05-27T17:01:17Z", "2020-07-11T23:36:17Z", "2020-07-12T10:51:36Z",
			},
		},
		{
			Owner:        "Jessica Davis",
			PIN:          2222,
			InterestRate: "1.5",
			Currency:     "USD",
			Locale:       "en-US",
			Movements:    []int64{5000, 3400, -150, -790, -3210, -1000, 8500, -30},
			Dates: []string{
				"2019-11-01T13:15:33Z", "2019-11-30T09:48:16Z", "2019-12-25T06:04:23Z", "2020-01-25T14:18:46Z",
				"2020-02-05T16:33:06Z", "2020-04-10T14:43:26Z", "2020-06-25T18:49:59Z", "2020-07-26T12:01:20Z",
			},
		},
		{
			Owner:        "Steven Thomas Williams",
			PIN:          3333,
			InterestRate: "0.7",
			Currency:     "GBP",
			Locale:       "en-GB",
			Movements:    []int64{200, -200, 340, -300, -20, 50, 400, -460},
			Dates: []string{
				"2019-10-02T08:20:11Z", "2019-11-14T12:05:40Z", "2019-12-19T16:44:03Z", "2020-02-03T09:30:52Z",
				"2020-03-21T11:12:27Z", "2020-05-02T19:58:14Z", "2020-06-16T07:25:33Z", "2020-07-20T15:40:08Z",
			},
		},
		{
			Owner:        "Sarah Smith",
			PIN:          4444,
			InterestRate: "1",
			Currency:     "EUR",
			Locale:       "de-DE",
			Movements:    []int64{430, 1000, 700, 50, 90},
			Dates: []string{
				"2020-01-09T10:00:00Z", "2020-02-14T13:22:45Z", "2020-04-30T18:03:19Z", "2020-06-08T08:47:51Z",
				"2020-07-15T21:14:36Z",
			},
		},
	}
}

// Build hashes the seed PIN at cost and returns the account.
func (s Seed) Build(cost int) (*model.Account, error) {
	if len(s.Movements) != len(s.Dates) {
		return nil, fmt.Errorf("seed %q: %d movements but %d dates", s.Owner, len(s.Movements), len(s.Dates))
	}

	rate, err := decimal.NewFromString(s.InterestRate)
	if err != nil {
		return nil, fmt.Errorf("seed %q: parsing interest rate: %w", s.Owner, err)
	}

	hash, err := model.HashPIN(s.PIN, cost)
	if err != nil {
		return nil, fmt.Errorf("seed %q: hashing pin: %w", s.Owner, err)
	}

	acct := &model.Account{
		Owner:        s.Owner,
		Username:     id.Username(s.Owner),
		PINHash:      hash,
		InterestRate: rate,
		Currency:     s.Currency,
		Locale:       s.Locale,
	}
	for i, amt := range s.Movements {
		at, err := time.Parse(time.RFC3339, s.Dates[i])
		if err != nil {
			return nil, fmt.Errorf("seed %q: parsing date %q: %w", s.Owner, s.Dates[i], err)
		}
		acct.AddMovement(decimal.NewFromInt(amt), at)
	}
	return acct, nil
}

// DefaultStore builds a Store from the demo seeds.
func DefaultStore(cost int) (*Store, error) {
	seeds := DefaultSeeds()
	accts := make([]*model.Account, 0, len(seeds))
	for _, s := range seeds {
		a, err := s.Build(cost)
		if err != nil {
			return nil, err
		}
		accts = append(accts, a)
	}
	return NewStore(accts)
}
