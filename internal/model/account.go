package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Movement is a single signed entry on an account: positive = deposit,
// negative = withdrawal.
type Movement struct {
	Amount decimal.Decimal
	Date   time.Time
}

// IsDeposit reports whether the movement adds money to the account.
func (m Movement) IsDeposit() bool {
	return m.Amount.IsPositive()
}

// Account is a seeded bank account and its movement history.
type Account struct {
	Owner        string
	Username     string
	PINHash      []byte
	Movements    []Movement // append-only during a session
	InterestRate decimal.Decimal
	Currency     string // ISO 4217, e.g. "EUR"
	Locale       string // BCP 47, e.g. "pt-PT"
}

// HashPIN returns the bcrypt hash of a numeric PIN.
func HashPIN(pin int, cost int) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(strconv.Itoa(pin)), cost)
}

// CheckPIN reports whether pin matches the stored hash.
func (a *Account) CheckPIN(pin int) bool {
	if len(a.PINHash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.PINHash, []byte(strconv.Itoa(pin))) == nil
}

// AddMovement appends a movement dated at.
func (a *Account) AddMovement(amount decimal.Decimal, at time.Time) {
	a.Movements = append(a.Movements, Movement{Amount: amount, Date: at})
}

// Amounts returns the movement amounts in posting order.
func (a *Account) Amounts() []decimal.Decimal {
	out := make([]decimal.Decimal, len(a.Movements))
	for i, m := range a.Movements {
		out[i] = m.Amount
	}
	return out
}

// Dates returns the movement timestamps, index-aligned with Amounts.
func (a *Account) Dates() []time.Time {
	out := make([]time.Time, len(a.Movements))
	for i, m := range a.Movements {
		out[i] = m.Date
	}
	return out
}

// Balance is the sum of all movements.
func (a *Account) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, m := range a.Movements {
		total = total.Add(m.Amount)
	}
	return total
}

// HasMovementAtLeast reports whether any movement is >= threshold.
func (a *Account) HasMovementAtLeast(threshold decimal.Decimal) bool {
	for _, m := range a.Movements {
		if m.Amount.GreaterThanOrEqual(threshold) {
			return true
		}
	}
	return false
}

// FirstName returns the first word of the owner's name.
func (a *Account) FirstName() string {
	for i, r := range a.Owner {
		if r == ' ' {
			return a.Owner[:i]
		}
	}
	return a.Owner
}

// Clone returns a deep copy safe to hand to callers outside the store lock.
func (a *Account) Clone() *Account {
	cp := *a
	cp.PINHash = append([]byte(nil), a.PINHash...)
	cp.Movements = append([]Movement(nil), a.Movements...)
	return &cp
}
