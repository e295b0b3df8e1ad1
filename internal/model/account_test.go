package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func accountWith(amounts ...string) *Account {
	a := &Account{Owner: "Jonas Schmedtmann", InterestRate: dec("1.2")}
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, s := range amounts {
		a.AddMovement(dec(s), at.AddDate(0, 0, i))
	}
	return a
}

func TestBalance(t *testing.T) {
	a := accountWith("200", "450", "-400")
	assert.True(t, a.Balance().Equal(dec("250")), "got %s", a.Balance())

	a.AddMovement(dec("-50"), time.Now())
	assert.True(t, a.Balance().Equal(dec("200")))

	empty := &Account{}
	assert.True(t, empty.Balance().IsZero())
}

func TestAmountsAndDatesStayAligned(t *testing.T) {
	a := accountWith("200", "-30", "70")
	amounts := a.Amounts()
	dates := a.Dates()
	require.Len(t, amounts, 3)
	require.Len(t, dates, 3)
	for i := range a.Movements {
		assert.True(t, a.Movements[i].Amount.Equal(amounts[i]))
		assert.Equal(t, a.Movements[i].Date, dates[i])
	}
}

func TestHasMovementAtLeast(t *testing.T) {
	a := accountWith("200", "-400", "50")
	assert.True(t, a.HasMovementAtLeast(dec("200")))
	assert.True(t, a.HasMovementAtLeast(dec("10")))
	assert.False(t, a.HasMovementAtLeast(dec("200.01")))
}

func TestCheckPIN(t *testing.T) {
	hash, err := HashPIN(1111, bcrypt.MinCost)
	require.NoError(t, err)

	a := &Account{PINHash: hash}
	assert.True(t, a.CheckPIN(1111))
	assert.False(t, a.CheckPIN(2222))
	assert.False(t, (&Account{}).CheckPIN(1111), "account without a hash never matches")
}

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Jonas", (&Account{Owner: "Jonas Schmedtmann"}).FirstName())
	assert.Equal(t, "Cher", (&Account{Owner: "Cher"}).FirstName())
}

func TestClone(t *testing.T) {
	a := accountWith("100")
	cp := a.Clone()
	cp.AddMovement(dec("5"), time.Now())
	assert.Len(t, a.Movements, 1, "clone must not share the movement slice")
	assert.Len(t, cp.Movements, 2)
}

func TestSummarize(t *testing.T) {
	a := accountWith("200", "450", "-400", "3000", "-650", "-130", "70", "1300")
	s := Summarize(a)

	assert.Equal(t, "5020", s.Income.String())
	assert.Equal(t, "1180", s.Out.String())
	// 70 * 1.2% = 0.84 is below 1 and excluded.
	assert.Equal(t, "59.4", s.Interest.String())
}

func TestSortedByAmount(t *testing.T) {
	a := accountWith("200", "-400", "50")
	sorted := SortedByAmount(a.Movements)

	assert.Equal(t, "-400", sorted[0].Amount.String())
	assert.Equal(t, "50", sorted[1].Amount.String())
	assert.Equal(t, "200", sorted[2].Amount.String())
	assert.Equal(t, "200", a.Movements[0].Amount.String(), "original order untouched")
}

func TestMovementIsDeposit(t *testing.T) {
	assert.True(t, Movement{Amount: dec("1")}.IsDeposit())
	assert.False(t, Movement{Amount: dec("-1")}.IsDeposit())
}
