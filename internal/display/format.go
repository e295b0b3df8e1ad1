// Package display turns account state into text for the terminal.
package display

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency formats amount in the currency's symbol using the locale's
// separators, e.g. "$11,720.00" for en-US or "2.270,00 €" for de-DE.
func Currency(amount decimal.Decimal, code, locale string) string {
	tag := language.Make(locale)
	p := message.NewPrinter(tag)

	f, _ := amount.Abs().Round(2).Float64()
	num := p.Sprint(number.Decimal(f, number.Scale(2)))

	sign := ""
	if amount.Round(2).IsNegative() {
		sign = "-"
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return sign + num + " " + code
	}
	sym := p.Sprint(currency.NarrowSymbol(unit))

	if base, _ := tag.Base(); base.String() == "en" {
		return sign + sym + num
	}
	return sign + num + " " + sym
}

// DateLayout returns the numeric date layout used for locale.
func DateLayout(locale string) string {
	region, _ := language.Make(locale).Region()
	if region.String() == "US" {
		return "01/02/2006"
	}
	return "02/01/2006"
}

// DaysBetween returns the whole number of days between a and b, ignoring order.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(math.Abs(b.Sub(a).Hours()) / 24))
}

// MovementDate describes when a movement happened relative to now: "Today",
// "Yesterday", "N days ago" within a week, else the locale date.
func MovementDate(date, now time.Time, locale string) string {
	days := DaysBetween(date, now)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days <= 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return date.Format(DateLayout(locale))
	}
}

// Timer formats a countdown as MM:SS.
func Timer(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
