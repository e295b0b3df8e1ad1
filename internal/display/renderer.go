package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cleared-dev/bankist/internal/model"
)

// Text renders an account as plain text. It satisfies bank.Renderer.
type Text struct {
	w         io.Writer
	now       func() time.Time
	remaining func() int
}

// Option customizes a Text renderer.
type Option func(*Text)

// WithClock sets the time source used for the header and relative dates.
func WithClock(now func() time.Time) Option {
	return func(t *Text) { t.now = now }
}

// WithCountdown shows the logout countdown under the summary.
func WithCountdown(remaining func() int) Option {
	return func(t *Text) { t.remaining = remaining }
}

// NewText returns a renderer writing to w.
func NewText(w io.Writer, opts ...Option) *Text {
	t := &Text{w: w, now: time.Now}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Render prints the welcome line, movements (newest first), balance and summary.
func (t *Text) Render(acc *model.Account, sortDescending bool) {
	now := t.now()
	var b strings.Builder

	fmt.Fprintf(&b, "Welcome back, %s\n", acc.FirstName())
	fmt.Fprintf(&b, "As of %s\n\n", now.Format(DateLayout(acc.Locale)+", 15:04"))

	movs := acc.Movements
	if sortDescending {
		movs = model.SortedByAmount(movs)
	}

	// Newest (or largest, when sorted) first, numbered in posting order.
	for i := len(movs) - 1; i >= 0; i-- {
		m := movs[i]
		kind := "withdrawal"
		if m.IsDeposit() {
			kind = "deposit"
		}
		fmt.Fprintf(&b, "  %3d %-10s  %-12s  %16s\n",
			i+1, kind, MovementDate(m.Date, now, acc.Locale), Currency(m.Amount, acc.Currency, acc.Locale))
	}

	s := model.Summarize(acc)
	fmt.Fprintf(&b, "\nBalance   %s\n", Currency(acc.Balance(), acc.Currency, acc.Locale))
	fmt.Fprintf(&b, "In %s   Out %s   Interest %s\n",
		Currency(s.Income, acc.Currency, acc.Locale),
		Currency(s.Out, acc.Currency, acc.Locale),
		Currency(s.Interest, acc.Currency, acc.Locale))

	if t.remaining != nil {
		fmt.Fprintf(&b, "You will be logged out in %s\n", Timer(t.remaining()))
	}

	_, _ = io.WriteString(t.w, b.String())
}
