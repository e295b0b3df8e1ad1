package bank

import (
	"errors"

	"github.com/cleared-dev/bankist/internal/session"
)

// Failures returned by the account actions. None of them mutate state.
var (
	ErrInvalidCredentials      = errors.New("invalid username or PIN")
	ErrInvalidAmount           = errors.New("amount must be a number greater than 0")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrUnknownRecipient        = errors.New("unknown recipient")
	ErrSelfTransfer            = errors.New("cannot transfer to own account")
	ErrLoanNotQualified        = errors.New("loan not qualified: no movement large enough for the requested amount")
	ErrInvalidCloseCredentials = errors.New("username or PIN does not match the logged-in account")

	// ErrNotLoggedIn is shared with the session manager so callers can match either.
	ErrNotLoggedIn = session.ErrNotLoggedIn
)
