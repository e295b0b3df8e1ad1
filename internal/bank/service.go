package bank

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankist/internal/accounts"
	"github.com/cleared-dev/bankist/internal/activitylog"
	"github.com/cleared-dev/bankist/internal/model"
	"github.com/cleared-dev/bankist/internal/session"
)

// Defaults for Options fields left zero.
const (
	DefaultLoanDelay = 2500 * time.Millisecond
	DefaultLoanRatio = "0.1"
)

// Renderer displays an account after login and after every successful
// mutation. The account passed in is a copy.
type Renderer interface {
	Render(acc *model.Account, sortDescending bool)
}

// Options configures a Service.
type Options struct {
	LoanDelay time.Duration
	LoanRatio decimal.Decimal // minimum movement as a fraction of the loan
	Renderer  Renderer
	Logger    *slog.Logger
	Now       func() time.Time
}

// Service runs the account actions against a store and a session manager.
// All actions are serialized, so a transfer touches both accounts without
// interleaving with a loan grant or an expiry.
type Service struct {
	store    *accounts.Store
	sessions *session.Manager
	opts     Options
	log      *slog.Logger

	mu       sync.Mutex
	activity []activitylog.Entry
	loans    sync.WaitGroup
}

// NewService creates a Service.
func NewService(store *accounts.Store, sessions *session.Manager, opts Options) *Service {
	if opts.LoanDelay == 0 {
		opts.LoanDelay = DefaultLoanDelay
	}
	if opts.LoanRatio.IsZero() {
		opts.LoanRatio = decimal.RequireFromString(DefaultLoanRatio)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, sessions: sessions, opts: opts, log: log}
}

// Login starts a session when username exists and pinText matches its PIN.
func (s *Service) Login(username, pinText string) (session.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, found := s.store.Get(username)
	pin, numeric := parsePIN(pinText)
	if !found || !numeric || !acc.CheckPIN(pin) {
		s.recordLocked("", username, activitylog.ActionLoginFailed, decimal.Zero, "")
		s.log.Warn("login rejected", "username", username)
		return session.Info{}, ErrInvalidCredentials
	}

	info := s.sessions.Login(acc)
	s.recordLocked(info.ID, acc.Username, activitylog.ActionLogin, decimal.Zero, "")
	s.renderLocked()
	return info, nil
}

// Transfer moves amountText from the logged-in account to the account named to.
func (s *Service) Transfer(to, amountText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.sessions.Info()
	if !ok {
		return ErrNotLoggedIn
	}
	sender := info.Account

	receiver, amount, err := s.checkTransferLocked(sender, to, amountText)
	if err != nil {
		s.recordLocked(info.ID, sender.Username, activitylog.ActionTransferFail, decimal.Zero, fmt.Sprintf("to %s: %v", to, err))
		return err
	}

	now := s.opts.Now()
	sender.AddMovement(amount.Neg(), now)
	receiver.AddMovement(amount, now)

	s.recordLocked(info.ID, sender.Username, activitylog.ActionTransferOut, amount, "to "+receiver.Username)
	s.recordLocked(info.ID, receiver.Username, activitylog.ActionTransferIn, amount, "from "+sender.Username)
	s.log.Info("transfer", "from", sender.Username, "to", receiver.Username, "amount", amount.String(), "session_id", info.ID)

	_ = s.sessions.ResetTimer()
	s.renderLocked()
	return nil
}

func (s *Service) checkTransferLocked(sender *model.Account, to, amountText string) (*model.Account, decimal.Decimal, error) {
	amount, err := ParseAmount(amountText)
	if err != nil {
		return nil, decimal.Zero, err
	}
	// Movements are stored in cents.
	if !amount.Equal(amount.Round(2)) {
		return nil, decimal.Zero, ErrInvalidAmount
	}
	receiver, ok := s.store.Get(to)
	if !ok {
		return nil, decimal.Zero, ErrUnknownRecipient
	}
	if receiver.Username == sender.Username {
		return nil, decimal.Zero, ErrSelfTransfer
	}
	if sender.Balance().LessThan(amount) {
		return nil, decimal.Zero, ErrInsufficientFunds
	}
	return receiver, amount, nil
}

// RequestLoan validates a loan for the logged-in account and schedules the
// grant after the loan delay. It returns the floored amount that will be
// posted. The grant is dropped if the session ends before the delay elapses.
func (s *Service) RequestLoan(amountText string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.sessions.Info()
	if !ok {
		return decimal.Zero, ErrNotLoggedIn
	}
	acc := info.Account

	amount, err := ParseAmount(amountText)
	if err == nil {
		amount = amount.Floor()
		if !amount.IsPositive() {
			err = ErrInvalidAmount
		}
	}
	if err == nil && !acc.HasMovementAtLeast(amount.Mul(s.opts.LoanRatio)) {
		err = ErrLoanNotQualified
	}
	if err != nil {
		s.recordLocked(info.ID, acc.Username, activitylog.ActionLoanRejected, decimal.Zero, err.Error())
		return decimal.Zero, err
	}

	ctx := s.sessions.Context()
	s.recordLocked(info.ID, acc.Username, activitylog.ActionLoanRequested, amount, "")
	s.log.Info("loan scheduled", "username", acc.Username, "amount", amount.String(), "delay", s.opts.LoanDelay, "session_id", info.ID)

	s.loans.Add(1)
	go func() {
		defer s.loans.Done()

		timer := time.NewTimer(s.opts.LoanDelay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			s.dropLoan(info.ID, acc.Username, amount)
		case <-timer.C:
			s.grantLoan(info.ID, acc, amount)
		}
	}()

	return amount, nil
}

func (s *Service) grantLoan(sessionID string, acc *model.Account, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The session may have ended between the timer firing and taking the lock.
	if !s.sessions.IsActive(sessionID) {
		s.dropLoanLocked(sessionID, acc.Username, amount)
		return
	}

	acc.AddMovement(amount, s.opts.Now())
	s.recordLocked(sessionID, acc.Username, activitylog.ActionLoanGranted, amount, "")
	s.log.Info("loan granted", "username", acc.Username, "amount", amount.String(), "session_id", sessionID)

	_ = s.sessions.ResetTimer()
	s.renderLocked()
}

func (s *Service) dropLoan(sessionID, username string, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLoanLocked(sessionID, username, amount)
}

func (s *Service) dropLoanLocked(sessionID, username string, amount decimal.Decimal) {
	s.recordLocked(sessionID, username, activitylog.ActionLoanDropped, amount, "session ended before grant")
	s.log.Warn("loan dropped", "username", username, "amount", amount.String(), "session_id", sessionID)
}

// Close removes the logged-in account when username and pinText match it,
// then ends the session.
func (s *Service) Close(username, pinText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.sessions.Info()
	if !ok {
		return ErrNotLoggedIn
	}
	acc := info.Account

	pin, numeric := parsePIN(pinText)
	if username != acc.Username || !numeric || !acc.CheckPIN(pin) {
		s.recordLocked(info.ID, acc.Username, activitylog.ActionCloseFailed, decimal.Zero, "")
		return ErrInvalidCloseCredentials
	}

	s.store.Remove(acc.Username)
	s.sessions.Logout()
	s.recordLocked(info.ID, acc.Username, activitylog.ActionClose, decimal.Zero, "")
	s.log.Info("account closed", "username", acc.Username, "session_id", info.ID)
	return nil
}

// Logout ends the current session.
func (s *Service) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.sessions.Logout()
	if !ok {
		return ErrNotLoggedIn
	}
	s.recordLocked(info.ID, info.Account.Username, activitylog.ActionLogout, decimal.Zero, "")
	return nil
}

// ToggleSort flips the movement display order and re-renders.
func (s *Service) ToggleSort() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	desc, err := s.sessions.ToggleSort()
	if err != nil {
		return false, err
	}
	s.renderLocked()
	return desc, nil
}

// Render redraws the logged-in account.
func (s *Service) Render() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessions.State() != session.LoggedIn {
		return ErrNotLoggedIn
	}
	s.renderLocked()
	return nil
}

// Summary returns the summary figures of the logged-in account.
func (s *Service) Summary() (model.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.sessions.Current()
	if acc == nil {
		return model.Summary{}, ErrNotLoggedIn
	}
	return model.Summarize(acc), nil
}

// SessionExpired records an expiry reported by the session manager. Wire it
// to session.Options.OnExpire.
func (s *Service) SessionExpired(info session.Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordLocked(info.ID, info.Account.Username, activitylog.ActionExpired, decimal.Zero, "")
}

// Wait blocks until every scheduled loan has been granted or dropped.
func (s *Service) Wait() {
	s.loans.Wait()
}

// Activity returns the actions recorded so far.
func (s *Service) Activity() []activitylog.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]activitylog.Entry(nil), s.activity...)
}

func (s *Service) recordLocked(sessionID, username string, action activitylog.Action, amount decimal.Decimal, details string) {
	s.activity = append(s.activity, activitylog.Entry{
		Timestamp: s.opts.Now(),
		SessionID: sessionID,
		Username:  username,
		Action:    action,
		Amount:    amount,
		Details:   details,
	})
}

func (s *Service) renderLocked() {
	if s.opts.Renderer == nil {
		return
	}
	info, ok := s.sessions.Info()
	if !ok {
		return
	}
	s.opts.Renderer.Render(info.Account.Clone(), info.SortDescending)
}
