package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cleared-dev/bankist/internal/ledger"
	"github.com/cleared-dev/bankist/internal/model"
)

const (
	accountsFile  = "accounts.csv"
	movementsFile = "movements.csv"
)

// ErrDuplicateUsername is returned when two accounts derive the same username.
var ErrDuplicateUsername = errors.New("duplicate username")

// Store is the ordered, in-memory collection of accounts, unique by username.
// Account values are shared with callers; mutating them is the caller's job
// and must be serialized by the caller.
type Store struct {
	mu         sync.RWMutex
	accounts   []*model.Account
	byUsername map[string]*model.Account
}

// NewStore creates a Store preserving the order of accounts.
func NewStore(accounts []*model.Account) (*Store, error) {
	s := &Store{byUsername: make(map[string]*model.Account, len(accounts))}
	for _, a := range accounts {
		if _, ok := s.byUsername[a.Username]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateUsername, a.Username)
		}
		s.byUsername[a.Username] = a
		s.accounts = append(s.accounts, a)
	}
	return s, nil
}

// Load reads accounts.csv and movements.csv from dir and returns a Store.
func Load(dir string) (*Store, error) {
	f, err := os.Open(filepath.Join(dir, accountsFile))
	if err != nil {
		return nil, fmt.Errorf("opening accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}

	mf, err := os.Open(filepath.Join(dir, movementsFile))
	if err != nil {
		return nil, fmt.Errorf("opening movements: %w", err)
	}
	defer mf.Close()

	rows, err := ledger.ReadRows(mf)
	if err != nil {
		return nil, fmt.Errorf("reading movements: %w", err)
	}

	store, err := NewStore(accts)
	if err != nil {
		return nil, err
	}
	if verrs := ledger.Validate(rows, store); len(verrs) > 0 {
		return nil, fmt.Errorf("validating movements: %w", errors.Join(ledger.Errors(verrs)...))
	}
	for _, r := range rows {
		a, _ := store.Get(r.Username)
		a.AddMovement(r.Amount, r.Date)
	}
	return store, nil
}

// All returns the accounts in store order.
func (s *Store) All() []*model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.Account(nil), s.accounts...)
}

// Len returns the number of accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// Get returns an account by username.
func (s *Store) Get(username string) (*model.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byUsername[username]
	return a, ok
}

// Exists reports whether a username is in the store.
func (s *Store) Exists(username string) bool {
	_, ok := s.Get(username)
	return ok
}

// Remove deletes the account with username. It reports whether one was removed.
func (s *Store) Remove(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUsername[username]; !ok {
		return false
	}
	delete(s.byUsername, username)
	for i, a := range s.accounts {
		if a.Username == username {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			break
		}
	}
	return true
}

// Save writes accounts.csv and movements.csv into dir.
func (s *Store) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	accts := s.All()

	f, err := os.Create(filepath.Join(dir, accountsFile))
	if err != nil {
		return fmt.Errorf("creating accounts file: %w", err)
	}
	defer f.Close()
	if err := WriteAccounts(f, accts); err != nil {
		return fmt.Errorf("writing accounts: %w", err)
	}

	var rows []ledger.Row
	for _, a := range accts {
		for _, m := range a.Movements {
			rows = append(rows, ledger.Row{Username: a.Username, Date: m.Date, Amount: m.Amount})
		}
	}

	mf, err := os.Create(filepath.Join(dir, movementsFile))
	if err != nil {
		return fmt.Errorf("creating movements file: %w", err)
	}
	defer mf.Close()
	if err := ledger.WriteRows(mf, rows); err != nil {
		return fmt.Errorf("writing movements: %w", err)
	}
	return nil
}
