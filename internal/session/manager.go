// Package session tracks who is logged in and logs them out after a period
// of inactivity.
//
// A Manager is either logged out or logged in with an account and a
// countdown of remaining seconds. While logged in a ticker decrements the
// countdown once per TickInterval; reaching zero ends the session and fires
// the OnExpire hook exactly once. Every session also carries a context that
// is canceled when it ends, so work scheduled on behalf of a session (such
// as a pending loan grant) can be dropped.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cleared-dev/bankist/internal/id"
	"github.com/cleared-dev/bankist/internal/model"
)

// DefaultTimeout is the inactivity countdown in seconds.
const DefaultTimeout = 300

// ErrNotLoggedIn is returned by operations that need an active session.
var ErrNotLoggedIn = errors.New("not logged in")

// State is the coarse state of a Manager.
type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged-in"
	}
	return "logged-out"
}

// EndReason says why a session ended.
type EndReason string

const (
	ReasonExpired  EndReason = "expired"
	ReasonLogout   EndReason = "logout"
	ReasonReplaced EndReason = "replaced"
)

// Info is a snapshot of a session.
type Info struct {
	ID             string
	Account        *model.Account
	Remaining      int
	SortDescending bool
}

// Options configures a Manager.
type Options struct {
	Timeout      int           // seconds; DefaultTimeout when zero
	TickInterval time.Duration // 0 disables the automatic ticker
	OnExpire     func(Info)    // called outside the lock when the countdown hits zero
	Logger       *slog.Logger
}

// Manager is the session state machine. It is safe for concurrent use.
type Manager struct {
	opts Options
	log  *slog.Logger

	mu         sync.Mutex
	account    *model.Account
	sessionID  string
	remaining  int
	sortDesc   bool
	gen        uint64
	stopTicker context.CancelFunc
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewManager returns a logged-out Manager.
func NewManager(opts Options) *Manager {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Manager{opts: opts, log: log}
}

// Login starts a session for acc, ending any session already in progress.
func (m *Manager) Login(acc *model.Account) Info {
	m.mu.Lock()
	if m.account != nil {
		m.endLocked(ReasonReplaced)
	}

	m.account = acc
	m.sessionID = id.NewSessionID()
	m.remaining = m.opts.Timeout
	m.sortDesc = false
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.restartTickerLocked()
	info := m.infoLocked()
	m.mu.Unlock()

	m.log.Info("session started", "username", acc.Username, "session_id", info.ID, "timeout", m.opts.Timeout)
	return info
}

// Tick decrements the countdown by one second. At zero the session ends and
// OnExpire fires. Tick is a no-op while logged out.
func (m *Manager) Tick() {
	m.tick(0, false)
}

// tick returns false when the caller's ticker should stop.
func (m *Manager) tick(gen uint64, checkGen bool) bool {
	m.mu.Lock()
	if m.account == nil || (checkGen && gen != m.gen) {
		m.mu.Unlock()
		return false
	}

	m.remaining--
	if m.remaining > 0 {
		m.mu.Unlock()
		return true
	}

	info := m.infoLocked()
	m.endLocked(ReasonExpired)
	m.mu.Unlock()

	m.log.Info("session expired", "username", info.Account.Username, "session_id", info.ID)
	if m.opts.OnExpire != nil {
		m.opts.OnExpire(info)
	}
	return false
}

// ResetTimer restarts the countdown at the full timeout.
func (m *Manager) ResetTimer() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.account == nil {
		return ErrNotLoggedIn
	}
	m.remaining = m.opts.Timeout
	m.restartTickerLocked()
	return nil
}

// Logout ends the current session. It reports the ended session and whether
// there was one.
func (m *Manager) Logout() (Info, bool) {
	m.mu.Lock()
	if m.account == nil {
		m.mu.Unlock()
		return Info{}, false
	}
	info := m.infoLocked()
	m.endLocked(ReasonLogout)
	m.mu.Unlock()

	m.log.Info("session ended", "username", info.Account.Username, "session_id", info.ID, "reason", ReasonLogout)
	return info, true
}

// ToggleSort flips the display order flag and returns the new value.
func (m *Manager) ToggleSort() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.account == nil {
		return false, ErrNotLoggedIn
	}
	m.sortDesc = !m.sortDesc
	return m.sortDesc, nil
}

// Current returns the logged-in account, or nil.
func (m *Manager) Current() *model.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.account
}

// Info returns a snapshot of the current session.
func (m *Manager) Info() (Info, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.account == nil {
		return Info{}, false
	}
	return m.infoLocked(), true
}

// State reports whether someone is logged in.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.account == nil {
		return LoggedOut
	}
	return LoggedIn
}

// Remaining returns the seconds left on the countdown, 0 when logged out.
func (m *Manager) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.account == nil {
		return 0
	}
	return m.remaining
}

// Context returns the current session's context, canceled when the session
// ends. While logged out it returns an already canceled context.
func (m *Manager) Context() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.account == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return m.ctx
}

// IsActive reports whether sessionID is still the live session.
func (m *Manager) IsActive(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.account != nil && m.sessionID == sessionID
}

func (m *Manager) infoLocked() Info {
	return Info{
		ID:             m.sessionID,
		Account:        m.account,
		Remaining:      m.remaining,
		SortDescending: m.sortDesc,
	}
}

func (m *Manager) endLocked(reason EndReason) {
	m.gen++
	if m.stopTicker != nil {
		m.stopTicker()
		m.stopTicker = nil
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if reason == ReasonReplaced {
		m.log.Info("session ended", "username", m.account.Username, "session_id", m.sessionID, "reason", reason)
	}
	m.account = nil
	m.sessionID = ""
	m.remaining = 0
	m.sortDesc = false
	m.ctx = nil
}

func (m *Manager) restartTickerLocked() {
	m.gen++
	if m.stopTicker != nil {
		m.stopTicker()
		m.stopTicker = nil
	}
	if m.opts.TickInterval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.stopTicker = cancel
	gen := m.gen
	interval := m.opts.TickInterval

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if !m.tick(gen, true) {
					return
				}
			}
		}
	}()
}
