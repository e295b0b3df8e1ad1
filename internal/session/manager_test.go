package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankist/internal/logging"
	"github.com/cleared-dev/bankist/internal/model"
)

func newManual(t *testing.T, onExpire func(Info)) *Manager {
	t.Helper()
	return NewManager(Options{OnExpire: onExpire, Logger: logging.Discard()})
}

func jonas() *model.Account {
	return &model.Account{Owner: "Jonas Schmedtmann", Username: "js"}
}

func TestLogin(t *testing.T) {
	m := newManual(t, nil)
	assert.Equal(t, LoggedOut, m.State())
	assert.Nil(t, m.Current())

	acc := jonas()
	info := m.Login(acc)

	assert.Equal(t, LoggedIn, m.State())
	assert.Same(t, acc, m.Current())
	assert.Equal(t, DefaultTimeout, info.Remaining)
	assert.Equal(t, 300, m.Remaining())
	assert.NotEmpty(t, info.ID)
	assert.True(t, m.IsActive(info.ID))
}

func TestCountdownExpiresAfterTimeoutTicks(t *testing.T) {
	var expired atomic.Int32
	var got Info
	m := newManual(t, func(info Info) {
		expired.Add(1)
		got = info
	})
	acc := jonas()
	m.Login(acc)

	for i := 0; i < 299; i++ {
		m.Tick()
	}
	assert.Equal(t, LoggedIn, m.State())
	assert.Equal(t, 1, m.Remaining())
	assert.Zero(t, expired.Load())

	m.Tick()
	assert.Equal(t, LoggedOut, m.State())
	assert.Nil(t, m.Current())
	assert.Equal(t, int32(1), expired.Load())
	assert.Same(t, acc, got.Account)

	// Further ticks after logout do nothing.
	for i := 0; i < 10; i++ {
		m.Tick()
	}
	assert.Equal(t, int32(1), expired.Load(), "logout fires exactly once")
}

func TestResetTimer(t *testing.T) {
	m := newManual(t, nil)
	require.ErrorIs(t, m.ResetTimer(), ErrNotLoggedIn)

	m.Login(jonas())
	for i := 0; i < 250; i++ {
		m.Tick()
	}
	assert.Equal(t, 50, m.Remaining())

	require.NoError(t, m.ResetTimer())
	assert.Equal(t, 300, m.Remaining())
}

func TestLogout(t *testing.T) {
	var expired atomic.Int32
	m := newManual(t, func(Info) { expired.Add(1) })

	_, ok := m.Logout()
	assert.False(t, ok, "logout while logged out")

	info := m.Login(jonas())
	ctx := m.Context()

	ended, ok := m.Logout()
	require.True(t, ok)
	assert.Equal(t, info.ID, ended.ID)
	assert.Equal(t, LoggedOut, m.State())
	assert.Error(t, ctx.Err(), "session context is canceled on logout")
	assert.False(t, m.IsActive(info.ID))
	assert.Zero(t, expired.Load(), "explicit logout is not an expiry")
	assert.Zero(t, m.Remaining())
}

func TestLoginReplacesSession(t *testing.T) {
	m := newManual(t, nil)
	first := m.Login(jonas())
	firstCtx := m.Context()

	second := m.Login(&model.Account{Owner: "Jessica Davis", Username: "jd"})
	assert.NotEqual(t, first.ID, second.ID)
	assert.Error(t, firstCtx.Err())
	assert.False(t, m.IsActive(first.ID))
	assert.Equal(t, "jd", m.Current().Username)
}

func TestContextWhileLoggedOut(t *testing.T) {
	m := newManual(t, nil)
	assert.Error(t, m.Context().Err())
}

func TestToggleSort(t *testing.T) {
	m := newManual(t, nil)
	_, err := m.ToggleSort()
	require.ErrorIs(t, err, ErrNotLoggedIn)

	m.Login(jonas())
	desc, err := m.ToggleSort()
	require.NoError(t, err)
	assert.True(t, desc)

	info, ok := m.Info()
	require.True(t, ok)
	assert.True(t, info.SortDescending)

	desc, err = m.ToggleSort()
	require.NoError(t, err)
	assert.False(t, desc)
}

func TestSortResetsOnLogin(t *testing.T) {
	m := newManual(t, nil)
	m.Login(jonas())
	_, _ = m.ToggleSort()

	m.Login(jonas())
	info, _ := m.Info()
	assert.False(t, info.SortDescending)
}

func TestAutomaticTicker(t *testing.T) {
	var expired atomic.Int32
	m := NewManager(Options{
		Timeout:      3,
		TickInterval: 5 * time.Millisecond,
		OnExpire:     func(Info) { expired.Add(1) },
		Logger:       logging.Discard(),
	})
	m.Login(jonas())

	assert.Eventually(t, func() bool {
		return m.State() == LoggedOut
	}, 2*time.Second, 5*time.Millisecond)

	// Give a stale ticker a chance to misfire.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), expired.Load())
}

func TestAutomaticTicker_ResetKeepsSessionAlive(t *testing.T) {
	m := NewManager(Options{
		Timeout:      4,
		TickInterval: 20 * time.Millisecond,
		Logger:       logging.Discard(),
	})
	m.Login(jonas())

	// Keep resetting for well over the timeout.
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		require.NoError(t, m.ResetTimer())
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, LoggedIn, m.State())

	_, ok := m.Logout()
	assert.True(t, ok)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "logged-in", LoggedIn.String())
	assert.Equal(t, "logged-out", LoggedOut.String())
}
