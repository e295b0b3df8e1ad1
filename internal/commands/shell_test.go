package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankist/internal/accounts"
	"github.com/cleared-dev/bankist/internal/activitylog"
)

func actions(t *testing.T, dir string) []activitylog.Action {
	t.Helper()
	entries, err := activitylog.Read(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	var got []activitylog.Action
	for _, e := range entries {
		got = append(got, e.Action)
	}
	return got
}

func TestShell_LoginAndShow(t *testing.T) {
	dir := initProject(t)

	out, err := runBankist(t, "login js 1111\nshow\nexit\n", "shell", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome back, Jonas")
	assert.Contains(t, out, "bankist [js 05:00]> ")
	assert.Contains(t, out, "Bye!")

	assert.Equal(t, []activitylog.Action{activitylog.ActionLogin, activitylog.ActionLogout}, actions(t, dir))
}

func TestShell_PromptsForPIN(t *testing.T) {
	dir := initProject(t)

	out, err := runBankist(t, "login\njd\n2222\nexit\n", "shell", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Username: ")
	assert.Contains(t, out, "PIN: ")
	assert.Contains(t, out, "Welcome back, Jessica")
}

func TestShell_WrongPIN(t *testing.T) {
	dir := initProject(t)

	out, err := runBankist(t, "login js 9999\nexit\n", "shell", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Error: invalid username or PIN")
	assert.NotContains(t, out, "Welcome back")
	assert.Equal(t, []activitylog.Action{activitylog.ActionLoginFailed}, actions(t, dir))
}

func TestShell_RequiresLogin(t *testing.T) {
	dir := initProject(t)

	out, err := runBankist(t, "transfer jd 10\nsort\nfrobnicate\n", "shell", "--dir", dir)
	require.NoError(t, err, "EOF ends the shell cleanly")
	assert.Contains(t, out, "Error: not logged in")
	assert.Contains(t, out, "Unknown command: frobnicate")
}

func TestShell_TransferWithSave(t *testing.T) {
	dir := initProject(t)

	out, err := runBankist(t, "login js 1111\ntransfer jd 100\ntransfer jd 1000000\nexit\n", "shell", "--dir", dir, "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "Transferred 100 to jd.")
	assert.Contains(t, out, "Error: insufficient funds")

	store, err := accounts.Load(filepath.Join(dir, "data"))
	require.NoError(t, err)
	js, _ := store.Get("js")
	jd, _ := store.Get("jd")
	assert.Equal(t, "3740", js.Balance().String())
	assert.Equal(t, "11820", jd.Balance().String())
}

func TestShell_TransferWithoutSaveLeavesData(t *testing.T) {
	dir := initProject(t)

	_, err := runBankist(t, "login js 1111\ntransfer jd 100\nexit\n", "shell", "--dir", dir)
	require.NoError(t, err)

	store, err := accounts.Load(filepath.Join(dir, "data"))
	require.NoError(t, err)
	js, _ := store.Get("js")
	assert.Equal(t, "3840", js.Balance().String())
}

func TestShell_PendingLoanDroppedOnExit(t *testing.T) {
	dir := initProject(t)

	out, err := runBankist(t, "login js 1111\nloan 1000.9\nexit\n", "shell", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Loan of 1000 approved")

	assert.Contains(t, actions(t, dir), activitylog.ActionLoanDropped)
	assert.NotContains(t, actions(t, dir), activitylog.ActionLoanGranted)
}

func TestShell_LoanGrantedBeforeExit(t *testing.T) {
	dir := initProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BANKIST_LOAN_DELAY=1ms\n"), 0o644))

	out, err := runBankist(t, "login js 1111\nloan 1000\nshow\nexit\n", "shell", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Loan of 1000 approved")

	got := actions(t, dir)
	assert.Contains(t, got, activitylog.ActionLoanRequested)
	// Exit may beat the grant; either way the loan is settled before the log is written.
	assert.True(t, contains(got, activitylog.ActionLoanGranted) || contains(got, activitylog.ActionLoanDropped))
}

func TestShell_CloseAccount(t *testing.T) {
	dir := initProject(t)

	out, err := runBankist(t, "login ss 4444\nclose ss 1111\nclose ss 4444\nshow\nexit\n", "shell", "--dir", dir, "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "Error: username or PIN does not match")
	assert.Contains(t, out, "Account closed.")
	assert.Contains(t, out, "Error: not logged in")

	store, err := accounts.Load(filepath.Join(dir, "data"))
	require.NoError(t, err)
	assert.False(t, store.Exists("ss"))
	assert.Equal(t, 3, store.Len())
}

func TestShell_Help(t *testing.T) {
	dir := initProject(t)

	out, err := runBankist(t, "help\n", "shell", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "transfer <to> <amount>")
}

func contains(actions []activitylog.Action, a activitylog.Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}
