package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cleared-dev/bankist/internal/accounts"
	"github.com/cleared-dev/bankist/internal/activitylog"
	"github.com/cleared-dev/bankist/internal/bank"
	"github.com/cleared-dev/bankist/internal/display"
	"github.com/cleared-dev/bankist/internal/session"
)

// readPassword is swapped out in tests that need a terminal.
var readPassword = term.ReadPassword

const shellHelp = `Commands:
  login [username] [pin]     log in (PIN is prompted when omitted)
  transfer <to> <amount>     send money to another account
  loan <amount>              request a loan
  close [username] [pin]     close the logged-in account
  sort                       toggle sorting movements by amount
  show                       show the account again
  logout                     log out
  help                       show this help
  exit | quit                leave the shell`

func newShellCommand() *cobra.Command {
	var dir string
	var save bool

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Open an interactive banking session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(dir, save, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	cmd.Flags().BoolVar(&save, "save", false, "write balances back to the data directory on exit")

	return cmd
}

func runShell(dir string, save bool, stdin io.Reader, stdout, stderr io.Writer) error {
	p, err := openProject(dir)
	if err != nil {
		return err
	}
	log, err := p.logger(stderr)
	if err != nil {
		return err
	}
	store, err := accounts.Load(p.dataDir())
	if err != nil {
		return err
	}

	// Loan grants and expiry notices arrive from other goroutines.
	out := &lockedWriter{w: stdout}

	var svc *bank.Service
	sessions := session.NewManager(session.Options{
		Timeout:      p.cfg.Session.TimeoutSeconds,
		TickInterval: p.cfg.Session.TickInterval,
		Logger:       log,
		OnExpire: func(info session.Info) {
			svc.SessionExpired(info)
			fmt.Fprintf(out, "\nSession for %s expired. Log in to get started.\n", info.Account.Username)
		},
	})
	svc = bank.NewService(store, sessions, bank.Options{
		LoanDelay: p.cfg.Loan.Delay,
		LoanRatio: decimal.NewFromFloat(p.cfg.Loan.MinMovementRatio),
		Renderer:  display.NewText(out, display.WithCountdown(sessions.Remaining)),
		Logger:    log,
	})

	sh := &shell{
		stdin:    stdin,
		in:       bufio.NewReader(stdin),
		out:      out,
		svc:      svc,
		sessions: sessions,
	}
	sh.run()

	if err := svc.Logout(); err != nil && !errors.Is(err, bank.ErrNotLoggedIn) {
		return err
	}
	svc.Wait()

	if err := activitylog.Append(p.logDir(), svc.Activity()); err != nil {
		return err
	}
	if save {
		if err := store.Save(p.dataDir()); err != nil {
			return err
		}
		log.Info("accounts saved", "dir", p.dataDir(), "accounts", store.Len())

		if err := p.snapshot(svc.Activity(), log); err != nil {
			return err
		}
	}
	return nil
}

type shell struct {
	stdin    io.Reader
	in       *bufio.Reader
	out      io.Writer
	svc      *bank.Service
	sessions *session.Manager
}

// run reads commands until EOF, exit or quit.
func (s *shell) run() {
	fmt.Fprintln(s.out, "Bankist. Type 'help' for commands.")
	for {
		fmt.Fprint(s.out, s.prompt())
		line, err := s.readLine()
		if err != nil {
			fmt.Fprintln(s.out)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(s.out, shellHelp)
		case "login":
			s.login(args)
		case "transfer":
			s.transfer(args)
		case "loan":
			s.loan(args)
		case "close":
			s.close(args)
		case "sort":
			_, err := s.svc.ToggleSort()
			s.report(err)
		case "show":
			s.report(s.svc.Render())
		case "logout":
			if s.report(s.svc.Logout()) {
				fmt.Fprintln(s.out, "Logged out.")
			}
		case "exit", "quit":
			fmt.Fprintln(s.out, "Bye!")
			return
		default:
			fmt.Fprintf(s.out, "Unknown command: %s\n", cmd)
		}
	}
}

func (s *shell) prompt() string {
	info, ok := s.sessions.Info()
	if !ok {
		return "bankist> "
	}
	return fmt.Sprintf("bankist [%s %s]> ", info.Account.Username, display.Timer(info.Remaining))
}

func (s *shell) login(args []string) {
	username, pin, err := s.credentials(args)
	if err != nil {
		return
	}
	_, err = s.svc.Login(username, pin)
	s.report(err)
}

func (s *shell) transfer(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "Usage: transfer <to> <amount>")
		return
	}
	if s.report(s.svc.Transfer(args[0], args[1])) {
		fmt.Fprintf(s.out, "Transferred %s to %s.\n", args[1], args[0])
	}
}

func (s *shell) loan(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: loan <amount>")
		return
	}
	amount, err := s.svc.RequestLoan(args[0])
	if s.report(err) {
		fmt.Fprintf(s.out, "Loan of %s approved. It will be credited shortly.\n", amount)
	}
}

func (s *shell) close(args []string) {
	username, pin, err := s.credentials(args)
	if err != nil {
		return
	}
	if s.report(s.svc.Close(username, pin)) {
		fmt.Fprintln(s.out, "Account closed. Log in to get started.")
	}
}

// credentials takes username and PIN from args, prompting for what is missing.
func (s *shell) credentials(args []string) (username, pin string, err error) {
	if len(args) > 0 {
		username = args[0]
	} else {
		fmt.Fprint(s.out, "Username: ")
		if username, err = s.readLine(); err != nil {
			return "", "", err
		}
	}
	if len(args) > 1 {
		return username, args[1], nil
	}
	pin, err = s.readSecret("PIN: ")
	return username, pin, err
}

// report prints err, if any, and reports whether the action succeeded.
func (s *shell) report(err error) bool {
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return false
	}
	return true
}

func (s *shell) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads without echo when stdin is a terminal.
func (s *shell) readSecret(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	f, ok := s.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return s.readLine()
	}
	pw, err := readPassword(int(f.Fd()))
	fmt.Fprintln(s.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(pw)), nil
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
