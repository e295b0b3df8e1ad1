package activitylog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankist/internal/id"
)

// Action names a recorded event.
type Action string

const (
	ActionLogin         Action = "login"
	ActionLoginFailed   Action = "login_failed"
	ActionLogout        Action = "logout"
	ActionExpired       Action = "session_expired"
	ActionTransferOut   Action = "transfer_out"
	ActionTransferIn    Action = "transfer_in"
	ActionTransferFail  Action = "transfer_rejected"
	ActionLoanRequested Action = "loan_requested"
	ActionLoanGranted   Action = "loan_granted"
	ActionLoanDropped   Action = "loan_dropped"
	ActionLoanRejected  Action = "loan_rejected"
	ActionClose         Action = "account_closed"
	ActionCloseFailed   Action = "close_rejected"
)

// Entry is one row in the activity log.
type Entry struct {
	Timestamp time.Time
	SessionID string
	Username  string
	Action    Action
	Amount    decimal.Decimal // zero when the action has no amount
	Details   string
}

// Header is the CSV header for activity-log.csv.
const Header = "timestamp,session_id,username,action,amount,details"

// FileName is the log file inside the log directory.
const FileName = "activity-log.csv"

const (
	numFields    = 6
	colTimestamp = 0
	colSession   = 1
	colUsername  = 2
	colAction    = 3
	colAmount    = 4
	colDetails   = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colSession] = e.SessionID
	row[colUsername] = e.Username
	row[colAction] = string(e.Action)
	if !e.Amount.IsZero() {
		row[colAmount] = e.Amount.StringFixed(2)
	}
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	var amount decimal.Decimal
	if record[colAmount] != "" {
		amount, err = decimal.NewFromString(record[colAmount])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
		}
	}

	// Failed logins happen outside any session.
	sessionID := record[colSession]
	if sessionID != "" {
		if sessionID, err = id.ParseSessionID(sessionID); err != nil {
			return Entry{}, err
		}
	}

	return Entry{
		Timestamp: ts,
		SessionID: sessionID,
		Username:  record[colUsername],
		Action:    Action(record[colAction]),
		Amount:    amount,
		Details:   record[colDetails],
	}, nil
}

// Append writes entries to <logDir>/activity-log.csv, creating the file and header if needed.
func Append(logDir string, entries []Entry) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := filepath.Join(logDir, FileName)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <logDir>/activity-log.csv.
// Returns an empty slice if the file does not exist.
func Read(logDir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(logDir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
