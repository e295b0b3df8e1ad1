package id

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Username derives a login name from an owner's full name: the lowercase
// first letter of each name part, joined.
// "Steven Thomas Williams" -> "stw"
func Username(owner string) string {
	var b strings.Builder
	for _, part := range strings.Fields(owner) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// NewSessionID returns a fresh identifier for a login session.
func NewSessionID() string {
	return uuid.NewString()
}

// ParseSessionID validates a session ID read back from the activity log.
func ParseSessionID(s string) (string, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid session ID %q: %w", s, err)
	}
	return u.String(), nil
}
