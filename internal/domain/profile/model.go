package profile

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"
	"unicode"
)

// MaxNameLength bounds first and last names.
const MaxNameLength = 100

// DefaultFirstName is used when an email has no usable local part.
const DefaultFirstName = "User"

// Domain errors
var (
	ErrEmptyFirstName = errors.New("first name is required")
	ErrEmptyEmail     = errors.New("email is required")
	ErrInvalidEmail   = errors.New("email must contain '@'")
	ErrNameTooLong    = errors.New("names cannot exceed 100 characters")
)

// Profile is the public face of a player. ID equals the account ID.
type Profile struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	QRToken   string
	CreatedAt time.Time
}

// Validate checks if the Profile has valid data.
// PRE: Profile struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" {
		return ErrEmptyFirstName
	}
	if len(p.FirstName) > MaxNameLength || len(p.LastName) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(p.Email) == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(p.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// FullName joins first and last name.
func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// SplitName splits a display name into first and the remaining words.
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// NamesFromEmail derives a first and last name from the local part of an
// email. "jordan.smith@x" gives ("Jordan", "Smith").
func NamesFromEmail(email string) (first, last string) {
	local, _, _ := strings.Cut(email, "@")
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return DefaultFirstName, ""
	}
	first = capitalize(parts[0])
	if len(parts) > 1 {
		rest := make([]string, 0, len(parts)-1)
		for _, p := range parts[1:] {
			rest = append(rest, capitalize(p))
		}
		last = strings.Join(rest, " ")
	}
	return first, last
}

// NewQRToken returns a kiosk token of the form QR-<initials>-<4 hex>.
func NewQRToken(first, last string) string {
	return newQRToken(first, last, 2)
}

// NewLongQRToken returns QR-<initials>-<8 hex>, for when the short tokens
// for these initials keep colliding.
func NewLongQRToken(first, last string) string {
	return newQRToken(first, last, 4)
}

func newQRToken(first, last string, n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return "QR-" + Initials(first, last) + "-" + strings.ToUpper(hex.EncodeToString(buf))
}

// Initials returns the uppercase initials of first and last name, or "X" when
// neither has a letter.
func Initials(first, last string) string {
	var b strings.Builder
	for _, name := range []string{first, last} {
		for _, r := range strings.TrimSpace(name) {
			if unicode.IsLetter(r) {
				b.WriteRune(unicode.ToUpper(r))
			}
			break
		}
	}
	if b.Len() == 0 {
		return "X"
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
