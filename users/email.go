package users

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var emailValidator = validator.New()

// Email is a validated email address. The zero value is not a valid email;
// use ParseEmail to construct one.
type Email struct {
	value string
}

// ParseEmail validates raw and returns it as an Email. The first failing
// rule decides the error: ErrEmailEmpty, ErrEmailMissingAt or
// ErrEmailBadFormat.
func ParseEmail(raw string) (Email, error) {
	if raw == "" {
		return Email{}, ErrEmailEmpty
	}
	if strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return Email{}, ErrEmailBadFormat
	}
	if !strings.Contains(raw, "@") {
		return Email{}, ErrEmailMissingAt
	}

	parts := strings.Split(raw, "@")
	if len(parts) != 2 {
		return Email{}, ErrEmailBadFormat
	}
	local, domain := parts[0], parts[1]
	if local == "" || strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return Email{}, ErrEmailBadFormat
	}
	if !strings.Contains(domain, ".") {
		return Email{}, ErrEmailBadFormat
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return Email{}, ErrEmailBadFormat
	}
	if err := emailValidator.Var(raw, "required,email"); err != nil {
		return Email{}, ErrEmailBadFormat
	}

	return Email{value: raw}, nil
}

// String returns the address.
func (e Email) String() string {
	return e.value
}

// IsZero reports whether e was never parsed.
func (e Email) IsZero() bool {
	return e.value == ""
}
