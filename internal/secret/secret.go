// Package secret provides a string wrapper for sensitive values such as
// passwords, session tokens and API keys.
//
// A String never prints its value through fmt, encoding/json or zerolog.
// Reading the underlying value requires an explicit call to Expose, so every
// place a secret leaves the wrapper is visible at the call site.
package secret

import (
	"crypto/subtle"
	"strings"
)

const redacted = "[REDACTED]"

// stars is the width of the masked rendering produced by Masked.
const stars = "****************************************"

// String holds a sensitive string value.
type String struct {
	value string
}

// New wraps value.
func New(value string) String {
	return String{value: value}
}

// Expose returns the raw secret value.
func (s String) Expose() string {
	return s.value
}

// IsEmpty reports whether the secret has no content.
func (s String) IsEmpty() bool {
	return s.value == ""
}

// Len returns the length in bytes of the secret.
func (s String) Len() int {
	return len(s.value)
}

// Equal compares two secrets by value in constant time.
func (s String) Equal(other String) bool {
	return subtle.ConstantTimeCompare([]byte(s.value), []byte(other.value)) == 1
}

func (s String) String() string {
	return redacted
}

func (s String) GoString() string {
	return redacted
}

func (s String) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

func (s String) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}

// Masked renders the secret as a fixed-width run of stars followed by a
// short suffix of the real value. Short secrets reveal nothing.
func (s String) Masked() string {
	show := revealCount(len(s.value))
	hide := len(stars) - show
	return strings.Repeat("*", hide+1) + s.value[len(s.value)-show:]
}

func revealCount(n int) int {
	switch {
	case n <= 6:
		return 0
	case n <= 10:
		return 1
	case n <= 14:
		return 3
	case n <= 18:
		return 5
	case n <= 22:
		return 7
	case n <= 26:
		return 9
	default:
		return 12
	}
}
