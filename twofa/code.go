// Package twofa holds the pending second-factor challenges issued at login.
package twofa

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

var (
	ErrInvalidLoginAttemptID = errors.New("invalid login attempt id")
	ErrInvalidCode           = errors.New("invalid 2FA code")
	ErrCodeNotFound          = errors.New("2FA code not found")
	ErrCodeMismatch          = errors.New("2FA code mismatch")
)

const codeLength = 6

var codeSpace = big.NewInt(1_000_000)

// LoginAttemptID identifies one pending two-factor login.
type LoginAttemptID struct {
	value string
}

func NewLoginAttemptID() LoginAttemptID {
	return LoginAttemptID{value: uuid.New().String()}
}

// ParseLoginAttemptID accepts any UUID.
func ParseLoginAttemptID(raw string) (LoginAttemptID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return LoginAttemptID{}, fmt.Errorf("%w: %v", ErrInvalidLoginAttemptID, err)
	}
	return LoginAttemptID{value: id.String()}, nil
}

func (id LoginAttemptID) String() string {
	return id.value
}

// Code is a six digit one-time code.
type Code struct {
	value string
}

// NewCode draws a uniformly random code in 000000..999999.
func NewCode() (Code, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return Code{}, fmt.Errorf("[NewCode] read random: %w", err)
	}
	return Code{value: fmt.Sprintf("%06d", n.Int64())}, nil
}

// ParseCode requires exactly six ASCII digits.
func ParseCode(raw string) (Code, error) {
	if len(raw) != codeLength {
		return Code{}, ErrInvalidCode
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return Code{}, ErrInvalidCode
		}
	}
	return Code{value: raw}, nil
}

func (c Code) String() string {
	return c.value
}

// Challenge is the pending second factor for one email.
type Challenge struct {
	LoginAttemptID LoginAttemptID
	Code           Code
}

// Matches compares id and code against the challenge in constant time.
func (c Challenge) Matches(id LoginAttemptID, code Code) bool {
	idMatch := subtle.ConstantTimeCompare([]byte(id.String()), []byte(c.LoginAttemptID.String()))
	codeMatch := subtle.ConstantTimeCompare([]byte(code.String()), []byte(c.Code.String()))
	return idMatch&codeMatch == 1
}
