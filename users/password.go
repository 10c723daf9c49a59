package users

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jrsteele09/auth-service/internal/secret"
)

// PolicyMode selects how strictly passwords are checked.
type PolicyMode string

const (
	PolicyDevelopment PolicyMode = "development"
	PolicyProduction  PolicyMode = "production"
)

const (
	defaultMinPasswordLength = 8
	passwordSymbols          = "!@#$%^&*()_+-=[]{}|;':\",.<>?/`~"
)

// PasswordPolicy decides which raw strings are accepted as passwords.
// A policy is chosen once from configuration and shared by all callers.
type PasswordPolicy struct {
	Mode      PolicyMode
	MinLength int
}

// ProductionPolicy requires at least 8 characters with upper and lower case
// letters, a digit and a symbol.
var ProductionPolicy = PasswordPolicy{Mode: PolicyProduction, MinLength: defaultMinPasswordLength}

// DevelopmentPolicy only requires a non-empty password of minimum length.
var DevelopmentPolicy = PasswordPolicy{Mode: PolicyDevelopment, MinLength: defaultMinPasswordLength}

// NewPasswordPolicy returns the policy named by mode.
func NewPasswordPolicy(mode string, minLength int) (PasswordPolicy, error) {
	switch PolicyMode(strings.ToLower(mode)) {
	case PolicyProduction:
		return ProductionPolicy, nil
	case PolicyDevelopment:
		if minLength <= 0 {
			minLength = defaultMinPasswordLength
		}
		return PasswordPolicy{Mode: PolicyDevelopment, MinLength: minLength}, nil
	default:
		return PasswordPolicy{}, fmt.Errorf("[NewPasswordPolicy] unknown password policy %q", mode)
	}
}

// Password is a plaintext password that passed a PasswordPolicy. It is
// never printed; call Expose to read it.
type Password struct {
	value secret.String
}

// Parse validates raw against the policy.
func (p PasswordPolicy) Parse(raw string) (Password, error) {
	if raw == "" {
		return Password{}, ErrPasswordBlank
	}

	minLength := p.MinLength
	if p.Mode == PolicyProduction && minLength < defaultMinPasswordLength {
		minLength = defaultMinPasswordLength
	}
	if len(raw) < minLength {
		return Password{}, ErrPasswordTooShort
	}

	if p.Mode != PolicyDevelopment {
		if err := checkCharacterClasses(raw); err != nil {
			return Password{}, err
		}
	}

	return Password{value: secret.New(raw)}, nil
}

func checkCharacterClasses(raw string) error {
	var hasUpper, hasLower, hasDigit, hasSymbol bool

	for _, char := range raw {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case char >= '0' && char <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, char):
			hasSymbol = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		return ErrPasswordInsecure
	}
	return nil
}

// Expose returns the plaintext password.
func (p Password) Expose() string {
	return p.value.Expose()
}

func (p Password) String() string {
	return p.value.String()
}

func (p Password) GoString() string {
	return p.value.GoString()
}
