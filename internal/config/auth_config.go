package config

import (
	"time"

	"github.com/jrsteele09/auth-service/internal/secret"
)

type AuthConfig interface {
	GetJWTSecret() secret.String
	GetTokenTTL() time.Duration
	GetBannedTokenTTL() time.Duration
	GetTwoFACodeTTL() time.Duration
	GetCookieName() string
	GetCookieSecure() bool
	GetPasswordPolicy() string
	GetPasswordMinLength() int
	GetSweepInterval() time.Duration
}

func (c *mainConfig) GetJWTSecret() secret.String {
	return secret.New(c.k.String(keyJWTSecret))
}

func (c *mainConfig) GetTokenTTL() time.Duration {
	return c.k.Duration(keyTokenTTL)
}

// GetBannedTokenTTL is how long a logged out token stays revoked.
func (c *mainConfig) GetBannedTokenTTL() time.Duration {
	return c.k.Duration(keyBannedTokenTTL)
}

func (c *mainConfig) GetTwoFACodeTTL() time.Duration {
	return c.k.Duration(keyTwoFACodeTTL)
}

func (c *mainConfig) GetCookieName() string {
	return c.k.String(keyCookieName)
}

func (c *mainConfig) GetCookieSecure() bool {
	return c.k.Bool(keyCookieSecure) || c.IsProduction()
}

func (c *mainConfig) GetPasswordPolicy() string {
	return c.k.String(keyPasswordPolicy)
}

func (c *mainConfig) GetPasswordMinLength() int {
	return c.k.Int(keyPasswordMinLength)
}

func (c *mainConfig) GetSweepInterval() time.Duration {
	return c.k.Duration(keySweepInterval)
}
