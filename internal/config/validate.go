package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports every problem found, joined.
func (c *mainConfig) Validate() error {
	var errs []error

	if c.GetJWTSecret().IsEmpty() {
		errs = append(errs, errors.New("JWT secret must be set (JWT_SECRET)"))
	}
	if c.GetTokenTTL() <= 0 {
		errs = append(errs, fmt.Errorf("token TTL must be positive, got %s", c.GetTokenTTL()))
	}
	if c.GetBannedTokenTTL() < c.GetTokenTTL() {
		errs = append(errs, fmt.Errorf("banned token TTL %s is shorter than token TTL %s", c.GetBannedTokenTTL(), c.GetTokenTTL()))
	}
	if c.GetTwoFACodeTTL() <= 0 {
		errs = append(errs, fmt.Errorf("2FA code TTL must be positive, got %s", c.GetTwoFACodeTTL()))
	}
	if c.GetSweepInterval() <= 0 {
		errs = append(errs, fmt.Errorf("sweep interval must be positive, got %s", c.GetSweepInterval()))
	}
	if c.GetStoreTimeout() <= 0 {
		errs = append(errs, fmt.Errorf("store timeout must be positive, got %s", c.GetStoreTimeout()))
	}

	switch strings.ToLower(c.GetPasswordPolicy()) {
	case "production", "development":
	default:
		errs = append(errs, fmt.Errorf("unknown password policy %q", c.GetPasswordPolicy()))
	}

	switch c.GetUserBackend() {
	case BackendMemory:
	case BackendPostgres:
		if c.GetDatabaseURL().IsEmpty() {
			errs = append(errs, errors.New("postgres user store needs DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown user store %q", c.GetUserBackend()))
	}

	switch c.GetTokenBackend() {
	case BackendMemory, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown token store %q", c.GetTokenBackend()))
	}

	switch c.GetEmailBackend() {
	case EmailMock:
	case EmailPostmark:
		if c.GetPostmarkAuthToken().IsEmpty() {
			errs = append(errs, errors.New("postmark email client needs POSTMARK_AUTH_TOKEN"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown email client %q", c.GetEmailBackend()))
	}

	if c.GetEnableRateLimiting() && c.GetRateLimit() <= 0 {
		errs = append(errs, fmt.Errorf("rate limit must be positive, got %v", c.GetRateLimit()))
	}

	return errors.Join(errs...)
}
