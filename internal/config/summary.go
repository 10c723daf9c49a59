package config

import (
	"fmt"
	"strings"
)

// Summary renders the effective configuration with every secret masked.
func (c *mainConfig) Summary() string {
	var b strings.Builder
	row := func(name string, value any) {
		fmt.Fprintf(&b, "  %-22s %v\n", name, value)
	}

	b.WriteString("Configuration:\n")
	row("app name", c.GetAppName())
	row("environment", c.GetEnv())
	row("listen address", c.GetPort())
	row("log level", c.GetLogLevel())
	row("jwt secret", c.GetJWTSecret().Masked())
	row("token ttl", c.GetTokenTTL())
	row("banned token ttl", c.GetBannedTokenTTL())
	row("2fa code ttl", c.GetTwoFACodeTTL())
	row("cookie name", c.GetCookieName())
	row("password policy", c.GetPasswordPolicy())
	row("user store", c.GetUserBackend())
	if c.GetUserBackend() == BackendPostgres {
		row("database url", c.GetDatabaseURL().Masked())
	}
	row("token store", c.GetTokenBackend())
	if c.GetTokenBackend() == BackendRedis {
		row("redis address", c.GetRedisAddr())
	}
	row("email client", c.GetEmailBackend())
	if c.GetEmailBackend() == EmailPostmark {
		row("postmark url", c.GetPostmarkBaseURL())
		row("postmark token", c.GetPostmarkAuthToken().Masked())
	}
	row("allowed origins", c.GetAllowedOrigins())
	row("rate limit", fmt.Sprintf("%v req/s (enabled=%t)", c.GetRateLimit(), c.GetEnableRateLimiting()))
	return b.String()
}
