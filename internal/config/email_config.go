package config

import (
	"time"

	"github.com/jrsteele09/auth-service/internal/secret"
)

type EmailConfig interface {
	GetEmailBackend() string
	GetEmailSender() string
	GetPostmarkBaseURL() string
	GetPostmarkAuthToken() secret.String
	GetEmailTimeout() time.Duration
}

// GetEmailBackend is "mock" or "postmark".
func (c *mainConfig) GetEmailBackend() string {
	return c.k.String(keyEmailBackend)
}

func (c *mainConfig) GetEmailSender() string {
	return c.k.String(keyEmailSender)
}

func (c *mainConfig) GetPostmarkBaseURL() string {
	return c.k.String(keyPostmarkBaseURL)
}

func (c *mainConfig) GetPostmarkAuthToken() secret.String {
	return secret.New(c.k.String(keyPostmarkToken))
}

func (c *mainConfig) GetEmailTimeout() time.Duration {
	return c.k.Duration(keyEmailTimeout)
}
