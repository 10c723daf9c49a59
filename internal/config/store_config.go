package config

import (
	"fmt"
	"time"

	"github.com/jrsteele09/auth-service/internal/secret"
)

type StoreConfig interface {
	GetUserBackend() string
	GetTokenBackend() string
	GetDatabaseURL() secret.String
	GetRedisAddr() string
	GetRedisPassword() secret.String
	GetStoreTimeout() time.Duration
}

// GetUserBackend is "memory" or "postgres".
func (c *mainConfig) GetUserBackend() string {
	return c.k.String(keyUserBackend)
}

// GetTokenBackend selects where revoked tokens and 2FA codes live: "memory"
// or "redis".
func (c *mainConfig) GetTokenBackend() string {
	return c.k.String(keyTokenBackend)
}

func (c *mainConfig) GetDatabaseURL() secret.String {
	return secret.New(c.k.String(keyDatabaseURL))
}

func (c *mainConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.k.String(keyRedisHost), c.k.Int(keyRedisPort))
}

func (c *mainConfig) GetRedisPassword() secret.String {
	return secret.New(c.k.String(keyRedisPassword))
}

func (c *mainConfig) GetStoreTimeout() time.Duration {
	return c.k.Duration(keyStoreTimeout)
}
