package config

import (
	"fmt"
	"strings"
)

type AppConfig interface {
	GetAppName() string
	GetEnv() string
	GetPort() string
	GetLogLevel() string
	GetLogFormat() string
	IsProduction() bool
}

func (c *mainConfig) GetAppName() string {
	return c.k.String(keyAppName)
}

func (c *mainConfig) GetEnv() string {
	return c.k.String(keyAppEnv)
}

// GetPort returns the listen address, e.g. ":3000".
func (c *mainConfig) GetPort() string {
	port := c.k.String(keyAppPort)
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (c *mainConfig) GetLogLevel() string {
	return c.k.String(keyAppLogLevel)
}

// GetLogFormat is "console" or "json".
func (c *mainConfig) GetLogFormat() string {
	return c.k.String(keyAppLogFormat)
}

func (c *mainConfig) IsProduction() bool {
	env := strings.ToLower(c.GetEnv())
	return env == "production" || env == "prod"
}
