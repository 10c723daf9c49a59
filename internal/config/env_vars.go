package config

import (
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix selects variables that map onto config keys directly:
// AUTH_STORE__USER_BACKEND sets store.user_backend.
const EnvPrefix = "AUTH_"

// Well-known variables shared with the deployment environment.
var envKeys = map[string]string{
	"APP_NAME":            keyAppName,
	"ENV":                 keyAppEnv,
	"PORT":                keyAppPort,
	"LOG_LEVEL":           keyAppLogLevel,
	"JWT_SECRET":          keyJWTSecret,
	"DATABASE_URL":        keyDatabaseURL,
	"REDIS_HOST_NAME":     keyRedisHost,
	"REDIS_PASSWORD":      keyRedisPassword,
	"POSTMARK_AUTH_TOKEN": keyPostmarkToken,
	"EMAIL_SENDER":        keyEmailSender,
}

var flagKeys = map[string]string{
	"port":            keyAppPort,
	"env":             keyAppEnv,
	"log-level":       keyAppLogLevel,
	"log-format":      keyAppLogFormat,
	"user-store":      keyUserBackend,
	"token-store":     keyTokenBackend,
	"email-client":    keyEmailBackend,
	"password-policy": keyPasswordPolicy,
	"database-url":    keyDatabaseURL,
	"redis-host":      keyRedisHost,
}

func loadEnv(k *koanf.Koanf) error {
	named := env.ProviderWithValue("", ".", func(name, value string) (string, interface{}) {
		key, ok := envKeys[name]
		if !ok || value == "" {
			return "", nil
		}
		return key, value
	})
	if err := k.Load(named, nil); err != nil {
		return err
	}

	prefixed := env.ProviderWithValue(EnvPrefix, ".", func(name, value string) (string, interface{}) {
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if value == "" || !k.Exists(key) {
			return "", nil
		}
		if isListKey(key) {
			return key, splitList(value)
		}
		return key, value
	})
	return k.Load(prefixed, nil)
}

func isListKey(key string) bool {
	return key == keyAllowedOrigins
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
