package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/auth-service/internal/config"
)

func newConfig(t *testing.T, opts ...config.Option) config.Config {
	t.Helper()
	opts = append([]config.Option{config.WithEnvFile("")}, opts...)
	cfg, err := config.New(opts...)
	require.NoError(t, err)
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := newConfig(t)

	require.Equal(t, ":3000", cfg.GetPort())
	require.Equal(t, 10*time.Minute, cfg.GetTokenTTL())
	require.Equal(t, 2*time.Hour, cfg.GetBannedTokenTTL())
	require.Equal(t, 10*time.Minute, cfg.GetTwoFACodeTTL())
	require.Equal(t, "jwt", cfg.GetCookieName())
	require.Equal(t, config.BackendMemory, cfg.GetUserBackend())
	require.Equal(t, config.BackendMemory, cfg.GetTokenBackend())
	require.Equal(t, config.EmailMock, cfg.GetEmailBackend())
	require.Equal(t, "127.0.0.1:6379", cfg.GetRedisAddr())
	require.True(t, cfg.GetAllowedOrigins().IsAllowedOrigin("http://localhost:8000"))
	require.True(t, cfg.GetEnableRateLimiting())

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT secret")
}

func TestEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "super-secret-value")
	t.Setenv("PORT", "8080")
	t.Setenv("REDIS_HOST_NAME", "redis")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/auth")
	t.Setenv("AUTH_STORE__USER_BACKEND", "postgres")
	t.Setenv("AUTH_AUTH__TOKEN_TTL", "5m")
	t.Setenv("AUTH_CORS__ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com/")
	t.Setenv("AUTH_NOT__A_KEY", "ignored")

	cfg := newConfig(t)

	require.Equal(t, "super-secret-value", cfg.GetJWTSecret().Expose())
	require.Equal(t, ":8080", cfg.GetPort())
	require.Equal(t, "redis:6379", cfg.GetRedisAddr())
	require.Equal(t, config.BackendPostgres, cfg.GetUserBackend())
	require.Equal(t, "postgres://u:p@db/auth", cfg.GetDatabaseURL().Expose())
	require.Equal(t, 5*time.Minute, cfg.GetTokenTTL())
	require.True(t, cfg.GetAllowedOrigins().IsAllowedOrigin("https://a.example.com"))
	require.True(t, cfg.GetAllowedOrigins().IsAllowedOrigin("https://b.example.com"))
	require.NoError(t, cfg.Validate())
}

func TestFileThenEnvThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: "4000"
  log_level: debug
auth:
  jwt_secret: from-file
  twofa_code_ttl: 3m
store:
  token_backend: redis
`), 0o600))

	t.Setenv("JWT_SECRET", "from-env")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("port", "3000", "")
	fs.String("log-level", "info", "")
	require.NoError(t, fs.Parse([]string{"--port", "5000"}))

	cfg := newConfig(t, config.WithConfigFile(path), config.WithFlags(fs))

	require.Equal(t, ":5000", cfg.GetPort())
	require.Equal(t, "debug", cfg.GetLogLevel())
	require.Equal(t, "from-env", cfg.GetJWTSecret().Expose())
	require.Equal(t, 3*time.Minute, cfg.GetTwoFACodeTTL())
	require.Equal(t, config.BackendRedis, cfg.GetTokenBackend())
}

func TestEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=dotenv-secret\n"), 0o600))
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	cfg, err := config.New(config.WithEnvFile(path))
	require.NoError(t, err)
	require.Equal(t, "dotenv-secret", cfg.GetJWTSecret().Expose())
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
}

func TestMissingEnvFileIsIgnored(t *testing.T) {
	_, err := config.New(config.WithEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "retention shorter than token ttl",
			env:     map[string]string{"AUTH_AUTH__BANNED_TOKEN_TTL": "1m"},
			wantErr: "banned token TTL",
		},
		{
			name:    "postgres without url",
			env:     map[string]string{"AUTH_STORE__USER_BACKEND": "postgres"},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "unknown token store",
			env:     map[string]string{"AUTH_STORE__TOKEN_BACKEND": "memcached"},
			wantErr: "unknown token store",
		},
		{
			name:    "postmark without token",
			env:     map[string]string{"AUTH_EMAIL__BACKEND": "postmark"},
			wantErr: "POSTMARK_AUTH_TOKEN",
		},
		{
			name:    "unknown policy",
			env:     map[string]string{"AUTH_AUTH__PASSWORD_POLICY": "lenient"},
			wantErr: "password policy",
		},
		{
			name:    "zero sweep interval",
			env:     map[string]string{"AUTH_AUTH__SWEEP_INTERVAL": "0s"},
			wantErr: "sweep interval",
		},
		{
			name:    "zero store timeout",
			env:     map[string]string{"AUTH_STORE__TIMEOUT": "0s"},
			wantErr: "store timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			err := newConfig(t).Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSummaryMasksSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "abcdefghijklmnopqrstuvwxyz")
	t.Setenv("AUTH_EMAIL__BACKEND", "postmark")
	t.Setenv("POSTMARK_AUTH_TOKEN", "postmark-server-token")

	summary := newConfig(t).Summary()
	require.NotContains(t, summary, "abcdefghijklmnopqrstuvwxyz")
	require.NotContains(t, summary, "postmark-server-token")
	require.Contains(t, summary, "rstuvwxyz")
}
