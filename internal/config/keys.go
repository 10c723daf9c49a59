package config

const (
	keyAppName      = "app.name"
	keyAppEnv       = "app.env"
	keyAppPort      = "app.port"
	keyAppLogLevel  = "app.log_level"
	keyAppLogFormat = "app.log_format"

	keyJWTSecret         = "auth.jwt_secret"
	keyTokenTTL          = "auth.token_ttl"
	keyBannedTokenTTL    = "auth.banned_token_ttl"
	keyTwoFACodeTTL      = "auth.twofa_code_ttl"
	keyCookieName        = "auth.cookie_name"
	keyCookieSecure      = "auth.cookie_secure"
	keyPasswordPolicy    = "auth.password_policy"
	keyPasswordMinLength = "auth.password_min_length"
	keySweepInterval     = "auth.sweep_interval"

	keyUserBackend   = "store.user_backend"
	keyTokenBackend  = "store.token_backend"
	keyDatabaseURL   = "store.database_url"
	keyRedisHost     = "store.redis_host"
	keyRedisPort     = "store.redis_port"
	keyRedisPassword = "store.redis_password"
	keyStoreTimeout  = "store.timeout"

	keyEmailBackend    = "email.backend"
	keyEmailSender     = "email.sender"
	keyPostmarkBaseURL = "email.postmark_base_url"
	keyPostmarkToken   = "email.postmark_auth_token"
	keyEmailTimeout    = "email.timeout"

	keyAllowedOrigins = "cors.allowed_origins"
	keyAllowedMethods = "cors.allowed_methods"
	keyAllowedHeaders = "cors.allowed_headers"

	keyRateLimitEnabled = "ratelimit.enabled"
	keyRateLimitRPS     = "ratelimit.rps"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"

	EmailMock     = "mock"
	EmailPostmark = "postmark"
)

var defaults = map[string]interface{}{
	keyAppName:      "Auth Service",
	keyAppEnv:       "development",
	keyAppPort:      "3000",
	keyAppLogLevel:  "info",
	keyAppLogFormat: "console",

	keyJWTSecret:         "",
	keyTokenTTL:          "10m",
	keyBannedTokenTTL:    "2h",
	keyTwoFACodeTTL:      "10m",
	keyCookieName:        "jwt",
	keyCookieSecure:      false,
	keyPasswordPolicy:    "production",
	keyPasswordMinLength: 8,
	keySweepInterval:     "1m",

	keyUserBackend:   BackendMemory,
	keyTokenBackend:  BackendMemory,
	keyDatabaseURL:   "",
	keyRedisHost:     "127.0.0.1",
	keyRedisPort:     6379,
	keyRedisPassword: "",
	keyStoreTimeout:  "5s",

	keyEmailBackend:    EmailMock,
	keyEmailSender:     "bogus@email.com",
	keyPostmarkBaseURL: "https://api.postmarkapp.com/",
	keyPostmarkToken:   "",
	keyEmailTimeout:    "10s",

	keyAllowedOrigins: []string{"http://localhost:8000"},
	keyAllowedMethods: "GET, POST, OPTIONS",
	keyAllowedHeaders: "Content-Type, Authorization",

	keyRateLimitEnabled: true,
	keyRateLimitRPS:     5.0,
}
