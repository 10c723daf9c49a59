package config

type RateLimitConfig interface {
	GetEnableRateLimiting() bool
	// GetRateLimit is the number of credential requests per second allowed
	// from one client IP.
	GetRateLimit() float64
}

func (c *mainConfig) GetEnableRateLimiting() bool {
	return c.k.Bool(keyRateLimitEnabled)
}

func (c *mainConfig) GetRateLimit() float64 {
	return c.k.Float64(keyRateLimitRPS)
}
