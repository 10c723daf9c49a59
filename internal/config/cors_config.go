package config

import "strings"

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

func (c *mainConfig) GetAllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{}
	for _, o := range c.k.Strings(keyAllowedOrigins) {
		origins[strings.TrimRight(o, "/")] = nullValue{}
	}
	return origins
}

func (c *mainConfig) GetAllowedMethods() string {
	return c.k.String(keyAllowedMethods)
}

func (c *mainConfig) GetAllowedHeaders() string {
	return c.k.String(keyAllowedHeaders)
}
