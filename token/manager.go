package token

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jrsteele09/auth-service/internal/secret"
	"github.com/jrsteele09/auth-service/users"
)

const (
	DefaultTokenTTL   = 10 * time.Minute
	DefaultCookieName = "jwt"
)

var (
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenRevoked          = errors.New("token has been revoked")
	ErrRevocationUnavailable = errors.New("revocation store unavailable")
)

// Claims carried by a session token. Subject is the user's email.
type Claims struct {
	jwt.RegisteredClaims
}

func (c *Claims) Email() string {
	return c.Subject
}

// Manager issues and validates session tokens and the cookies that carry them.
type Manager struct {
	signer       Signer
	revoked      RevokedTokenRepo
	tokenTTL     time.Duration
	cookieName   string
	secureCookie bool
	nowFunc      func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.tokenTTL = ttl
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithCookieName(name string) ManagerOption {
	return func(m *Manager) {
		m.cookieName = name
	}
}

// WithSecureCookie marks issued cookies Secure.
func WithSecureCookie(secure bool) ManagerOption {
	return func(m *Manager) {
		m.secureCookie = secure
	}
}

func New(signer Signer, revoked RevokedTokenRepo, options ...ManagerOption) (*Manager, error) {
	if signer == nil {
		return nil, errors.New("signer is required")
	}
	if revoked == nil {
		return nil, errors.New("revoked token repo is required")
	}

	m := &Manager{
		signer:     signer,
		revoked:    revoked,
		tokenTTL:   DefaultTokenTTL,
		cookieName: DefaultCookieName,
		nowFunc:    time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.tokenTTL <= 0 {
		return nil, fmt.Errorf("token TTL must be positive, got %s", m.tokenTTL)
	}
	return m, nil
}

func (m *Manager) TTL() time.Duration {
	return m.tokenTTL
}

// Issue mints a token for email that expires after the configured TTL.
func (m *Manager) Issue(email users.Email) (secret.String, error) {
	now := m.nowFunc()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := m.signer.Sign(claims)
	if err != nil {
		return secret.String{}, errors.Wrap(err, "issue token")
	}
	return secret.New(signed), nil
}

// Validate checks revocation before signature and expiry. A revocation
// store failure is reported as ErrRevocationUnavailable, never as a pass.
func (m *Manager) Validate(ctx context.Context, raw secret.String) (*Claims, error) {
	if raw.IsEmpty() {
		return nil, ErrInvalidToken
	}

	revoked, err := m.revoked.ContainsToken(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw.Expose(), claims, m.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{m.signer.GetSigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidToken, "parse: %v", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Cookie carries token to the browser.
func (m *Manager) Cookie(token secret.String) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    token.Expose(),
		Path:     "/",
		Expires:  m.nowFunc().Add(m.tokenTTL),
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie instructs the browser to drop the session cookie.
func (m *Manager) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) CookieName() string {
	return m.cookieName
}
