package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/auth-service/internal/secret"
)

// DefaultRetention keeps a revoked token listed for longer than any token
// issued with the default TTL can live.
const DefaultRetention = 2 * time.Hour

var (
	ErrBlankToken   = errors.New("token is blank")
	ErrNotSupported = errors.New("operation not supported by this store")
)

// RevokedTokenRepo records tokens that were logged out before expiry.
type RevokedTokenRepo interface {
	AddToken(ctx context.Context, token secret.String) error
	ContainsToken(ctx context.Context, token secret.String) (bool, error)
	DeleteToken(ctx context.Context, token secret.String) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// Fingerprint is the hex SHA-256 of the token. Stores key on it so raw
// tokens are never persisted.
func Fingerprint(token secret.String) string {
	sum := sha256.Sum256([]byte(token.Expose()))
	return hex.EncodeToString(sum[:])
}

var _ RevokedTokenRepo = (*InMemoryRevokedTokenRepo)(nil)

// InMemoryRevokedTokenRepo maps token fingerprints to the time they can be
// forgotten.
type InMemoryRevokedTokenRepo struct {
	revoked   map[string]time.Time
	mu        sync.RWMutex
	retention time.Duration
	now       func() time.Time
}

type RevocationOption func(*InMemoryRevokedTokenRepo)

func WithRetention(retention time.Duration) RevocationOption {
	return func(r *InMemoryRevokedTokenRepo) {
		r.retention = retention
	}
}

func WithRevocationClock(now func() time.Time) RevocationOption {
	return func(r *InMemoryRevokedTokenRepo) {
		r.now = now
	}
}

func NewInMemoryRevokedTokenRepo(opts ...RevocationOption) *InMemoryRevokedTokenRepo {
	r := &InMemoryRevokedTokenRepo{
		revoked:   make(map[string]time.Time),
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *InMemoryRevokedTokenRepo) AddToken(_ context.Context, token secret.String) error {
	if token.IsEmpty() {
		return ErrBlankToken
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[Fingerprint(token)] = r.now().Add(r.retention)
	return nil
}

func (r *InMemoryRevokedTokenRepo) ContainsToken(_ context.Context, token secret.String) (bool, error) {
	if token.IsEmpty() {
		return false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	until, exists := r.revoked[Fingerprint(token)]
	return exists && r.now().Before(until), nil
}

func (r *InMemoryRevokedTokenRepo) DeleteToken(_ context.Context, token secret.String) error {
	if token.IsEmpty() {
		return ErrBlankToken
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.revoked, Fingerprint(token))
	return nil
}

func (r *InMemoryRevokedTokenRepo) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked = make(map[string]time.Time)
	return nil
}

// Count includes entries past retention that have not been swept yet.
func (r *InMemoryRevokedTokenRepo) Count(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.revoked)), nil
}

// Cleanup removes entries past their retention and returns how many went.
func (r *InMemoryRevokedTokenRepo) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	removed := 0
	for fp, until := range r.revoked {
		if !now.Before(until) {
			delete(r.revoked, fp)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until ctx is cancelled. A non-positive
// interval disables cleanup.
func (r *InMemoryRevokedTokenRepo) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		log.Warn().Dur("interval", interval).Msg("revoked token sweeper disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Cleanup(); n > 0 {
				log.Debug().Int("removed", n).Msg("swept expired revoked tokens")
			}
		}
	}
}
