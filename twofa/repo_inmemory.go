package twofa

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/auth-service/users"
)

const DefaultCodeTTL = 10 * time.Minute

var _ CodeRepo = (*InMemoryCodeRepo)(nil)

type pendingChallenge struct {
	challenge Challenge
	expiresAt time.Time
}

// InMemoryCodeRepo keeps challenges in a map. Expired entries are hidden on
// read and removed by Sweep.
type InMemoryCodeRepo struct {
	mu    sync.RWMutex
	codes map[users.Email]pendingChallenge
	ttl   time.Duration
	now   func() time.Time
}

type InMemoryOption func(*InMemoryCodeRepo)

func WithTTL(ttl time.Duration) InMemoryOption {
	return func(r *InMemoryCodeRepo) {
		r.ttl = ttl
	}
}

func WithNowFunc(now func() time.Time) InMemoryOption {
	return func(r *InMemoryCodeRepo) {
		r.now = now
	}
}

func NewInMemoryCodeRepo(opts ...InMemoryOption) *InMemoryCodeRepo {
	r := &InMemoryCodeRepo{
		codes: make(map[users.Email]pendingChallenge),
		ttl:   DefaultCodeTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *InMemoryCodeRepo) AddCode(_ context.Context, email users.Email, id LoginAttemptID, code Code) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codes[email] = pendingChallenge{
		challenge: Challenge{LoginAttemptID: id, Code: code},
		expiresAt: r.now().Add(r.ttl),
	}
	return nil
}

func (r *InMemoryCodeRepo) GetCode(_ context.Context, email users.Email) (LoginAttemptID, Code, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending, ok := r.codes[email]
	if !ok || !r.now().Before(pending.expiresAt) {
		return LoginAttemptID{}, Code{}, ErrCodeNotFound
	}
	return pending.challenge.LoginAttemptID, pending.challenge.Code, nil
}

func (r *InMemoryCodeRepo) RemoveCode(_ context.Context, email users.Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, ok := r.codes[email]
	if !ok {
		return ErrCodeNotFound
	}
	delete(r.codes, email)
	if !r.now().Before(pending.expiresAt) {
		return ErrCodeNotFound
	}
	return nil
}

func (r *InMemoryCodeRepo) ConsumeCode(_ context.Context, email users.Email, id LoginAttemptID, code Code) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, ok := r.codes[email]
	if !ok || !r.now().Before(pending.expiresAt) {
		return ErrCodeNotFound
	}
	if !pending.challenge.Matches(id, code) {
		return ErrCodeMismatch
	}
	delete(r.codes, email)
	return nil
}

// Len counts stored challenges, expired ones included.
func (r *InMemoryCodeRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// Sweep deletes expired challenges and returns how many were removed.
func (r *InMemoryCodeRepo) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for email, pending := range r.codes {
		if !now.Before(pending.expiresAt) {
			delete(r.codes, email)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is cancelled. A non-positive interval
// disables sweeping.
func (r *InMemoryCodeRepo) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		log.Warn().Dur("interval", interval).Msg("2FA code sweeper disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("swept expired 2FA codes")
			}
		}
	}
}
