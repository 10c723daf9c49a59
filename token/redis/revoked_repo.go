// Package redis stores revoked session tokens in Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jrsteele09/auth-service/internal/secret"
	"github.com/jrsteele09/auth-service/token"
)

const (
	KeyPrefix = "2FA:Tokens:Banned"
	scanCount = 100
)

var _ token.RevokedTokenRepo = (*RevokedTokenRepo)(nil)

// RevokedTokenRepo stores KeyPrefix:<fingerprint> with a TTL equal to the
// retention period.
type RevokedTokenRepo struct {
	client    goredis.UniversalClient
	retention time.Duration
}

func NewRevokedTokenRepo(client goredis.UniversalClient, retention time.Duration) *RevokedTokenRepo {
	if retention <= 0 {
		retention = token.DefaultRetention
	}
	return &RevokedTokenRepo{client: client, retention: retention}
}

func key(tok secret.String) string {
	return KeyPrefix + ":" + token.Fingerprint(tok)
}

func (r *RevokedTokenRepo) AddToken(ctx context.Context, tok secret.String) error {
	if tok.IsEmpty() {
		return token.ErrBlankToken
	}
	if err := r.client.Set(ctx, key(tok), 1, r.retention).Err(); err != nil {
		return fmt.Errorf("[RevokedTokenRepo.AddToken] redis set: %w", err)
	}
	return nil
}

func (r *RevokedTokenRepo) ContainsToken(ctx context.Context, tok secret.String) (bool, error) {
	if tok.IsEmpty() {
		return false, nil
	}
	n, err := r.client.Exists(ctx, key(tok)).Result()
	if err != nil {
		return false, fmt.Errorf("[RevokedTokenRepo.ContainsToken] redis exists: %w", err)
	}
	return n > 0, nil
}

func (r *RevokedTokenRepo) DeleteToken(ctx context.Context, tok secret.String) error {
	if tok.IsEmpty() {
		return token.ErrBlankToken
	}
	if err := r.client.Del(ctx, key(tok)).Err(); err != nil {
		return fmt.Errorf("[RevokedTokenRepo.DeleteToken] redis del: %w", err)
	}
	return nil
}

// Clear is not offered against a shared Redis.
func (r *RevokedTokenRepo) Clear(context.Context) error {
	return token.ErrNotSupported
}

func (r *RevokedTokenRepo) Count(ctx context.Context) (int64, error) {
	var (
		cursor uint64
		total  int64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, KeyPrefix+":*", scanCount).Result()
		if err != nil {
			return 0, fmt.Errorf("[RevokedTokenRepo.Count] redis scan: %w", err)
		}
		total += int64(len(keys))
		cursor = next
		if cursor == 0 {
			return total, nil
		}
	}
}
