// Package redis stores pending 2FA challenges in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jrsteele09/auth-service/twofa"
	"github.com/jrsteele09/auth-service/users"
)

const KeyPrefix = "2FA:Tokens:Active"

var _ twofa.CodeRepo = (*CodeRepo)(nil)

// CodeRepo stores each challenge as a JSON pair ["<login attempt id>","<code>"]
// under KeyPrefix:<email>, expiring after ttl.
type CodeRepo struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

func NewCodeRepo(client goredis.UniversalClient, ttl time.Duration) *CodeRepo {
	if ttl <= 0 {
		ttl = twofa.DefaultCodeTTL
	}
	return &CodeRepo{client: client, ttl: ttl}
}

func key(email users.Email) string {
	return KeyPrefix + ":" + email.String()
}

func (r *CodeRepo) AddCode(ctx context.Context, email users.Email, id twofa.LoginAttemptID, code twofa.Code) error {
	payload, err := json.Marshal([2]string{id.String(), code.String()})
	if err != nil {
		return fmt.Errorf("[CodeRepo.AddCode] encode challenge: %w", err)
	}
	if err := r.client.Set(ctx, key(email), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("[CodeRepo.AddCode] redis set: %w", err)
	}
	return nil
}

func (r *CodeRepo) GetCode(ctx context.Context, email users.Email) (twofa.LoginAttemptID, twofa.Code, error) {
	data, err := r.client.Get(ctx, key(email)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return twofa.LoginAttemptID{}, twofa.Code{}, twofa.ErrCodeNotFound
	}
	if err != nil {
		return twofa.LoginAttemptID{}, twofa.Code{}, fmt.Errorf("[CodeRepo.GetCode] redis get: %w", err)
	}

	id, code, err := decodeChallenge(data)
	if err != nil {
		return twofa.LoginAttemptID{}, twofa.Code{}, fmt.Errorf("[CodeRepo.GetCode] %w", err)
	}
	return id, code, nil
}

func (r *CodeRepo) RemoveCode(ctx context.Context, email users.Email) error {
	n, err := r.client.Del(ctx, key(email)).Result()
	if err != nil {
		return fmt.Errorf("[CodeRepo.RemoveCode] redis del: %w", err)
	}
	if n == 0 {
		return twofa.ErrCodeNotFound
	}
	return nil
}

// ConsumeCode deletes the challenge inside a WATCH transaction, so a
// challenge replaced after it was read is left in place.
func (r *CodeRepo) ConsumeCode(ctx context.Context, email users.Email, id twofa.LoginAttemptID, code twofa.Code) error {
	k := key(email)
	err := r.client.Watch(ctx, func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, goredis.Nil) {
			return twofa.ErrCodeNotFound
		}
		if err != nil {
			return fmt.Errorf("redis get: %w", err)
		}
		storedID, storedCode, err := decodeChallenge(data)
		if err != nil {
			return err
		}
		if !(twofa.Challenge{LoginAttemptID: storedID, Code: storedCode}).Matches(id, code) {
			return twofa.ErrCodeMismatch
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Del(ctx, k)
			return nil
		})
		return err
	}, k)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, goredis.TxFailedErr):
		return twofa.ErrCodeNotFound
	case errors.Is(err, twofa.ErrCodeNotFound), errors.Is(err, twofa.ErrCodeMismatch):
		return err
	default:
		return fmt.Errorf("[CodeRepo.ConsumeCode] %w", err)
	}
}

func decodeChallenge(data []byte) (twofa.LoginAttemptID, twofa.Code, error) {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return twofa.LoginAttemptID{}, twofa.Code{}, fmt.Errorf("decode challenge: %w", err)
	}
	id, err := twofa.ParseLoginAttemptID(pair[0])
	if err != nil {
		return twofa.LoginAttemptID{}, twofa.Code{}, fmt.Errorf("stored challenge: %w", err)
	}
	code, err := twofa.ParseCode(pair[1])
	if err != nil {
		return twofa.LoginAttemptID{}, twofa.Code{}, fmt.Errorf("stored challenge: %w", err)
	}
	return id, code, nil
}
