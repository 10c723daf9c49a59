package main

import (
	"context"
	"fmt"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/samber/oops"

	"github.com/jrsteele09/auth-service/auth"
	"github.com/jrsteele09/auth-service/email"
	"github.com/jrsteele09/auth-service/internal/config"
	"github.com/jrsteele09/auth-service/token"
	tokenredis "github.com/jrsteele09/auth-service/token/redis"
	"github.com/jrsteele09/auth-service/twofa"
	twofaredis "github.com/jrsteele09/auth-service/twofa/redis"
	"github.com/jrsteele09/auth-service/users"
	"github.com/jrsteele09/auth-service/users/postgres"
)

// cleanups runs registered release functions in reverse order.
type cleanups []func()

func (c *cleanups) add(f func()) {
	*c = append(*c, f)
}

func (c cleanups) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// newService builds the stores, token manager and email client selected by
// cfg. In-memory stores get a sweeper that stops when ctx is cancelled. The
// returned function releases every connection that was opened.
func newService(ctx context.Context, cfg config.Config) (*auth.Service, func(), error) {
	var closers cleanups
	fail := func(err error) (*auth.Service, func(), error) {
		closers.run()
		return nil, func() {}, err
	}

	policy, err := users.NewPasswordPolicy(cfg.GetPasswordPolicy(), cfg.GetPasswordMinLength())
	if err != nil {
		return fail(err)
	}
	hasher := users.NewArgon2idHasher()

	userRepo, err := newUserRepo(ctx, cfg, hasher, &closers)
	if err != nil {
		return fail(err)
	}
	revoked, codes, err := newTokenStores(ctx, cfg, &closers)
	if err != nil {
		return fail(err)
	}
	emailClient, err := newEmailClient(cfg)
	if err != nil {
		return fail(err)
	}

	signer, err := token.NewHMACSigner(cfg.GetJWTSecret().Expose())
	if err != nil {
		return fail(err)
	}
	tokens, err := token.New(signer, revoked,
		token.WithTokenTTL(cfg.GetTokenTTL()),
		token.WithCookieName(cfg.GetCookieName()),
		token.WithSecureCookie(cfg.GetCookieSecure()),
	)
	if err != nil {
		return fail(err)
	}

	repos := auth.Repos{
		Users:         userRepo,
		RevokedTokens: revoked,
		TwoFACodes:    codes,
	}
	svc, err := auth.NewService(repos, tokens, emailClient, hasher, auth.WithPasswordPolicy(policy))
	if err != nil {
		return fail(err)
	}
	return svc, closers.run, nil
}

func newUserRepo(ctx context.Context, cfg config.Config, hasher users.PasswordHasher, closers *cleanups) (users.UserRepo, error) {
	switch cfg.GetUserBackend() {
	case config.BackendMemory:
		log.Warn().Msg("using in-memory user store; users are lost on restart")
		return users.NewInMemoryUserRepo(hasher), nil
	case config.BackendPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.GetStoreTimeout())
		defer cancel()
		pool, err := postgres.Connect(connectCtx, cfg.GetDatabaseURL().Expose())
		if err != nil {
			return nil, oops.With("backend", config.BackendPostgres).Wrapf(err, "connect user store")
		}
		closers.add(pool.Close)
		return postgres.NewUserRepository(pool, hasher), nil
	default:
		return nil, fmt.Errorf("unknown user store %q", cfg.GetUserBackend())
	}
}

func newTokenStores(ctx context.Context, cfg config.Config, closers *cleanups) (token.RevokedTokenRepo, twofa.CodeRepo, error) {
	switch cfg.GetTokenBackend() {
	case config.BackendMemory:
		revoked := token.NewInMemoryRevokedTokenRepo(token.WithRetention(cfg.GetBannedTokenTTL()))
		codes := twofa.NewInMemoryCodeRepo(twofa.WithTTL(cfg.GetTwoFACodeTTL()))
		go revoked.Run(ctx, cfg.GetSweepInterval())
		go codes.Run(ctx, cfg.GetSweepInterval())
		return revoked, codes, nil
	case config.BackendRedis:
		client, err := newRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		closers.add(func() {
			if err := client.Close(); err != nil {
				log.Err(err).Msg("close redis client")
			}
		})
		return tokenredis.NewRevokedTokenRepo(client, cfg.GetBannedTokenTTL()),
			twofaredis.NewCodeRepo(client, cfg.GetTwoFACodeTTL()),
			nil
	default:
		return nil, nil, fmt.Errorf("unknown token store %q", cfg.GetTokenBackend())
	}
}

func newRedisClient(ctx context.Context, cfg config.StoreConfig) (*goredis.Client, error) {
	timeout := cfg.GetStoreTimeout()
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.GetRedisPassword().Expose(),
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.Code("REDIS_CONNECT_FAILED").With("addr", cfg.GetRedisAddr()).Wrap(err)
	}
	return client, nil
}

func newEmailClient(cfg config.EmailConfig) (email.Client, error) {
	switch cfg.GetEmailBackend() {
	case config.EmailMock:
		return email.NewMockClient(), nil
	case config.EmailPostmark:
		sender, err := users.ParseEmail(cfg.GetEmailSender())
		if err != nil {
			return nil, fmt.Errorf("email sender: %w", err)
		}
		client, err := email.NewPostmarkClient(
			cfg.GetPostmarkBaseURL(),
			sender,
			cfg.GetPostmarkAuthToken(),
			email.WithHTTPClient(&http.Client{Timeout: cfg.GetEmailTimeout()}),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown email client %q", cfg.GetEmailBackend())
	}
}
