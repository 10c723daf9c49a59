package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jrsteele09/auth-service/internal/secret"
	"github.com/jrsteele09/auth-service/token"
)

func TestInMemoryRevokedTokenRepo(t *testing.T) {
	ctx := context.Background()
	repo := token.NewInMemoryRevokedTokenRepo()
	tok := secret.New("header.payload.signature")

	require.ErrorIs(t, repo.AddToken(ctx, secret.New("")), token.ErrBlankToken)
	require.ErrorIs(t, repo.DeleteToken(ctx, secret.New("")), token.ErrBlankToken)

	found, err := repo.ContainsToken(ctx, tok)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, repo.AddToken(ctx, tok))
	found, err = repo.ContainsToken(ctx, tok)
	require.NoError(t, err)
	require.True(t, found)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	require.NoError(t, repo.DeleteToken(ctx, tok))
	found, err = repo.ContainsToken(ctx, tok)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, repo.AddToken(ctx, tok))
	require.NoError(t, repo.AddToken(ctx, secret.New("other")))
	require.NoError(t, repo.Clear(ctx))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestInMemoryRevokedTokenRepo_Retention(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	repo := token.NewInMemoryRevokedTokenRepo(
		token.WithRetention(time.Hour),
		token.WithRevocationClock(clock.Now),
	)
	tok := secret.New("header.payload.signature")
	require.NoError(t, repo.AddToken(ctx, tok))

	clock.now = clock.now.Add(59 * time.Minute)
	found, err := repo.ContainsToken(ctx, tok)
	require.NoError(t, err)
	require.True(t, found)
	require.Zero(t, repo.Cleanup())

	clock.now = clock.now.Add(2 * time.Minute)
	found, err = repo.ContainsToken(ctx, tok)
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, 1, repo.Cleanup())
}

func TestInMemoryRevokedTokenRepo_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := token.NewInMemoryRevokedTokenRepo(token.WithRetention(time.Millisecond))
	require.NoError(t, repo.AddToken(context.Background(), secret.New("tok")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		repo.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		n, _ := repo.Count(context.Background())
		return n == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestFingerprint(t *testing.T) {
	fp := token.Fingerprint(secret.New("abc"))
	require.Len(t, fp, 64)
	require.Equal(t, fp, token.Fingerprint(secret.New("abc")))
	require.NotEqual(t, fp, token.Fingerprint(secret.New("abd")))
	require.NotContains(t, fp, "abc")
}

func TestInMemoryRevokedTokenRepo_RunNonPositiveInterval(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := token.NewInMemoryRevokedTokenRepo()
	for _, interval := range []time.Duration{0, -time.Second} {
		require.NotPanics(t, func() { repo.Run(context.Background(), interval) })
	}
}
