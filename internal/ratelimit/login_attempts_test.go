package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, max int) (*LoginAttempts, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewLoginAttempts(client, LoginAttemptsConfig{MaxAttempts: max, Window: time.Minute}), mr
}

func TestLoginAttemptsLimitsAfterBudget(t *testing.T) {
	ctx := context.Background()
	l, _ := newLimiter(t, 3)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Check(ctx, "alice", "10.0.0.1"))
		require.NoError(t, l.RecordFailure(ctx, "alice", "10.0.0.1"))
	}
	require.ErrorIs(t, l.Check(ctx, "alice", "10.0.0.1"), ErrLimited)
	require.ErrorIs(t, l.Check(ctx, "ALICE ", "10.0.0.2"), ErrLimited)
}

func TestLoginAttemptsIPCounterSpansIdentities(t *testing.T) {
	ctx := context.Background()
	l, _ := newLimiter(t, 2)

	require.NoError(t, l.RecordFailure(ctx, "alice", "10.0.0.9"))
	require.NoError(t, l.RecordFailure(ctx, "bob", "10.0.0.9"))

	require.ErrorIs(t, l.Check(ctx, "carol", "10.0.0.9"), ErrLimited)
	require.NoError(t, l.Check(ctx, "carol", "10.0.0.10"))
}

func TestLoginAttemptsResetClearsIdentity(t *testing.T) {
	ctx := context.Background()
	l, mr := newLimiter(t, 5)

	require.NoError(t, l.RecordFailure(ctx, "alice", ""))
	require.NoError(t, l.RecordFailure(ctx, "alice", ""))
	n, err := mr.Get(identityKey("alice"))
	require.NoError(t, err)
	require.Equal(t, "2", n)

	require.NoError(t, l.Reset(ctx, "alice"))
	require.False(t, mr.Exists(identityKey("alice")))
}

func TestLoginAttemptsWindowExpires(t *testing.T) {
	ctx := context.Background()
	l, mr := newLimiter(t, 1)

	require.NoError(t, l.RecordFailure(ctx, "alice", ""))
	require.ErrorIs(t, l.Check(ctx, "alice", ""), ErrLimited)

	mr.FastForward(2 * time.Minute)
	require.NoError(t, l.Check(ctx, "alice", ""))
}

func TestLoginAttemptsRedisDown(t *testing.T) {
	ctx := context.Background()
	l, mr := newLimiter(t, 3)
	mr.Close()

	require.ErrorIs(t, l.Check(ctx, "alice", ""), ErrUnavailable)
	require.ErrorIs(t, l.RecordFailure(ctx, "alice", ""), ErrUnavailable)
}

func TestLoginAttemptsDisabled(t *testing.T) {
	ctx := context.Background()
	l, _ := newLimiter(t, 0)
	for i := 0; i < 10; i++ {
		require.NoError(t, l.RecordFailure(ctx, "alice", ""))
	}
	require.NoError(t, l.Check(ctx, "alice", ""))
}
