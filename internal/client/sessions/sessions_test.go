package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/evolveua/queuevault/internal/client/kvstore"
	"github.com/evolveua/queuevault/internal/common"
	"github.com/stretchr/testify/require"
)

func newStoreAt(t0 time.Time) (*Store, *time.Time) {
	clock := t0
	s := NewStore(kvstore.NewMemStore())
	s.now = func() time.Time { return clock }
	return s, &clock
}

func TestCreateResolve(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s, _ := newStoreAt(t0)

	token, err := s.Create(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, token, 64) // 32 random bytes, hex

	sess, err := s.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "user-1", sess.UserID)
	require.Equal(t, t0.Add(DefaultTTL), sess.ExpiresAt)
}

func TestResolve_UnknownToken(t *testing.T) {
	ctx := context.Background()
	s, _ := newStoreAt(time.Now())

	_, err := s.Resolve(ctx, "deadbeef")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestResolve_ExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s, clock := newStoreAt(t0)

	token, err := s.Create(ctx, "user-1")
	require.NoError(t, err)

	// Just inside the 7-day lifetime.
	*clock = t0.Add(7*24*time.Hour - time.Minute)
	sess, err := s.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "user-1", sess.UserID)

	// Just past it: absent, and purged.
	*clock = t0.Add(7*24*time.Hour + time.Minute)
	_, err = s.Resolve(ctx, token)
	require.ErrorIs(t, err, common.ErrNotFound)

	// Purge is durable: resolving again before the original expiry window
	// still reports absent.
	*clock = t0
	_, err = s.Resolve(ctx, token)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestMultipleSessionsPerUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newStoreAt(time.Now())

	tok1, err := s.Create(ctx, "user-1")
	require.NoError(t, err)
	tok2, err := s.Create(ctx, "user-1")
	require.NoError(t, err)
	require.NotEqual(t, tok1, tok2)

	_, err = s.Resolve(ctx, tok1)
	require.NoError(t, err)
	_, err = s.Resolve(ctx, tok2)
	require.NoError(t, err)
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	s, _ := newStoreAt(time.Now())

	token, err := s.Create(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, s.Invalidate(ctx, token))
	_, err = s.Resolve(ctx, token)
	require.ErrorIs(t, err, common.ErrNotFound)

	// Unknown token invalidation is a no-op.
	require.NoError(t, s.Invalidate(ctx, "unknown"))
}
