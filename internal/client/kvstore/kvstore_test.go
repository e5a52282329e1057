package kvstore

import (
	"context"
	"errors"
	"testing"

	"github.com/evolveua/queuevault/internal/common"
	"github.com/stretchr/testify/require"
)

func TestMemStore_Basic(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	_, err := s.Get(ctx, "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v1" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	// last write wins
	if err := s.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _ = s.Get(ctx, "k")
	if string(got) != "v2" {
		t.Fatalf("Get after overwrite = %q", got)
	}

	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after Remove, got %v", err)
	}
}

func TestMemStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.Set(ctx, "k", []byte("abc")))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'x'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, "file:kvstore_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLiteStore(db)

	_, err = s.Get(ctx, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, s.Set(ctx, "queue_users", []byte(`[]`)))
	got, err := s.Get(ctx, "queue_users")
	require.NoError(t, err)
	require.Equal(t, []byte(`[]`), got)

	require.NoError(t, s.Set(ctx, "queue_users", []byte(`[{"id":"u1"}]`)))
	got, err = s.Get(ctx, "queue_users")
	require.NoError(t, err)
	require.Equal(t, []byte(`[{"id":"u1"}]`), got)

	require.NoError(t, s.Remove(ctx, "queue_users"))
	_, err = s.Get(ctx, "queue_users")
	require.ErrorIs(t, err, common.ErrNotFound)
}
