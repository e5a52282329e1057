// Package sessions maps opaque tokens to user ids with a fixed expiry.
// The session map is the browser-storage analog of the app's single global
// token table: one JSON object behind one storage key.
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/evolveua/queuevault/internal/client/kvstore"
	"github.com/evolveua/queuevault/internal/common"
)

// StorageKey is the key the session map lives behind.
const StorageKey = "user_sessions"

// DefaultTTL is the fixed session lifetime.
const DefaultTTL = 7 * 24 * time.Hour

// Session is the durable proof of "who is logged in".
type Session struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store manages the token map. Multiple concurrent sessions per user are
// allowed; there is no single-session constraint.
type Store struct {
	kv  kvstore.Store
	ttl time.Duration
	now func() time.Time
}

func NewStore(kv kvstore.Store) *Store {
	return &Store{kv: kv, ttl: DefaultTTL, now: time.Now}
}

// Create records a new session for userID and returns its token. Tokens are
// 32 random bytes hex-encoded; guessing one is infeasible.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", fmt.Errorf("create session token: %w", err)
	}

	all, err := s.load(ctx)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	all[token] = Session{
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.save(ctx, all); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the session behind token. An expired session is purged
// and reported as absent (common.ErrNotFound), never as an error state.
func (s *Store) Resolve(ctx context.Context, token string) (*Session, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	sess, ok := all[token]
	if !ok {
		return nil, common.ErrNotFound
	}

	if !s.now().Before(sess.ExpiresAt) {
		delete(all, token)
		if err := s.save(ctx, all); err != nil {
			return nil, err
		}
		return nil, common.ErrNotFound
	}

	return &sess, nil
}

// Invalidate removes the session behind token. Unknown tokens are a no-op.
func (s *Store) Invalidate(ctx context.Context, token string) error {
	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := all[token]; !ok {
		return nil
	}
	delete(all, token)
	return s.save(ctx, all)
}

func (s *Store) load(ctx context.Context) (map[string]Session, error) {
	raw, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return map[string]Session{}, nil
		}
		return nil, err
	}
	all := map[string]Session{}
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("decode session map: %w", err)
	}
	return all, nil
}

func (s *Store) save(ctx context.Context, all map[string]Session) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode session map: %w", err)
	}
	return s.kv.Set(ctx, StorageKey, raw)
}
