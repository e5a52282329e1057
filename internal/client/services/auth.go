// Package services contains the client's business logic. This file covers
// authentication: registration, login with key derivation, session resume,
// and logout. All operations work against an explicit Session value instead
// of ambient globals, which keeps the crypto core independently testable.
package services

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/evolveua/queuevault/internal/client/kvstore"
	"github.com/evolveua/queuevault/internal/client/sessions"
	"github.com/evolveua/queuevault/internal/client/users"
	"github.com/evolveua/queuevault/internal/common"
	"github.com/evolveua/queuevault/internal/cryptox"
	"github.com/evolveua/queuevault/internal/logging"
)

// Volatile-store keys for the derived key material. These live only in the
// in-memory substrate: the key is never written to durable storage and must
// be re-derived from the password on the next login.
const (
	encKeyStorage = "queue_enc_key"
	encKeyUser    = "queue_enc_user"
)

const minPasswordLen = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Session is the authenticated context passed to every protected operation:
// the opaque token, the resolved user, and the derived key for this login.
type Session struct {
	Token string
	User  *users.User
	Key   []byte
}

type AuthService struct {
	users    *users.Repository
	sessions *sessions.Store
	volatile kvstore.Store
	logger   logging.Logger
}

func NewAuthService(u *users.Repository, s *sessions.Store, volatile kvstore.Store, logger logging.Logger) *AuthService {
	return &AuthService{
		users:    u,
		sessions: s,
		volatile: volatile,
		logger:   logger.With("module", "auth"),
	}
}

// Register validates the form input and creates a new account. The password
// is stored only as a one-way digest; the per-user salt is generated here,
// exactly once.
func (a *AuthService) Register(ctx context.Context, p users.NewUserParams) (*users.User, error) {
	if strings.TrimSpace(p.FullName) == "" || strings.TrimSpace(p.Email) == "" || p.Password == "" {
		return nil, fmt.Errorf("required field missing: %w", common.ErrValidation)
	}
	if len(p.Password) < minPasswordLen {
		return nil, fmt.Errorf("password shorter than %d characters: %w", minPasswordLen, common.ErrValidation)
	}
	if !emailPattern.MatchString(strings.TrimSpace(p.Email)) {
		return nil, fmt.Errorf("invalid email: %w", common.ErrValidation)
	}

	user, err := a.users.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	a.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the password digest, derives the encryption key, and opens
// a session. A user record predating encryption may lack a salt; one is
// generated and persisted before key derivation proceeds.
func (a *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("required field missing: %w", common.ErrValidation)
	}

	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", common.ErrUnauthorized)
		}
		return nil, err
	}

	candidate := cryptox.HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(user.PasswordHash)) != 1 {
		return nil, fmt.Errorf("wrong password: %w", common.ErrUnauthorized)
	}

	if user.CryptoSalt == "" {
		user.CryptoSalt = users.NewSalt()
		if err := a.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("salt backfill: %w", err)
		}
		a.logger.Info(ctx, "salt backfilled for legacy user", "user_id", user.ID)
	}

	salt, err := users.DecodeSalt(user.CryptoSalt)
	if err != nil {
		return nil, err
	}
	key := cryptox.DeriveKey([]byte(password), salt)

	token, err := a.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if err := a.stashKey(ctx, user.ID, key); err != nil {
		return nil, err
	}

	a.logger.Info(ctx, "login successful", "user_id", user.ID)
	return &Session{Token: token, User: user, Key: key}, nil
}

// ResumeSession rebuilds a Session from a stored token. The derived key must
// still be present in the volatile store and belong to the same user;
// otherwise the caller gets common.ErrKeyUnavailable and must force a fresh
// login (the key cannot be recovered without the password).
func (a *AuthService) ResumeSession(ctx context.Context, token string) (*Session, error) {
	sess, err := a.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("session expired: %w", common.ErrUnauthorized)
		}
		return nil, err
	}

	user, err := a.users.FindByID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("session user missing: %w", common.ErrUnauthorized)
	}

	key, err := a.loadKey(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, User: user, Key: key}, nil
}

// Logout invalidates the session and destroys the derived key.
func (a *AuthService) Logout(ctx context.Context, sess *Session) error {
	if sess == nil {
		return nil
	}
	if err := a.sessions.Invalidate(ctx, sess.Token); err != nil {
		return err
	}
	if err := a.volatile.Remove(ctx, encKeyStorage); err != nil {
		return err
	}
	if err := a.volatile.Remove(ctx, encKeyUser); err != nil {
		return err
	}
	common.WipeByteArray(sess.Key)
	sess.Key = nil
	a.logger.Info(ctx, "logout", "user_id", sess.User.ID)
	return nil
}

func (a *AuthService) stashKey(ctx context.Context, userID string, key []byte) error {
	encoded := base64.StdEncoding.EncodeToString(key)
	if err := a.volatile.Set(ctx, encKeyStorage, []byte(encoded)); err != nil {
		return err
	}
	return a.volatile.Set(ctx, encKeyUser, []byte(userID))
}

func (a *AuthService) loadKey(ctx context.Context, userID string) ([]byte, error) {
	owner, err := a.volatile.Get(ctx, encKeyUser)
	if err != nil || string(owner) != userID {
		return nil, fmt.Errorf("derived key not in scope: %w", common.ErrKeyUnavailable)
	}
	encoded, err := a.volatile.Get(ctx, encKeyStorage)
	if err != nil {
		return nil, fmt.Errorf("derived key not in scope: %w", common.ErrKeyUnavailable)
	}
	key, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return nil, fmt.Errorf("derived key corrupt: %w", common.ErrKeyUnavailable)
	}
	return key, nil
}

// SeedDemoAccount creates the demo user if it does not exist yet. Intended
// for local development databases.
func (a *AuthService) SeedDemoAccount(ctx context.Context) error {
	const demoEmail = "demo@example.com"

	if _, err := a.users.FindByEmail(ctx, demoEmail); err == nil {
		return nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	_, err := a.users.Create(ctx, users.NewUserParams{
		FullName: "Demo User",
		Email:    demoEmail,
		Phone:    "+61 (0) 000-00-00",
		Password: "demo123",
	})
	return err
}
