// Package users stores account records in the durable key-value substrate
// under a single storage key, mirroring the shape the registration form app
// keeps in per-origin storage.
package users

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evolveua/queuevault/internal/client/kvstore"
	"github.com/evolveua/queuevault/internal/common"
	"github.com/evolveua/queuevault/internal/cryptox"
	"github.com/google/uuid"
)

// StorageKey is the key the user list lives behind.
const StorageKey = "queue_users"

type Repository struct {
	kv  kvstore.Store
	now func() time.Time
}

func NewRepository(kv kvstore.Store) *Repository {
	return &Repository{kv: kv, now: time.Now}
}

// NewUserParams is the input for Create. Email is stored lowercased;
// uniqueness is case-insensitive.
type NewUserParams struct {
	FullName string
	Email    string
	Phone    string
	Password string
}

// Create appends a new user with a fresh id, a one-time random salt, and
// the password digest. Duplicate email yields ErrValidation.
func (r *Repository) Create(ctx context.Context, p NewUserParams) (*User, error) {
	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(p.Email))
	for _, u := range all {
		if u.Email == email {
			return nil, fmt.Errorf("email already registered: %w", common.ErrValidation)
		}
	}

	user := User{
		ID:           uuid.NewString(),
		FullName:     p.FullName,
		Email:        email,
		Phone:        p.Phone,
		CryptoSalt:   NewSalt(),
		PasswordHash: cryptox.HashPassword(p.Password),
		CreatedAt:    r.now().UTC(),
	}

	all = append(all, user)
	if err := r.save(ctx, all); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail looks a user up case-insensitively. Absent users yield
// common.ErrNotFound.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for i := range all {
		if all[i].Email == email {
			u := all[i]
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

// FindByID returns the user with the given id or common.ErrNotFound.
func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			u := all[i]
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

// Update replaces the stored record with the same id.
func (r *Repository) Update(ctx context.Context, user *User) error {
	all, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == user.ID {
			all[i] = *user
			return r.save(ctx, all)
		}
	}
	return common.ErrNotFound
}

// NewSalt returns the base64 encoding of a fresh 16-byte salt.
func NewSalt() string {
	return base64.StdEncoding.EncodeToString(common.GenerateRandByteArray(cryptox.SaltSize))
}

// DecodeSalt turns the stored base64 salt back into bytes.
func DecodeSalt(salt string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	return b, nil
}

func (r *Repository) load(ctx context.Context) ([]User, error) {
	raw, err := r.kv.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var all []User
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("decode user list: %w", err)
	}
	return all, nil
}

func (r *Repository) save(ctx context.Context, all []User) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode user list: %w", err)
	}
	return r.kv.Set(ctx, StorageKey, raw)
}
