// Package securestore layers the envelope codec over a key-value substrate.
// Values are stored either as plain JSON (legacy, pre-encryption) or as a
// sealed envelope; reads transparently upgrade plain values once a derived
// key is in scope (read-repair).
package securestore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/evolveua/queuevault/internal/client/kvstore"
	"github.com/evolveua/queuevault/internal/common"
	"github.com/evolveua/queuevault/internal/cryptox"
	"github.com/evolveua/queuevault/internal/logging"
)

// Kind tags the two shapes a stored value can take.
type Kind int

const (
	Plain Kind = iota
	Sealed
)

// StoredValue is the tagged variant behind a storage key: either raw JSON
// or an envelope. Exactly one of Raw/Envelope is set, per Kind.
type StoredValue struct {
	Kind     Kind
	Raw      json.RawMessage
	Envelope *cryptox.Envelope
}

// Decode classifies raw storage bytes into a StoredValue. An object carrying
// "enc":true is a sealed envelope; anything else is plain JSON.
func Decode(raw []byte) (StoredValue, error) {
	var probe struct {
		Encrypted bool `json:"enc"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.Encrypted {
		env := &cryptox.Envelope{}
		if err := json.Unmarshal(raw, env); err != nil {
			return StoredValue{}, fmt.Errorf("decode envelope: %w", err)
		}
		return StoredValue{Kind: Sealed, Envelope: env}, nil
	}
	if !json.Valid(raw) {
		return StoredValue{}, fmt.Errorf("stored value is not JSON: %w", common.ErrDecryptionFailed)
	}
	return StoredValue{Kind: Plain, Raw: json.RawMessage(raw)}, nil
}

// Store reads and writes sealed JSON values against a kvstore substrate.
// The derived key is bound at construction; a nil key means no protected
// data can be read or written until the user re-authenticates.
type Store struct {
	kv     kvstore.Store
	key    []byte
	logger logging.Logger
}

func New(kv kvstore.Store, key []byte, logger logging.Logger) *Store {
	return &Store{kv: kv, key: key, logger: logger.With("module", "securestore")}
}

// HasKey reports whether a derived key is in scope.
func (s *Store) HasKey() bool { return len(s.key) > 0 }

// Get loads the value behind storageKey into v.
//
// Sealed values require the derived key; without one the call fails with
// common.ErrKeyUnavailable ("cannot currently access", not "does not exist").
// Plain values are returned as-is and, when a key is available, rewritten
// sealed so subsequent reads are encrypted. The repair write is best-effort:
// its failure is logged and swallowed. Absent keys yield common.ErrNotFound.
func (s *Store) Get(ctx context.Context, storageKey string, v any) error {
	raw, err := s.kv.Get(ctx, storageKey)
	if err != nil {
		return err
	}

	sv, err := Decode(raw)
	if err != nil {
		return err
	}

	switch sv.Kind {
	case Sealed:
		if !s.HasKey() {
			return fmt.Errorf("open %q: %w", storageKey, common.ErrKeyUnavailable)
		}
		return cryptox.Open(s.key, sv.Envelope, v)

	default:
		if err := json.Unmarshal(sv.Raw, v); err != nil {
			return fmt.Errorf("decode plain %q: %w", storageKey, err)
		}
		s.repair(ctx, storageKey, sv.Raw)
		return nil
	}
}

// Set seals v and writes the envelope behind storageKey. It fails with
// common.ErrKeyUnavailable when no derived key is in scope.
func (s *Store) Set(ctx context.Context, storageKey string, v any) error {
	if !s.HasKey() {
		return fmt.Errorf("seal %q: %w", storageKey, common.ErrKeyUnavailable)
	}

	env, err := cryptox.Seal(s.key, v)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope %q: %w", storageKey, err)
	}
	return s.kv.Set(ctx, storageKey, raw)
}

// Remove deletes the value behind storageKey.
func (s *Store) Remove(ctx context.Context, storageKey string) error {
	return s.kv.Remove(ctx, storageKey)
}

// repair upgrades a plain value to a sealed envelope in place. Runs inline
// on the read path so a repair write can never interleave with a later
// user-initiated write to the same key.
func (s *Store) repair(ctx context.Context, storageKey string, raw json.RawMessage) {
	if !s.HasKey() {
		return
	}
	env, err := cryptox.Seal(s.key, raw)
	if err != nil {
		s.logger.Warn(ctx, "read-repair seal failed", "key", storageKey, "error", err)
		return
	}
	encoded, err := json.Marshal(env)
	if err != nil {
		s.logger.Warn(ctx, "read-repair encode failed", "key", storageKey, "error", err)
		return
	}
	if err := s.kv.Set(ctx, storageKey, encoded); err != nil {
		s.logger.Warn(ctx, "read-repair write failed", "key", storageKey, "error", err)
	}
}
