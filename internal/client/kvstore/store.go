// Package kvstore provides the storage substrates of the client: a durable
// per-origin key-value store backed by SQLite and a volatile in-memory store
// with the lifetime of the process, used for the derived encryption key.
package kvstore

import "context"

// Store is the minimal key-value contract the core relies on. Absent keys
// yield common.ErrNotFound. Single-key Set is the only atomicity primitive.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
