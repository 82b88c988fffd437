// Package kv provides the key-value blob port used by the prompt stores,
// with in-memory, file and Redis backends.
package kv

import (
	"context"
	"errors"
)

// Store is a string-keyed blob store. Values are opaque to the store.
// Get on a missing key returns found == false and a nil error; Remove of a
// missing key is not an error. Stores do not serialize read-modify-write
// cycles, callers do.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// ErrInvalidKey is returned for keys a backend cannot address.
var ErrInvalidKey = errors.New("kv: invalid key")
