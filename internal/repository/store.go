// Package repository persists companion state in a key-value store.
package repository

import "context"

// KVStore is a blob store with get/set/remove semantics.
type KVStore interface {
	// Get returns the value stored under key. found is false if the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)

	// Lifecycle
	Close() error
}
