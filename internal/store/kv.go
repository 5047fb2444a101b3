// Package store provides the durable state store backing the temporal
// analysis engine. State is persisted as opaque JSON blobs under string
// keys; the engine treats a missing key the same as empty state.
package store

import "context"

// KV is the minimal key-value contract the engine persists through.
// Get returns (nil, nil) when the key has never been written.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
