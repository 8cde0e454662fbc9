// Package metadata stores small key/value pairs for the CLI in the local
// sqlite database. The session tokens and the signed-in email live here.
package metadata

import (
	"context"
)

// Repository is a flat key/value store. Get returns (nil, nil) for an
// absent key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
