package metadata

import (
	"context"
)

// Repository is the string key/value store backing the vault. Values are
// opaque to it: JSON documents or hex-encoded ciphertext, the callers decide.
//
// Get returns common.ErrorNotFound when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error

	// WithinTx runs fn against a repository bound to a single transaction.
	// If fn returns an error, none of its writes become visible.
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}
