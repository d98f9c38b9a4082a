// Package localstate stores small key/value items the client must keep
// between runs, e.g. the session token.
package localstate

import "context"

// Repository is a persistent string key/value store.
// Get returns common.ErrNotFound for missing keys.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
