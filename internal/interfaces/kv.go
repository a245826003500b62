package interfaces

import (
	"context"
	"time"
)

// KeyValueStore is the shared store used for persisted carts and the
// published auto-apply campaign. Get returns an empty string without error
// when the key does not exist.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
