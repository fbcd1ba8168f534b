package credentials

import (
	"context"
	"sync"
	"time"
)

// Value is an immutable credential snapshot. A single request must be
// canonicalized and signed with one Value even if the provider rotates
// between calls.
type Value struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// Expiration is the instant after which the snapshot is no longer valid.
	// The zero value means the credentials never expire.
	Expiration time.Time
}

// IsExpired reports whether the snapshot has passed its expiration.
func (v Value) IsExpired() bool {
	return !v.Expiration.IsZero() && time.Now().After(v.Expiration)
}

// HasKeys reports whether both key halves are present.
func (v Value) HasKeys() bool {
	return v.AccessKeyID != "" && v.SecretAccessKey != ""
}

// Provider is the capability the signing pipeline reads credentials through.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Retrieve returns the current credential snapshot.
	Retrieve(ctx context.Context) (Value, error)
}

// Cache wraps a Provider and re-retrieves only once the cached snapshot
// expires. Concurrent callers during a refresh are serialized so the
// underlying provider sees a single Retrieve.
type Cache struct {
	provider Provider

	mu    sync.Mutex
	value Value
	valid bool
}

// NewCache returns a caching wrapper around provider.
func NewCache(provider Provider) *Cache {
	return &Cache{provider: provider}
}

// Retrieve returns the cached snapshot, refreshing it from the wrapped
// provider when absent or expired.
func (c *Cache) Retrieve(ctx context.Context) (Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && !c.value.IsExpired() {
		return c.value, nil
	}
	v, err := c.provider.Retrieve(ctx)
	if err != nil {
		return Value{}, err
	}
	c.value = v
	c.valid = true
	return v, nil
}

// Invalidate discards the cached snapshot, forcing the next Retrieve to hit
// the wrapped provider.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}
