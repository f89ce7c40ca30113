package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// JSON caches loader results as JSON under versioned keys. Bumping the
// version orphans every key of the namespace at once; they expire by TTL.
type JSON struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewJSON builds a cache for namespace. A nil client or a zero ttl disables
// caching: every fetch calls the loader.
func NewJSON(client *redis.Client, namespace string, ttl time.Duration) *JSON {
	return &JSON{client: client, namespace: namespace, ttl: ttl}
}

func (c *JSON) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func (c *JSON) versionKey() string {
	return c.namespace + ":version"
}

// Version returns the current namespace version, starting at 1.
func (c *JSON) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, c.versionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, c.versionKey(), 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, c.versionKey()).Int64()
	}
	return ver, err
}

// Key composes a versioned key from parts.
func (c *JSON) Key(ctx context.Context, parts ...string) (string, error) {
	if c == nil {
		return strings.Join(parts, ":"), nil
	}
	joined := c.namespace + ":" + strings.Join(parts, ":")
	if !c.enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// Fetch decodes the cached value at key into dest, or runs loader and stores
// its result. Redis failures fall back to the loader.
func (c *JSON) Fetch(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c.enabled() {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil && json.Unmarshal(payload, dest) == nil {
			return nil
		}
	}
	return c.load(ctx, key, dest, loader, c.enabled())
}

// Lookup is Fetch under the versioned key for parts. When the version cannot
// be read the loader runs uncached.
func (c *JSON) Lookup(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error {
	key, err := c.Key(ctx, parts...)
	if err != nil {
		if loader == nil {
			return errors.New("cache: loader required")
		}
		return c.load(ctx, "", dest, loader, false)
	}
	return c.Fetch(ctx, key, dest, loader)
}

func (c *JSON) load(ctx context.Context, key string, dest any, loader func(context.Context) (any, error), store bool) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if store {
		_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	}
	return json.Unmarshal(raw, dest)
}

// Bump moves the namespace to a new version.
func (c *JSON) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Incr(ctx, c.versionKey()).Err()
}
