// Package cache provides byte-oriented key/value stores with TTL and a typed
// read-through helper shared by the read services.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Loader wraps a Store with a default TTL and per-key load deduplication.
type Loader struct {
	store     Store
	ttl       time.Duration
	namespace string
	flight    singleflight.Group
}

func NewLoader(store Store, ttl time.Duration, namespace string) *Loader {
	if ttl <= 0 {
		ttl = time.Minute
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = "quantfoot"
	}
	return &Loader{store: store, ttl: ttl, namespace: namespace}
}

func (l *Loader) Key(parts ...string) string {
	if l == nil {
		return strings.Join(parts, ":")
	}
	safe := make([]string, 0, len(parts)+1)
	safe = append(safe, l.namespace)
	for _, p := range parts {
		safe = append(safe, strings.NewReplacer(" ", "_", ":", "_").Replace(p))
	}
	return strings.Join(safe, ":")
}

// Invalidate drops every key under the loader namespace.
func (l *Loader) Invalidate(ctx context.Context) error {
	if l == nil || l.store == nil {
		return nil
	}
	return l.store.DeletePrefix(ctx, l.namespace+":")
}

// GetOrLoad returns the cached value for key or calls load and caches its result.
// Store failures are treated as misses; corrupted entries are reloaded.
func GetOrLoad[T any](ctx context.Context, l *Loader, key string, load func(context.Context) (T, error)) (T, error) {
	if l == nil || l.store == nil {
		return load(ctx)
	}

	if raw, err := l.store.Get(ctx, key); err == nil {
		var out T
		if err := sonic.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
	}

	v, err, _ := l.flight.Do(key, func() (any, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if raw, err := sonic.Marshal(loaded); err == nil {
			_ = l.store.Set(ctx, key, raw, l.ttl)
		}
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: unexpected loaded type %T", v)
	}
	return out, nil
}
