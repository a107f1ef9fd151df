package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Provider supplies the catalog used for one invocation.
type Provider interface {
	Current(ctx context.Context) (*Catalog, error)
}

// Static always returns the same catalog.
type Static struct {
	catalog *Catalog
}

func NewStatic(c *Catalog) *Static {
	return &Static{catalog: c}
}

func (s *Static) Current(context.Context) (*Catalog, error) {
	return s.catalog, nil
}

// KV is the subset of the Redis client the catalog source needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// RedisSource reads the catalog from a Redis key and caches it for the
// refresh interval, so a fleet of workers picks up a new flag list without a
// redeploy. Concurrent refreshes collapse into one read; on a read failure
// the last good catalog (or the fallback) stays in use.
type RedisSource struct {
	kv       KV
	key      string
	interval time.Duration
	fallback *Catalog
	isNil    func(error) bool
	now      func() time.Time

	mu        sync.RWMutex
	current   *Catalog
	fetchedAt time.Time

	group  singleflight.Group
	logger *slog.Logger
}

// NewRedisSource builds a source. isNil reports whether an error from kv
// means the key is absent.
func NewRedisSource(kv KV, key string, interval time.Duration, fallback *Catalog, isNil func(error) bool) *RedisSource {
	return &RedisSource{
		kv:       kv,
		key:      key,
		interval: interval,
		fallback: fallback,
		isNil:    isNil,
		now:      time.Now,
		logger:   slog.Default().With("component", "catalog-source", "key", key),
	}
}

func (r *RedisSource) Current(ctx context.Context) (*Catalog, error) {
	r.mu.RLock()
	cur, fetchedAt := r.current, r.fetchedAt
	r.mu.RUnlock()
	if cur != nil && r.now().Sub(fetchedAt) < r.interval {
		return cur, nil
	}

	v, err, _ := r.group.Do(r.key, func() (interface{}, error) {
		return r.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Catalog), nil
}

func (r *RedisSource) refresh(ctx context.Context) (*Catalog, error) {
	r.mu.RLock()
	last := r.current
	r.mu.RUnlock()

	loaded, err := r.load(ctx)
	if err != nil {
		switch {
		case last != nil:
			r.logger.Warn("catalog refresh failed, keeping previous version", "version", last.Version(), "error", err)
			r.store(last)
			return last, nil
		case r.fallback != nil:
			r.logger.Warn("catalog unavailable, using fallback", "version", r.fallback.Version(), "error", err)
			r.store(r.fallback)
			return r.fallback, nil
		default:
			return nil, err
		}
	}
	if last == nil || last.Version() != loaded.Version() {
		r.logger.Info("catalog loaded", "version", loaded.Version(), "terms", loaded.Len())
	}
	r.store(loaded)
	return loaded, nil
}

func (r *RedisSource) load(ctx context.Context) (*Catalog, error) {
	raw, err := r.kv.Get(ctx, r.key)
	if err != nil {
		if r.isNil != nil && r.isNil(err) {
			return nil, fmt.Errorf("catalog key %s not set", r.key)
		}
		return nil, fmt.Errorf("reading catalog key %s: %w", r.key, err)
	}
	var c Catalog
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("decoding catalog key %s: %w", r.key, err)
	}
	return &c, nil
}

func (r *RedisSource) store(c *Catalog) {
	r.mu.Lock()
	r.current = c
	r.fetchedAt = r.now()
	r.mu.Unlock()
}

// Publish writes c under key with no expiry.
func Publish(ctx context.Context, kv KV, key string, c *Catalog) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if err := kv.Set(ctx, key, data, 0); err != nil {
		return fmt.Errorf("writing catalog key %s: %w", key, err)
	}
	return nil
}
