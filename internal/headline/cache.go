package headline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mohammad-safakhou/localseo/internal/metrics"
	"github.com/mohammad-safakhou/localseo/models"
	"github.com/mohammad-safakhou/localseo/repository"
	"golang.org/x/sync/singleflight"
)

// ErrEmptySet is returned when a generator yields no headlines.
var ErrEmptySet = errors.New("generator returned no headlines")

// GeneratorFunc produces a headline set on a cache miss.
type GeneratorFunc func(ctx context.Context) (models.HeadlineSet, error)

type CacheOptions struct {
	TTL            time.Duration
	FallbackTTL    time.Duration
	DedupeInflight bool
	Logger         *log.Logger
	Metrics        *metrics.Metrics
}

// Cache maps keys to immutable headline sets, generating each set at most once per key.
type Cache struct {
	store   repository.HeadlineStore
	opts    CacheOptions
	group   singleflight.Group
	logger  *log.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewCache(store repository.HeadlineStore, opts CacheOptions) *Cache {
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[CACHE] ", log.LstdFlags)
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.FallbackTTL <= 0 || opts.FallbackTTL > opts.TTL {
		opts.FallbackTTL = opts.TTL
	}
	return &Cache{store: store, opts: opts, logger: opts.Logger, metrics: opts.Metrics, now: time.Now}
}

// GetOrCreate returns the set stored under key, or generates, stores and returns a new one.
// The bool reports whether the set came from the store.
// A failed or empty generation is never stored.
func (c *Cache) GetOrCreate(ctx context.Context, key string, gen GeneratorFunc) (models.HeadlineSet, bool, error) {
	if set, ok := c.lookup(ctx, key); ok {
		return set, true, nil
	}
	c.metrics.CacheResult(metrics.ResultMiss)

	if !c.opts.DedupeInflight {
		set, err := c.generate(ctx, key, gen)
		return set, false, err
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// a concurrent leader may have stored the set between our lookup and Do
		if set, ok := c.lookup(ctx, key); ok {
			return set, nil
		}
		return c.generate(ctx, key, gen)
	})
	if err != nil {
		return models.HeadlineSet{}, false, err
	}
	return v.(models.HeadlineSet).Clone(), false, nil
}

func (c *Cache) lookup(ctx context.Context, key string) (models.HeadlineSet, bool) {
	set, err := c.store.Get(ctx, key)
	switch {
	case err == nil && len(set.Headlines) > 0:
		c.metrics.CacheResult(metrics.ResultHit)
		return set, true
	case err == nil, errors.Is(err, repository.ErrNotFound):
		return models.HeadlineSet{}, false
	default:
		c.metrics.CacheResult(metrics.ResultError)
		c.logger.Printf("store read %s failed, treating as miss: %v", short(key), err)
		return models.HeadlineSet{}, false
	}
}

func (c *Cache) generate(ctx context.Context, key string, gen GeneratorFunc) (models.HeadlineSet, error) {
	set, err := gen(ctx)
	if err != nil {
		return models.HeadlineSet{}, fmt.Errorf("generate headlines: %w", err)
	}
	if len(set.Headlines) == 0 {
		return models.HeadlineSet{}, ErrEmptySet
	}
	if set.ID == "" {
		set.ID = uuid.NewString()
	}
	if set.CreatedAt.IsZero() {
		set.CreatedAt = c.now().UTC()
	}
	set = set.Clone()

	if err := c.store.Set(ctx, key, set, c.ttlFor(set.Provenance)); err != nil {
		c.logger.Printf("store write %s failed: %v", short(key), err)
	}
	return set, nil
}

func (c *Cache) ttlFor(p models.Provenance) time.Duration {
	if p == models.ProvenanceTemplateFallback {
		return c.opts.FallbackTTL
	}
	return c.opts.TTL
}

// Len reports the number of stored sets.
func (c *Cache) Len(ctx context.Context) (int, error) {
	return c.store.Len(ctx)
}

// Purge drops every stored set.
func (c *Cache) Purge(ctx context.Context) error {
	return c.store.Purge(ctx)
}

func short(key string) string {
	if len(key) > 16 {
		return key[:16]
	}
	return key
}
