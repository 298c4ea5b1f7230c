package memory_repository

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mohammad-safakhou/localseo/models"
)

type entry struct {
	set     models.HeadlineSet
	expires time.Time
}

// memoryHeadlineRepository keeps headline sets in a bounded LRU.
// The LRU evicts at the store-wide ttl; shorter per-entry ttls are checked on read.
type memoryHeadlineRepository struct {
	lru *expirable.LRU[string, entry]
	ttl time.Duration
	now func() time.Time
}

func NewHeadlineRepository(capacity int, ttl time.Duration) *memoryHeadlineRepository {
	return &memoryHeadlineRepository{
		lru: expirable.NewLRU[string, entry](capacity, nil, ttl),
		ttl: ttl,
		now: time.Now,
	}
}

func (r *memoryHeadlineRepository) Get(_ context.Context, key string) (models.HeadlineSet, error) {
	e, ok := r.lru.Get(key)
	if !ok {
		return models.HeadlineSet{}, models.ErrHeadlineSetNotFound
	}
	if !e.expires.IsZero() && !r.now().Before(e.expires) {
		r.lru.Remove(key)
		return models.HeadlineSet{}, models.ErrHeadlineSetNotFound
	}
	return e.set.Clone(), nil
}

func (r *memoryHeadlineRepository) Set(_ context.Context, key string, set models.HeadlineSet, ttl time.Duration) error {
	e := entry{set: set.Clone()}
	if ttl > 0 && ttl < r.ttl {
		e.expires = r.now().Add(ttl)
	}
	r.lru.Add(key, e)
	return nil
}

func (r *memoryHeadlineRepository) Len(_ context.Context) (int, error) {
	return r.lru.Len(), nil
}

func (r *memoryHeadlineRepository) Purge(_ context.Context) error {
	r.lru.Purge()
	return nil
}
