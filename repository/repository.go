package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mohammad-safakhou/localseo/config"
	"github.com/mohammad-safakhou/localseo/models"
	"github.com/mohammad-safakhou/localseo/repository/memory_repository"
	"github.com/mohammad-safakhou/localseo/repository/redis_repository"
)

// ErrNotFound is returned by Get when a key has no live entry
var ErrNotFound = models.ErrHeadlineSetNotFound

// HeadlineStore defines the storage behind the headline cache
type HeadlineStore interface {
	Get(ctx context.Context, key string) (models.HeadlineSet, error)
	Set(ctx context.Context, key string, set models.HeadlineSet, ttl time.Duration) error
	Len(ctx context.Context) (int, error)
	Purge(ctx context.Context) error
}

type RepoType string

const (
	RepoTypeMemory RepoType = config.CacheBackendMemory
	RepoTypeRedis  RepoType = config.CacheBackendRedis
)

// NewHeadlineStore builds the store selected by cache.backend.
func NewHeadlineStore(ctx context.Context, cfg *config.Config) (HeadlineStore, error) {
	switch RepoType(cfg.Cache.Backend) {
	case RepoTypeMemory:
		return memory_repository.NewHeadlineRepository(cfg.Cache.Capacity, cfg.Cache.TTL), nil
	case RepoTypeRedis:
		c, err := redis_repository.Conn(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Timeout)
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return redis_repository.NewRedisHeadlineRepository(c), nil
	}
	return nil, fmt.Errorf("invalid repository type: %s", cfg.Cache.Backend)
}
