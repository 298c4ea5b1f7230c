package redis_repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mohammad-safakhou/localseo/models"
	"github.com/redis/go-redis/v9"
)

const headlineKeyPrefix = "localseo:headlines:"

// redisHeadlineRepository implements HeadlineStore using Redis
type redisHeadlineRepository struct {
	client *redis.Client
}

func (r redisHeadlineRepository) Get(ctx context.Context, key string) (models.HeadlineSet, error) {
	val, err := r.client.Get(ctx, headlineKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.HeadlineSet{}, models.ErrHeadlineSetNotFound
		}
		return models.HeadlineSet{}, err
	}

	var set models.HeadlineSet
	if err := json.Unmarshal([]byte(val), &set); err != nil {
		return models.HeadlineSet{}, err
	}
	return set, nil
}

func (r redisHeadlineRepository) Set(ctx context.Context, key string, set models.HeadlineSet, ttl time.Duration) error {
	data, err := json.Marshal(set)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, headlineKeyPrefix+key, data, ttl).Err()
}

func (r redisHeadlineRepository) Len(ctx context.Context) (int, error) {
	keys, err := r.keys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (r redisHeadlineRepository) Purge(ctx context.Context) error {
	keys, err := r.keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r redisHeadlineRepository) keys(ctx context.Context) ([]string, error) {
	var out []string
	iter := r.client.Scan(ctx, 0, headlineKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func NewRedisHeadlineRepository(client *redis.Client) *redisHeadlineRepository {
	return &redisHeadlineRepository{
		client: client,
	}
}
