package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "bakshish:session:"

// redisStore keeps one hash per profile. HSET and HDEL take many fields, so
// every write is a single command.
type redisStore struct {
	redis *redis.Client
	key   string
}

func NewRedisStore(redisClient *redis.Client, profile string) Store {
	return &redisStore{redis: redisClient, key: sessionKeyPrefix + profile}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.redis.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *redisStore) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(values)*2)
	for k, v := range values {
		args = append(args, k, v)
	}
	return s.redis.HSet(ctx, s.key, args...).Err()
}

func (s *redisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.redis.HDel(ctx, s.key, keys...).Err()
}
