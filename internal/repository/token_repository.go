package repository

import (
	redisapp "hondenweiden/internal/storage/redis"

	"github.com/redis/go-redis/v9"

	"context"
	"time"
)

type RedisTokenRepo struct {
	Client *redisapp.Client
}

func NewRedisTokenRepo(client *redisapp.Client) *RedisTokenRepo {
	return &RedisTokenRepo{Client: client}
}

func (r *RedisTokenRepo) SaveRefreshToken(ctx context.Context, subject, token string, exp time.Duration) error {
	return r.Client.Set(ctx, refreshTokenKey(subject, token), "1", exp).Err()
}

func (r *RedisTokenRepo) GetRefreshToken(ctx context.Context, subject, token string) (bool, error) {
	val, err := r.Client.Get(ctx, refreshTokenKey(subject, token)).Result()
	if err == redis.Nil {
		return false, nil
	}
	return val == "1", err
}

func (r *RedisTokenRepo) DeleteRefreshToken(ctx context.Context, subject, token string) error {
	return r.Client.Del(ctx, refreshTokenKey(subject, token)).Err()
}

func (r *RedisTokenRepo) DeleteAllTokens(ctx context.Context, subject string) error {
	keys, err := r.Client.Keys(ctx, refreshTokenKey(subject, "*")).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.Client.Del(ctx, keys...).Err()
}

func refreshTokenKey(subject, token string) string {
	return "refresh:" + subject + ":" + token
}
