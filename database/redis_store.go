package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gitlab.com/aoterocom/MarketForge/models"
)

const (
	redisKeyPrefix        = "marketforge:model:"
	redisPayloadField     = "payload"
	redisPersistedAtField = "persisted_at"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisModelStore keeps each model in a hash holding its payload and persisted-at time.
type RedisModelStore struct {
	cli *redis.Client
	now func() time.Time
}

func NewRedisModelStore(cfg RedisConfig) (*RedisModelStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("error connecting to redis at %s: %w", cfg.Addr, err)
	}
	return &RedisModelStore{cli: rdb, now: time.Now}, nil
}

func redisKey(key models.ModelKey) string {
	return redisKeyPrefix + key.String()
}

func (r *RedisModelStore) Save(key models.ModelKey, payload []byte) error {
	ctx := context.Background()
	_, err := r.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisKey(key),
			redisPayloadField, payload,
			redisPersistedAtField, r.now().UnixNano())
		return nil
	})
	if err != nil {
		return fmt.Errorf("error saving model %s: %w", key, err)
	}
	return nil
}

func (r *RedisModelStore) Load(key models.ModelKey) ([]byte, error) {
	b, err := r.cli.HGet(context.Background(), redisKey(key), redisPayloadField).Bytes()
	if err != nil {
		return nil, r.wrap(key, err)
	}
	return b, nil
}

func (r *RedisModelStore) Age(key models.ModelKey) (time.Duration, error) {
	nanos, err := r.cli.HGet(context.Background(), redisKey(key), redisPersistedAtField).Int64()
	if err != nil {
		return 0, r.wrap(key, err)
	}
	return r.now().Sub(time.Unix(0, nanos)), nil
}

func (r *RedisModelStore) Close() error {
	return r.cli.Close()
}

func (r *RedisModelStore) wrap(key models.ModelKey, err error) error {
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %s", models.ErrModelNotFound, key)
	}
	return fmt.Errorf("%w: %v", models.ErrModelUnavailable, err)
}
