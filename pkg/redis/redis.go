package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FaceVerify/pkg/log"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("redis: key not found")

type IRedis interface {
	// CreateJSON stores value only if key does not exist yet.
	CreateJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	// ReplaceJSON stores value only if key still exists.
	ReplaceJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	Address  string
	Password string
	DB       int
}

type redisClient struct {
	client *redis.Client
}

func New(cfg Config) IRedis {
	log.Info(log.Fields{"address": cfg.Address}, "Connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Error(log.Fields{"address": cfg.Address, "error": err.Error()}, "Failed to connect to Redis")
	} else {
		log.Info(log.Fields{"address": cfg.Address}, "Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func (r *redisClient) CreateJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	data, err := jsoniter.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", key, err)
	}

	ok, err := r.client.SetNX(ctx, key, data, expiration).Result()
	if err != nil {
		log.Error(log.Fields{"key": key, "error": err.Error()}, "Error creating key")
		return false, err
	}
	log.Debug(log.Fields{"key": key, "created": ok, "expiration": expiration.String()}, "Create key finished")
	return ok, nil
}

func (r *redisClient) ReplaceJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	data, err := jsoniter.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", key, err)
	}

	ok, err := r.client.SetXX(ctx, key, data, expiration).Result()
	if err != nil {
		log.Error(log.Fields{"key": key, "error": err.Error()}, "Error replacing key")
		return false, err
	}
	return ok, nil
}

func (r *redisClient) GetJSON(ctx context.Context, key string, dest interface{}) error {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		log.Debug(log.Fields{"key": key}, "Key not found")
		return ErrNotFound
	} else if err != nil {
		log.Error(log.Fields{"key": key, "error": err.Error()}, "Error getting key")
		return err
	}

	if err := jsoniter.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *redisClient) Delete(ctx context.Context, key string) (bool, error) {
	result, err := r.client.Del(ctx, key).Result()
	if err != nil {
		log.Error(log.Fields{"key": key, "error": err.Error()}, "Error deleting key")
		return false, err
	}

	if result == 0 {
		log.Debug(log.Fields{"key": key}, "Key not found for deletion")
		return false, nil
	}

	return true, nil
}

func (r *redisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
