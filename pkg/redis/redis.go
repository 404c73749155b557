package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"avril/pkg/storage"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "avril:"

type redisStorage struct {
	client *redis.Client
	log    *logrus.Logger
}

// New connects to REDIS_ADDRESS and returns a blob store. A failed ping is
// logged, not fatal; commands surface their own errors later.
func New(log *logrus.Logger) storage.IStorage {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")

	log.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		log.Info("Successfully connected to Redis")
	}

	return NewWithClient(client, log)
}

func NewWithClient(client *redis.Client, log *logrus.Logger) storage.IStorage {
	return &redisStorage{client: client, log: log}
}

func (r *redisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Error("Error reading blob from redis")
		return nil, err
	}
	return val, nil
}

func (r *redisStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		r.log.WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Error("Error writing blob to redis")
		return err
	}
	return nil
}

func (r *redisStorage) Delete(ctx context.Context, key string) error {
	result, err := r.client.Del(ctx, keyPrefix+key).Result()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Error("Error deleting blob from redis")
		return err
	}

	if result == 0 {
		r.log.Debug(fmt.Sprintf("Redis key %s not found for deletion", key))
	}
	return nil
}
