// Package cache содержит реализации repository.CacheStore: Redis для нескольких
// экземпляров сервиса и go-cache для запуска на одном узле.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Алиасы живут под keyPrefix, счётчик вне этого пространства ключей:
// ни один алиас не совпадёт с ним, и запись алиаса не затрёт счётчик.
const (
	keyPrefix  = "url:"
	counterKey = "counter:url"
)

// RedisConfig параметры подключения к Redis
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore кэш алиасов и счётчик в Redis
type RedisStore struct {
	client *redis.Client
}

// NewRedisClient создает клиента и проверяет подключение
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}
	return client, nil
}

// NewRedisStore создает кэш поверх готового клиента
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get возвращает URL по алиасу. Отсутствие ключа - промах, а не ошибка.
func (s *RedisStore) Get(ctx context.Context, alias string) (string, bool, error) {
	val, err := s.client.Get(ctx, keyPrefix+alias).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set записывает URL. ttl == 0 - без срока жизни.
func (s *RedisStore) Set(ctx context.Context, alias, originalURL string, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefix+alias, originalURL, ttl).Err()
}

func (s *RedisStore) Del(ctx context.Context, alias string) error {
	return s.client.Del(ctx, keyPrefix+alias).Err()
}

// Incr атомарно увеличивает общий счётчик алиасов
func (s *RedisStore) Incr(ctx context.Context) (int64, error) {
	return s.client.Incr(ctx, counterKey).Result()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
