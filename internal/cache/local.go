package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const cleanupInterval = 10 * time.Minute

// LocalStore кэш в памяти процесса. Счётчик живёт там же,
// поэтому подходит только для одного экземпляра сервиса.
type LocalStore struct {
	items *gocache.Cache
}

// NewLocalStore создает пустой локальный кэш
func NewLocalStore() *LocalStore {
	items := gocache.New(gocache.NoExpiration, cleanupInterval)
	items.Set(counterKey, int64(0), gocache.NoExpiration)

	return &LocalStore{items: items}
}

func (s *LocalStore) Get(_ context.Context, alias string) (string, bool, error) {
	v, ok := s.items.Get(keyPrefix + alias)
	if !ok {
		return "", false, nil
	}
	url, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("неожиданный тип значения %T", v)
	}
	return url, true, nil
}

// Set записывает URL. ttl == 0 - без срока жизни.
func (s *LocalStore) Set(_ context.Context, alias, originalURL string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	s.items.Set(keyPrefix+alias, originalURL, ttl)
	return nil
}

func (s *LocalStore) Del(_ context.Context, alias string) error {
	s.items.Delete(keyPrefix + alias)
	return nil
}

// Incr увеличивает счётчик под блокировкой go-cache
func (s *LocalStore) Incr(context.Context) (int64, error) {
	n, err := s.items.IncrementInt64(counterKey, 1)
	if err != nil {
		return 0, fmt.Errorf("ошибка увеличения счётчика: %w", err)
	}
	return n, nil
}

func (s *LocalStore) Ping(context.Context) error {
	return nil
}

func (s *LocalStore) Close() error {
	s.items.Flush()
	return nil
}
