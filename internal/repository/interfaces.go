package repository

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/Popolzen/linkalias/internal/repository MappingRepository,CacheStore

import (
	"context"
	"errors"
	"time"

	"github.com/Popolzen/linkalias/internal/model"
)

var (
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("mapping not found")
	// ErrDuplicateAlias нарушено ограничение уникальности алиаса
	ErrDuplicateAlias = errors.New("duplicate alias")
)

// MappingRepository постоянное хранилище ссылок, источник истины.
// Фильтрации по сроку действия здесь нет: её делает сервис.
type MappingRepository interface {
	FindByAlias(ctx context.Context, alias string) (model.Mapping, error)
	ExistsByAlias(ctx context.Context, alias string) (bool, error)
	FindByID(ctx context.Context, id int64) (model.Mapping, error)
	Insert(ctx context.Context, originalURL, alias string, expiresAt *time.Time) (model.Mapping, error)
	ListAll(ctx context.Context) ([]model.Mapping, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// CacheStore кэш алиас -> URL и атомарный счётчик.
// ttl == 0 означает запись без срока жизни.
type CacheStore interface {
	Get(ctx context.Context, alias string) (string, bool, error)
	Set(ctx context.Context, alias, originalURL string, ttl time.Duration) error
	Del(ctx context.Context, alias string) error
	Incr(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
