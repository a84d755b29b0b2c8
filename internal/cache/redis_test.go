package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Popolzen/linkalias/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var _ repository.CacheStore = (*RedisStore)(nil)

// setupRedis поднимает Redis в Docker и возвращает хранилище поверх него
func setupRedis(t *testing.T) *RedisStore {
	t.Helper()
	if testing.Short() {
		t.Skip("нужен Docker")
	}
	ctx := context.Background()

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, redisContainer.Terminate(ctx))
	})

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, RedisConfig{Addr: endpoint})
	require.NoError(t, err)

	store := NewRedisStore(client)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestRedisStore_SetGet(t *testing.T) {
	store := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "abc123", "https://example.com", 0))

	url, ok, err := store.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", url)

	// ключ хранится с префиксом
	ttl, err := store.client.TTL(ctx, "url:abc123").Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl, "ttl == 0 означает ключ без срока жизни")
}

func TestRedisStore_SetWithTTL(t *testing.T) {
	store := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "temp", "https://example.com", time.Hour))

	ttl, err := store.client.TTL(ctx, "url:temp").Result()
	require.NoError(t, err)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)
}

func TestRedisStore_Miss(t *testing.T) {
	store := setupRedis(t)

	url, ok, err := store.Get(context.Background(), "missing")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, url)
}

func TestRedisStore_Del(t *testing.T) {
	store := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "gone", "https://example.com", 0))
	require.NoError(t, store.Del(ctx, "gone"))
	require.NoError(t, store.Del(ctx, "gone"))

	_, ok, err := store.Get(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Incr(t *testing.T) {
	store := setupRedis(t)
	ctx := context.Background()

	first, err := store.Incr(ctx)
	require.NoError(t, err)
	second, err := store.Incr(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}

func TestRedisStore_Ping(t *testing.T) {
	store := setupRedis(t)

	assert.NoError(t, store.Ping(context.Background()))
}

func TestRedisStore_AliasDoesNotTouchCounter(t *testing.T) {
	store := setupRedis(t)
	ctx := context.Background()

	first, err := store.Incr(ctx)
	require.NoError(t, err)

	// промах: значение счётчика не видно как алиас
	_, ok, err := store.Get(ctx, "counter")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "counter", "https://example.com", 0))
	next, err := store.Incr(ctx)
	require.NoError(t, err)
	assert.Equal(t, first+1, next)

	require.NoError(t, store.Del(ctx, "counter"))
	next, err = store.Incr(ctx)
	require.NoError(t, err)
	assert.Equal(t, first+2, next, "удаление алиаса не сбрасывает счётчик")
}
