package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Popolzen/linkalias/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ repository.CacheStore = (*LocalStore)(nil)

func TestLocalStore_SetGet(t *testing.T) {
	store := NewLocalStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "abc123", "https://example.com", 0))

	url, ok, err := store.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", url)
}

func TestLocalStore_Miss(t *testing.T) {
	store := NewLocalStore()

	url, ok, err := store.Get(context.Background(), "missing")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, url)
}

func TestLocalStore_TTL(t *testing.T) {
	store := NewLocalStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", "https://example.com", 50*time.Millisecond))

	_, ok, _ := store.Get(ctx, "short")
	assert.True(t, ok)

	time.Sleep(100 * time.Millisecond)

	_, ok, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok, "запись с истёкшим ttl не должна возвращаться")
}

func TestLocalStore_Del(t *testing.T) {
	store := NewLocalStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "gone", "https://example.com", 0))
	require.NoError(t, store.Del(ctx, "gone"))
	// повторное удаление не ошибка
	require.NoError(t, store.Del(ctx, "gone"))

	_, ok, err := store.Get(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStore_IncrConcurrent(t *testing.T) {
	store := NewLocalStore()
	ctx := context.Background()

	const n = 200
	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{}, n)
		wg   sync.WaitGroup
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.Incr(ctx)
			assert.NoError(t, err)

			mu.Lock()
			seen[v] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	next, err := store.Incr(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(n+1), next)
}

func TestLocalStore_AliasDoesNotTouchCounter(t *testing.T) {
	store := NewLocalStore()
	ctx := context.Background()

	first, err := store.Incr(ctx)
	require.NoError(t, err)

	// алиасы, похожие на ключ счётчика, живут в своём пространстве ключей
	for _, alias := range []string{"counter", "url"} {
		require.NoError(t, store.Set(ctx, alias, "https://example.com", 0))
	}

	next, err := store.Incr(ctx)
	require.NoError(t, err)
	assert.Equal(t, first+1, next)

	require.NoError(t, store.Del(ctx, "counter"))
	next, err = store.Incr(ctx)
	require.NoError(t, err)
	assert.Equal(t, first+2, next, "удаление алиаса не сбрасывает счётчик")
}
