package database

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/Popolzen/linkalias/internal/repository"
	migration "github.com/Popolzen/linkalias/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// === Setup ===

// setupTestDB поднимает PostgreSQL в Docker, применяет миграции и возвращает пул.
// Контейнер автоматически остановится после теста.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("нужен Docker")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			// "database system is ready" появляется дважды в логах postgres
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	require.NoError(t, migration.MigrateUp(sqlDB))
	sqlDB.Close()

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

// === Insert ===

func TestInsert_Success(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewURLRepository(pool)
	ctx := context.Background()

	m, err := repo.Insert(ctx, "https://example.com", "abcd12", nil)

	require.NoError(t, err)
	assert.Positive(t, m.ID)
	assert.Nil(t, m.ExpiresAt)

	// Проверяем что записалось в БД
	var originalURL string
	err = pool.QueryRow(ctx, "SELECT original_url FROM url_mappings WHERE alias = $1", "abcd12").Scan(&originalURL)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", originalURL)
}

func TestInsert_WithExpiration(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewURLRepository(pool)
	ctx := context.Background()
	expiresAt := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)

	m, err := repo.Insert(ctx, "https://example.com", "exp123", &expiresAt)

	require.NoError(t, err)
	require.NotNil(t, m.ExpiresAt)
	assert.True(t, expiresAt.Equal(*m.ExpiresAt))
}

func TestInsert_DuplicateAlias(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewURLRepository(pool)
	ctx := context.Background()

	_, err := repo.Insert(ctx, "https://first.com", "dupl12", nil)
	require.NoError(t, err)

	_, err = repo.Insert(ctx, "https://second.com", "dupl12", nil)
	assert.ErrorIs(t, err, repository.ErrDuplicateAlias)
}

func TestInsert_ConcurrentSameAlias(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewURLRepository(pool)
	ctx := context.Background()

	const attempts = 10
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = repo.Insert(ctx, "https://race.com", "race", nil)
		}()
	}
	wg.Wait()

	var success, dups int
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		case assert.ErrorIs(t, err, repository.ErrDuplicateAlias):
			dups++
		}
	}
	assert.Equal(t, 1, success)
	assert.Equal(t, attempts-1, dups)
}

// === Find ===

func TestFindByAlias_Success(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewURLRepository(pool)
	ctx := context.Background()

	created, err := repo.Insert(ctx, "https://example.com", "test12", nil)
	require.NoError(t, err)

	found, err := repo.FindByAlias(ctx, "test12")

	require.NoError(t, err)
	assert.Equal(t, created, found)
}

func TestFindByAlias_ReturnsExpired(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewURLRepository(pool)
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)

	_, err := repo.Insert(ctx, "https://old.com", "old123", &past)
	require.NoError(t, err)

	found, err := repo.FindByAlias(ctx, "old123")

	require.NoError(t, err)
	assert.True(t, found.IsExpired(time.Now()))
}

func TestFindByAlias_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewURLRepository(pool)

	_, err := repo.FindByAlias(context.Background(), "notfound")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFindByID(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewURLRepository(pool)
	ctx := context.Background()

	created, err := repo.Insert(ctx, "https://example.com", "byid12", nil)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "byid12", found.Alias)

	_, err = repo.FindByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestExistsByAlias(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewURLRepository(pool)
	ctx := context.Background()

	_, err := repo.Insert(ctx, "https://example.com", "exists", nil)
	require.NoError(t, err)

	exists, err := repo.ExistsByAlias(ctx, "exists")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByAlias(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, exists)
}

// === ListAll ===

func TestListAll(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewURLRepository(pool)
	ctx := context.Background()
	past := time.Now().Add(-time.Minute)

	repo.Insert(ctx, "https://one.com", "aaaa11", nil)
	repo.Insert(ctx, "https://two.com", "bbbb22", &past)
	repo.Insert(ctx, "https://three.com", "cccc33", nil)

	all, err := repo.ListAll(ctx)

	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "aaaa11", all[0].Alias)
	assert.NotNil(t, all[1].ExpiresAt)
}

func TestListAll_Empty(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewURLRepository(pool)

	all, err := repo.ListAll(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

// === DeleteByID ===

func TestDeleteByID(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewURLRepository(pool)
	ctx := context.Background()

	created, err := repo.Insert(ctx, "https://example.com", "delt12", nil)
	require.NoError(t, err)

	deleted, err := repo.DeleteByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.FindByAlias(ctx, "delt12")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	deleted, err = repo.DeleteByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	// алиас освобождён
	_, err = repo.Insert(ctx, "https://again.com", "delt12", nil)
	assert.NoError(t, err)
}

func TestPing(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewURLRepository(pool)

	assert.NoError(t, repo.Ping(context.Background()))
}
