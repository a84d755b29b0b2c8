package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Popolzen/linkalias/internal/model"
	"github.com/Popolzen/linkalias/internal/repository"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const queryTimeout = 5 * time.Second

// URLRepository хранит ссылки в PostgreSQL
type URLRepository struct {
	DB *pgxpool.Pool
}

// NewURLRepository создает репозиторий поверх пула
func NewURLRepository(db *pgxpool.Pool) *URLRepository {
	return &URLRepository{DB: db}
}

// FindByAlias получает запись по алиасу без учёта срока действия
func (r *URLRepository) FindByAlias(ctx context.Context, alias string) (model.Mapping, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT id, original_url, alias, expires_at FROM url_mappings WHERE alias = $1`
	return scanMapping(r.DB.QueryRow(ctx, query, alias))
}

// ExistsByAlias проверяет, занят ли алиас
func (r *URLRepository) ExistsByAlias(ctx context.Context, alias string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM url_mappings WHERE alias = $1)`
	if err := r.DB.QueryRow(ctx, query, alias).Scan(&exists); err != nil {
		return false, fmt.Errorf("ошибка при проверке алиаса: %w", err)
	}
	return exists, nil
}

// FindByID получает запись по id
func (r *URLRepository) FindByID(ctx context.Context, id int64) (model.Mapping, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT id, original_url, alias, expires_at FROM url_mappings WHERE id = $1`
	return scanMapping(r.DB.QueryRow(ctx, query, id))
}

// Insert сохраняет ссылку. Финальный арбитр уникальности алиаса -
// ограничение uq_url_mappings_alias, его нарушение превращается в ErrDuplicateAlias.
func (r *URLRepository) Insert(ctx context.Context, originalURL, alias string, expiresAt *time.Time) (model.Mapping, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
	INSERT INTO url_mappings (original_url, alias, expires_at)
	VALUES ($1, $2, $3)
	RETURNING id, original_url, alias, expires_at
`
	m, err := scanMapping(r.DB.QueryRow(ctx, query, originalURL, alias, expiresAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.Mapping{}, repository.ErrDuplicateAlias
		}
		return model.Mapping{}, fmt.Errorf("ошибка при сохранении ссылки: %w", err)
	}

	return m, nil
}

// ListAll возвращает все записи, включая истёкшие
func (r *URLRepository) ListAll(ctx context.Context) ([]model.Mapping, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.DB.Query(ctx, `SELECT id, original_url, alias, expires_at FROM url_mappings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении ссылок: %w", err)
	}
	defer rows.Close()

	result := make([]model.Mapping, 0)
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при чтении ссылок: %w", err)
	}

	return result, nil
}

// DeleteByID удаляет запись. false - записи уже нет.
func (r *URLRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.DB.Exec(ctx, `DELETE FROM url_mappings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("ошибка при удалении ссылки: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Ping проверяет подключение к базе данных
func (r *URLRepository) Ping(ctx context.Context) error {
	return r.DB.Ping(ctx)
}

// Close закрывает пул
func (r *URLRepository) Close() error {
	r.DB.Close()
	return nil
}

func scanMapping(row pgx.Row) (model.Mapping, error) {
	var (
		m         model.Mapping
		expiresAt *time.Time
	)

	if err := row.Scan(&m.ID, &m.OriginalURL, &m.Alias, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Mapping{}, repository.ErrNotFound
		}
		return model.Mapping{}, err
	}
	m.ExpiresAt = expiresAt

	return m, nil
}
