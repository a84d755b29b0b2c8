package filestorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Popolzen/linkalias/internal/model"
	"github.com/Popolzen/linkalias/internal/repository"
	"github.com/Popolzen/linkalias/internal/repository/memory"
)

// URLRepository хранит ссылки в памяти и сбрасывает снимок в JSON файл
// после каждого изменения. При старте снимок загружается обратно.
// Изменение и запись снимка идут под одной блокировкой: память не расходится с файлом.
type URLRepository struct {
	*memory.URLRepository

	mu   sync.Mutex
	path string
}

// NewURLRepository открывает хранилище по пути path.
// Отсутствующий файл - это пустое хранилище, битый файл - ошибка.
func NewURLRepository(path string) (*URLRepository, error) {
	records, err := loadMappings(path)
	if err != nil {
		return nil, err
	}

	return &URLRepository{
		URLRepository: memory.NewURLRepositoryFrom(records),
		path:          path,
	}, nil
}

// loadMappings - загружает данные из файла.
func loadMappings(path string) ([]model.Mapping, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []model.Mapping
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("ошибка десериализации JSON: %w", err)
	}

	return records, nil
}

// Insert сохраняет ссылку и записывает снимок на диск.
// Если снимок не записан, вставка откатывается.
func (r *URLRepository) Insert(ctx context.Context, originalURL, alias string, expiresAt *time.Time) (model.Mapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.URLRepository.Insert(ctx, originalURL, alias, expiresAt)
	if err != nil {
		return model.Mapping{}, err
	}

	if err := r.saveLocked(ctx); err != nil {
		if _, rbErr := r.URLRepository.DeleteByID(ctx, m.ID); rbErr != nil {
			return model.Mapping{}, errors.Join(err, rbErr)
		}
		return model.Mapping{}, err
	}
	return m, nil
}

// DeleteByID удаляет ссылку и записывает снимок на диск.
// Если снимок не записан, запись возвращается на место.
func (r *URLRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.URLRepository.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	deleted, err := r.URLRepository.DeleteByID(ctx, id)
	if err != nil || !deleted {
		return deleted, err
	}

	if err := r.saveLocked(ctx); err != nil {
		if rbErr := r.URLRepository.Restore(m); rbErr != nil {
			return false, errors.Join(err, rbErr)
		}
		return false, err
	}
	return true, nil
}

// Close сбрасывает последний снимок
func (r *URLRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saveLocked(context.Background())
}

// saveLocked пишет снимок во временный файл и атомарно подменяет им основной.
// Вызывается под r.mu.
func (r *URLRepository) saveLocked(ctx context.Context) error {
	records, err := r.URLRepository.ListAll(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("ошибка сериализации JSON: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("ошибка создания файла: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи файла: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка записи файла: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("ошибка замены файла: %w", err)
	}
	return nil
}
