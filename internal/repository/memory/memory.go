package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Popolzen/linkalias/internal/model"
	"github.com/Popolzen/linkalias/internal/repository"
)

// URLRepository хранит ссылки в памяти процесса
type URLRepository struct {
	mu      sync.RWMutex
	byID    map[int64]model.Mapping
	aliases map[string]int64
	nextID  int64
}

// NewURLRepository создает пустое хранилище
func NewURLRepository() *URLRepository {
	return &URLRepository{
		byID:    map[int64]model.Mapping{},
		aliases: map[string]int64{},
		nextID:  1,
	}
}

// NewURLRepositoryFrom восстанавливает хранилище из ранее сохранённых записей
func NewURLRepositoryFrom(records []model.Mapping) *URLRepository {
	r := NewURLRepository()
	for _, m := range records {
		r.byID[m.ID] = m
		r.aliases[m.Alias] = m.ID
		if m.ID >= r.nextID {
			r.nextID = m.ID + 1
		}
	}
	return r
}

func (r *URLRepository) FindByAlias(_ context.Context, alias string) (model.Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.aliases[alias]
	if !ok {
		return model.Mapping{}, repository.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *URLRepository) ExistsByAlias(_ context.Context, alias string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.aliases[alias]
	return ok, nil
}

func (r *URLRepository) FindByID(_ context.Context, id int64) (model.Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return model.Mapping{}, repository.ErrNotFound
	}
	return m, nil
}

// Insert сохраняет ссылку. Уникальность алиаса проверяется под блокировкой,
// так что из двух одновременных вставок одного алиаса проходит ровно одна.
func (r *URLRepository) Insert(_ context.Context, originalURL, alias string, expiresAt *time.Time) (model.Mapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.aliases[alias]; exists {
		return model.Mapping{}, repository.ErrDuplicateAlias
	}

	m := model.Mapping{
		ID:          r.nextID,
		OriginalURL: originalURL,
		Alias:       alias,
	}
	if expiresAt != nil {
		at := *expiresAt
		m.ExpiresAt = &at
	}

	r.nextID++
	r.byID[m.ID] = m
	r.aliases[alias] = m.ID

	return m, nil
}

// ListAll возвращает все записи, включая истёкшие, по возрастанию id
func (r *URLRepository) ListAll(_ context.Context) ([]model.Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]model.Mapping, 0, len(r.byID))
	for _, m := range r.byID {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func (r *URLRepository) DeleteByID(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	delete(r.byID, id)
	delete(r.aliases, m.Alias)

	return true, nil
}

// Restore возвращает ранее удалённую запись под её прежним id.
// Занятый алиас или id не перезаписываются.
func (r *URLRepository) Restore(m model.Mapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.aliases[m.Alias]; exists {
		return repository.ErrDuplicateAlias
	}
	if _, exists := r.byID[m.ID]; exists {
		return repository.ErrDuplicateAlias
	}

	r.byID[m.ID] = m
	r.aliases[m.Alias] = m.ID
	if m.ID >= r.nextID {
		r.nextID = m.ID + 1
	}
	return nil
}

func (r *URLRepository) Ping(context.Context) error {
	return nil
}

func (r *URLRepository) Close() error {
	return nil
}
