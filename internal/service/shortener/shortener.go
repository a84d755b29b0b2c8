package shortener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Popolzen/linkalias/internal/metrics"
	"github.com/Popolzen/linkalias/internal/model"
	"github.com/Popolzen/linkalias/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	kindCustom    = "custom"
	kindGenerated = "generated"
)

var tracer = otel.Tracer("github.com/Popolzen/linkalias/internal/service/shortener")

// Sequence источник уникальных чисел для генерации алиасов
type Sequence interface {
	Next(ctx context.Context) (uint64, error)
}

// Encoder превращает число в алиас и узнаёт свои алиасы
type Encoder interface {
	Encode(n uint64) (string, error)
	Decode(alias string) (uint64, bool)
}

// URLService связывает постоянное хранилище и кэш. Хранилище - источник истины,
// кэш только ускоряет чтение, и его ошибки не меняют результат операций.
type URLService struct {
	repo    repository.MappingRepository
	cache   repository.CacheStore
	seq     Sequence
	enc     Encoder
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
	// maxTTL ограничивает жизнь в кэше бессрочных ссылок, 0 - без ограничения
	maxTTL time.Duration
}

// Option настраивает URLService
type Option func(*URLService)

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(s *URLService) {
		s.now = now
	}
}

// WithMaxCacheTTL ограничивает срок жизни в кэше ссылок без expiresAt.
// Гонка Resolve с Delete может вернуть в кэш уже удалённую ссылку,
// и без ограничения такая запись не вытесняется никогда.
func WithMaxCacheTTL(d time.Duration) Option {
	return func(s *URLService) {
		s.maxTTL = d
	}
}

func NewURLService(
	repo repository.MappingRepository,
	cache repository.CacheStore,
	seq Sequence,
	enc Encoder,
	baseURL string,
	logger *zap.Logger,
	opts ...Option,
) *URLService {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &URLService{
		repo:    repo,
		cache:   cache,
		seq:     seq,
		enc:     enc,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With(zap.String("component", "url_service")),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create сохраняет ссылку и возвращает короткий URL.
// Пустой customAlias - алиас генерируется из счётчика. expiresIn == 0 - ссылка бессрочная.
func (s *URLService) Create(ctx context.Context, originalURL, customAlias string, expiresIn time.Duration) (string, error) {
	ctx, span := tracer.Start(ctx, "URLService.Create")
	defer span.End()

	if expiresIn < 0 {
		return "", model.ErrInvalidExpiration
	}

	kind := kindCustom
	alias := customAlias
	if customAlias != "" {
		// алиас из пространства кодировщика однажды выдаст счётчик
		if _, ok := s.enc.Decode(customAlias); ok {
			metrics.MappingCreationTotal.WithLabelValues(kind, metrics.StatusConflict).Inc()
			return "", model.ErrAliasReserved
		}

		exists, err := s.repo.ExistsByAlias(ctx, customAlias)
		if err != nil {
			metrics.MappingCreationTotal.WithLabelValues(kind, metrics.StatusError).Inc()
			return "", fmt.Errorf("ошибка проверки алиаса: %w", err)
		}
		if exists {
			metrics.MappingCreationTotal.WithLabelValues(kind, metrics.StatusConflict).Inc()
			return "", model.ErrAliasAlreadyExists
		}
	} else {
		kind = kindGenerated
		var err error
		if alias, err = s.generateAlias(ctx); err != nil {
			metrics.MappingCreationTotal.WithLabelValues(kind, metrics.StatusError).Inc()
			span.RecordError(err)
			return "", err
		}
	}
	span.SetAttributes(attribute.String("alias", alias), attribute.String("kind", kind))

	now := s.now()
	var expiresAt *time.Time
	if expiresIn > 0 {
		at := now.Add(expiresIn)
		expiresAt = &at
	}

	m, err := s.repo.Insert(ctx, originalURL, alias, expiresAt)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateAlias) {
			if kind == kindGenerated {
				// сгенерированные алиасы не пересекаются, пока счётчик не сброшен
				s.logger.Warn("сгенерированный алиас уже занят", zap.String("alias", alias))
			}
			metrics.MappingCreationTotal.WithLabelValues(kind, metrics.StatusConflict).Inc()
			return "", model.ErrAliasAlreadyExists
		}
		metrics.MappingCreationTotal.WithLabelValues(kind, metrics.StatusError).Inc()
		span.RecordError(err)
		return "", fmt.Errorf("ошибка сохранения ссылки: %w", err)
	}

	s.cachePut(ctx, m, now)
	metrics.MappingCreationTotal.WithLabelValues(kind, metrics.StatusSuccess).Inc()

	return s.shortURL(m.Alias), nil
}

func (s *URLService) generateAlias(ctx context.Context) (string, error) {
	n, err := s.seq.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("не удалось получить номер алиаса: %w", err)
	}
	alias, err := s.enc.Encode(n)
	if err != nil {
		return "", fmt.Errorf("не удалось закодировать алиас: %w", err)
	}
	return alias, nil
}

// Resolve возвращает исходный URL по алиасу.
// Попадание в кэш возвращается сразу, без проверки срока действия:
// запись в кэше живёт не дольше самой ссылки.
func (s *URLService) Resolve(ctx context.Context, alias string) (string, error) {
	ctx, span := tracer.Start(ctx, "URLService.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("alias", alias))

	url, ok, err := s.cache.Get(ctx, alias)
	switch {
	case err != nil:
		metrics.CacheErrorsTotal.WithLabelValues("get").Inc()
		s.logger.Warn("ошибка чтения из кэша", zap.String("alias", alias), zap.Error(err))
	case ok:
		metrics.CacheHitsTotal.Inc()
		metrics.ResolveTotal.WithLabelValues("hit").Inc()
		return url, nil
	default:
		metrics.CacheMissesTotal.Inc()
	}

	m, err := s.repo.FindByAlias(ctx, alias)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.ResolveTotal.WithLabelValues("not_found").Inc()
			return "", model.ErrAliasDoesNotExist
		}
		metrics.ResolveTotal.WithLabelValues(metrics.StatusError).Inc()
		span.RecordError(err)
		return "", fmt.Errorf("ошибка поиска алиаса: %w", err)
	}

	now := s.now()
	if m.IsExpired(now) {
		metrics.ResolveTotal.WithLabelValues("expired").Inc()
		return "", model.ErrAliasIsExpired
	}

	s.cachePut(ctx, m, now)
	metrics.ResolveTotal.WithLabelValues("miss").Inc()

	return m.OriginalURL, nil
}

// List возвращает все ссылки, включая истёкшие
func (s *URLService) List(ctx context.Context) ([]model.ShortenedURL, error) {
	mappings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения ссылок: %w", err)
	}

	result := make([]model.ShortenedURL, 0, len(mappings))
	for _, m := range mappings {
		result = append(result, model.ShortenedURL{
			ID:          m.ID,
			OriginalURL: m.OriginalURL,
			ShortURL:    s.shortURL(m.Alias),
			Alias:       m.Alias,
			ExpiresAt:   m.ExpiresAt,
		})
	}

	return result, nil
}

// Delete удаляет ссылку из хранилища и кэша одновременно.
// Ошибка кэша только логируется, ошибка хранилища возвращается.
func (s *URLService) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "URLService.Delete")
	defer span.End()

	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ErrMappingNotFound
		}
		metrics.MappingDeletionTotal.WithLabelValues(metrics.StatusError).Inc()
		return fmt.Errorf("ошибка поиска ссылки: %w", err)
	}
	span.SetAttributes(attribute.String("alias", m.Alias))

	var g errgroup.Group
	g.Go(func() error {
		deleted, err := s.repo.DeleteByID(ctx, id)
		if err != nil {
			return fmt.Errorf("ошибка удаления ссылки: %w", err)
		}
		if !deleted {
			s.logger.Debug("ссылка уже удалена", zap.Int64("id", id))
		}
		return nil
	})
	g.Go(func() error {
		if err := s.cache.Del(ctx, m.Alias); err != nil {
			metrics.CacheErrorsTotal.WithLabelValues("del").Inc()
			s.logger.Warn("ошибка удаления из кэша", zap.String("alias", m.Alias), zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		metrics.MappingDeletionTotal.WithLabelValues(metrics.StatusError).Inc()
		span.RecordError(err)
		return err
	}
	metrics.MappingDeletionTotal.WithLabelValues(metrics.StatusSuccess).Inc()

	return nil
}

// Ping проверяет доступность хранилища. Недоступность кэша только логируется.
func (s *URLService) Ping(ctx context.Context) error {
	if err := s.cache.Ping(ctx); err != nil {
		s.logger.Warn("кэш недоступен", zap.Error(err))
	}
	return s.repo.Ping(ctx)
}

// cachePut кладёт ссылку в кэш на оставшееся время жизни
func (s *URLService) cachePut(ctx context.Context, m model.Mapping, now time.Time) {
	ttl, ok := cacheTTL(m.ExpiresAt, now)
	if !ok {
		return
	}
	if ttl == 0 && s.maxTTL > 0 {
		ttl = s.maxTTL
	}

	if err := s.cache.Set(ctx, m.Alias, m.OriginalURL, ttl); err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("set").Inc()
		s.logger.Warn("ошибка записи в кэш", zap.String("alias", m.Alias), zap.Error(err))
	}
}

func (s *URLService) shortURL(alias string) string {
	return s.baseURL + "/" + alias
}

// cacheTTL считает срок жизни записи в кэше, округляя вверх до секунды.
// 0 - запись без срока, false - ссылка уже истекла и кэшировать её нельзя.
func cacheTTL(expiresAt *time.Time, now time.Time) (time.Duration, bool) {
	if expiresAt == nil {
		return 0, true
	}

	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return 0, false
	}

	ttl := remaining.Truncate(time.Second)
	if ttl < remaining {
		ttl += time.Second
	}
	return ttl, true
}
