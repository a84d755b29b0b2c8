package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Popolzen/linkalias/internal/audit"
	"github.com/Popolzen/linkalias/internal/config"
	"github.com/Popolzen/linkalias/internal/repository"
	"github.com/Popolzen/linkalias/internal/tracing"
	"go.uber.org/zap"
)

type App struct {
	server          *http.Server
	repo            repository.MappingRepository
	cache           repository.CacheStore
	publisher       *audit.Publisher
	shutdownTracing tracing.ShutdownFunc
}

// ListenAndServe запускает HTTP или HTTPS сервер и блокируется до его остановки
func (a *App) ListenAndServe(cfg *config.Config) error {
	var err error
	if cfg.EnableHTTPS {
		zap.L().Info("URL Shortener запущен", zap.String("addr", "https://"+cfg.ServerAddr))
		err = a.server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
	} else {
		zap.L().Info("URL Shortener запущен", zap.String("addr", "http://"+cfg.ServerAddr))
		err = a.server.ListenAndServe()
	}
	if isServerClosed(err) {
		return nil
	}
	return fmt.Errorf("ошибка HTTP сервера: %w", err)
}

// Close закрывает все ресурсы и возвращает все возникшие ошибки.
// Ресурсы, которые не успели открыться, пропускаются.
func (a *App) Close() error {
	var errs []error

	if a.repo != nil {
		zap.L().Info("закрываем репозиторий")
		if err := a.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("репозиторий: %w", err))
		}
	}

	if a.cache != nil {
		zap.L().Info("закрываем кэш")
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("кэш: %w", err))
		}
	}

	if a.publisher != nil {
		zap.L().Info("закрываем audit publisher")
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("аудит: %w", err))
		}
	}

	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("трассировка: %w", err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		zap.L().Error("ошибки при закрытии ресурсов", zap.Error(err))
	}
	return err
}

// Shutdown выполняет graceful shutdown с таймаутом
func (a *App) Shutdown(ctx context.Context) error {
	zap.L().Info("останавливаем HTTP сервер")
	if err := a.server.Shutdown(ctx); err != nil {
		a.Close()
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	return a.Close()
}
