package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Popolzen/linkalias/internal/audit"
	"github.com/Popolzen/linkalias/internal/cache"
	"github.com/Popolzen/linkalias/internal/config"
	"github.com/Popolzen/linkalias/internal/config/db"
	"github.com/Popolzen/linkalias/internal/encoder"
	"github.com/Popolzen/linkalias/internal/handler"
	"github.com/Popolzen/linkalias/internal/logger"
	"github.com/Popolzen/linkalias/internal/middleware/compressor"
	"github.com/Popolzen/linkalias/internal/middleware/metrics"
	"github.com/Popolzen/linkalias/internal/middleware/subnet"
	"github.com/Popolzen/linkalias/internal/repository"
	"github.com/Popolzen/linkalias/internal/repository/database"
	"github.com/Popolzen/linkalias/internal/repository/filestorage"
	"github.com/Popolzen/linkalias/internal/repository/memory"
	"github.com/Popolzen/linkalias/internal/sequence"
	"github.com/Popolzen/linkalias/internal/service/shortener"
	"github.com/Popolzen/linkalias/internal/tracing"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

const shutdownTimeout = 10 * time.Second

func main() {
	printBuildInfo()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal("Ошибка конфигурации: ", err)
	}

	// Инициализируем логгер
	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatal("Не удалось инициализировать логгер: ", err)
	}

	runErr := run(cfg)
	if runErr != nil {
		zap.L().Error("сервис остановлен с ошибкой", zap.Error(runErr))
	}
	// логгер сбрасывается до выхода: log.Fatal не выполняет defer
	logger.Close()
	if runErr != nil {
		log.Fatal(runErr)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.OTLPEndpoint, valueOrNA(buildVersion))
	if err != nil {
		return err
	}

	startPprof(cfg.PprofAddr)

	app, err := newApp(ctx, cfg, shutdownTracing)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.ListenAndServe(cfg)
	}()

	select {
	case err := <-serverErr:
		return errors.Join(err, app.Close())
	case <-ctx.Done():
		zap.L().Info("получен сигнал остановки, завершаем работу")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		return err
	}
	zap.L().Info("сервис остановлен")
	return nil
}

// newApp собирает зависимости сервиса. Если что-то не поднялось,
// закрывает всё, что успело открыться, включая трассировку.
func newApp(ctx context.Context, cfg *config.Config, shutdownTracing tracing.ShutdownFunc) (*App, error) {
	app := &App{shutdownTracing: shutdownTracing}

	var err error
	if app.repo, err = initRepository(ctx, cfg); err != nil {
		return nil, errors.Join(err, app.Close())
	}
	if app.cache, err = initCache(ctx, cfg); err != nil {
		return nil, errors.Join(err, app.Close())
	}

	enc, err := encoder.New(uint8(cfg.AliasMinLength))
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}

	urlService := shortener.NewURLService(app.repo, app.cache, sequence.New(app.cache), enc, cfg.BaseURL, zap.L(),
		shortener.WithMaxCacheTTL(cfg.CacheMaxTTL),
	)
	app.publisher = initAudit(cfg)
	app.server = &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           setupRouter(urlService, cfg, app.publisher),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return app, nil
}

// startPprof запускает pprof сервер на отдельном адресе
func startPprof(addr string) {
	if addr == "" {
		return
	}
	go func() {
		zap.L().Info("pprof сервер запущен", zap.String("addr", "http://"+addr+"/debug/pprof/"))
		if err := http.ListenAndServe(addr, nil); err != nil {
			zap.L().Warn("ошибка pprof сервера", zap.Error(err))
		}
	}()
}

func printBuildInfo() {
	fmt.Printf("Build version: %s\n", valueOrNA(buildVersion))
	fmt.Printf("Build date: %s\n", valueOrNA(buildDate))
	fmt.Printf("Build commit: %s\n", valueOrNA(buildCommit))
}

func valueOrNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

// initRepository выбирает хранилище: БД, файл или память
func initRepository(ctx context.Context, cfg *config.Config) (repository.MappingRepository, error) {
	switch {
	case cfg.DBurl != "":
		dbInstance, err := db.NewDataBase(ctx, db.NewDBConfig(*cfg))
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		if err := dbInstance.Migrate(); err != nil {
			dbInstance.Close()
			return nil, fmt.Errorf("ошибка выполнения миграций: %w", err)
		}
		zap.L().Info("используется БД репозиторий")
		return database.NewURLRepository(dbInstance.Pool), nil
	case cfg.FilePath != "":
		repo, err := filestorage.NewURLRepository(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("ошибка загрузки файла %s: %w", cfg.FilePath, err)
		}
		zap.L().Info("используется файл", zap.String("path", cfg.FilePath))
		return repo, nil
	default:
		zap.L().Info("используется память")
		return memory.NewURLRepository(), nil
	}
}

// initCache выбирает кэш: Redis, если задан адрес, иначе память процесса
func initCache(ctx context.Context, cfg *config.Config) (repository.CacheStore, error) {
	if cfg.RedisAddr == "" {
		zap.L().Info("используется локальный кэш")
		return cache.NewLocalStore(), nil
	}

	client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("используется Redis", zap.String("addr", cfg.RedisAddr))
	return cache.NewRedisStore(client), nil
}

// initAudit - функция инициализации аудита
func initAudit(cfg *config.Config) *audit.Publisher {
	publisher := audit.NewPublisher()

	// Файловый observer
	if cfg.AuditFile != "" {
		fileObs, err := audit.NewFileObserver(cfg.AuditFile)
		if err != nil {
			zap.L().Warn("не удалось создать file observer", zap.Error(err))
		} else {
			publisher.Subscribe(fileObs)
			zap.L().Info("аудит в файл", zap.String("path", cfg.AuditFile))
		}
	}

	// HTTP observer
	if cfg.AuditURL != "" {
		publisher.Subscribe(audit.NewHTTPObserver(cfg.AuditURL))
		zap.L().Info("аудит на сервер", zap.String("url", cfg.AuditURL))
	}

	return publisher
}

// setupRouter настраивает роуты и middleware
func setupRouter(urlService *shortener.URLService, cfg *config.Config, auditPub *audit.Publisher) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(metrics.HTTPMetrics())
	r.Use(corsMiddleware(cfg.CORSOrigins))
	r.Use(compressor.Compresser())

	// Метрики открыты всем, пока доверенная подсеть не задана
	if cfg.TrustedSubnet != "" {
		r.GET("/metrics", subnet.TrustedSubnetMiddleware(cfg.TrustedSubnet), gin.WrapH(promhttp.Handler()))
	} else {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	handler.Register(r, urlService, auditPub)

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, logger.RequestIDHeader)
	corsCfg.ExposeHeaders = []string{logger.RequestIDHeader}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	return cors.New(corsCfg)
}

func isServerClosed(err error) bool {
	return err == nil || errors.Is(err, http.ErrServerClosed)
}
