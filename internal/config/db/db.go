package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Popolzen/linkalias/internal/config"
	migration "github.com/Popolzen/linkalias/migrations"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DBConfig содержит конфигурацию для подключения к БД
type DBConfig struct {
	DBurl           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// DataBase представляет пул подключений к базе данных
type DataBase struct {
	Pool   *pgxpool.Pool
	config DBConfig
}

// NewDBConfig создает новую конфигурацию БД
func NewDBConfig(c config.Config) DBConfig {
	return DBConfig{
		DBurl:           c.DBurl,
		MaxConns:        25,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	}
}

// NewDataBase создает пул и проверяет подключение
func NewDataBase(ctx context.Context, cfg DBConfig) (*DataBase, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DBurl)
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	return &DataBase{Pool: pool, config: cfg}, nil
}

// Migrate применяет миграции через отдельное database/sql подключение
func (d *DataBase) Migrate() error {
	sqlDB, err := sql.Open("pgx", d.config.DBurl)
	if err != nil {
		return fmt.Errorf("не удалось открыть подключение: %w", err)
	}
	defer sqlDB.Close()

	return migration.MigrateUp(sqlDB)
}

// Close закрывает пул
func (d *DataBase) Close() {
	d.Pool.Close()
}
