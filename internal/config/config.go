package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultServerAddr    = ":8080"
	DefaultBaseURL       = "http://localhost:8080"
	DefaultFilePath      = "storage.json"
	DefaultAuditFilePath = "audit.log"
	DefaultPprofAddr     = "localhost:6060"
	DefaultLogLevel      = "info"
	DefaultDotEnvPath    = ".env"
)

// Config содержит конфигурацию приложения.
// Порядок применения: значения по умолчанию, файл конфигурации, .env,
// переменные окружения, флаги командной строки.
type Config struct {
	ServerAddr     string   `json:"server_address" yaml:"server_address" env:"SERVER_ADDRESS"`
	BaseURL        string   `json:"base_url" yaml:"base_url" env:"BASE_URL"`
	FilePath       string   `json:"file_storage_path" yaml:"file_storage_path" env:"FILE_STORAGE_PATH"`
	DBurl          string   `json:"database_dsn" yaml:"database_dsn" env:"DATABASE_DSN"`
	RedisAddr      string   `json:"redis_addr" yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword  string   `json:"redis_password" yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB        int      `json:"redis_db" yaml:"redis_db" env:"REDIS_DB"`
	AliasMinLength int      `json:"alias_min_length" yaml:"alias_min_length" env:"ALIAS_MIN_LENGTH"`
	LogLevel       string   `json:"log_level" yaml:"log_level" env:"LOG_LEVEL"`
	AuditFile      string   `json:"audit_file" yaml:"audit_file" env:"AUDIT_FILE"`
	AuditURL       string   `json:"audit_url" yaml:"audit_url" env:"AUDIT_URL"`
	PprofAddr      string   `json:"pprof_address" yaml:"pprof_address" env:"PPROF_ADDRESS"`
	EnableHTTPS    bool     `json:"enable_https" yaml:"enable_https" env:"ENABLE_HTTPS"`
	CertFile       string   `json:"cert_file" yaml:"cert_file" env:"CERT_FILE"`
	KeyFile        string   `json:"key_file" yaml:"key_file" env:"KEY_FILE"`
	OTLPEndpoint   string   `json:"otlp_endpoint" yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	CORSOrigins    []string `json:"cors_origins" yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	TrustedSubnet  string   `json:"trusted_subnet" yaml:"trusted_subnet" env:"TRUSTED_SUBNET"`
	// CacheMaxTTL срок жизни в кэше для бессрочных ссылок, 0 - без ограничения
	CacheMaxTTL time.Duration `json:"cache_max_ttl" yaml:"cache_max_ttl" env:"CACHE_MAX_TTL"`
}

func defaults() *Config {
	return &Config{
		ServerAddr: DefaultServerAddr,
		BaseURL:    DefaultBaseURL,
		FilePath:   DefaultFilePath,
		AuditFile:  DefaultAuditFilePath,
		PprofAddr:  DefaultPprofAddr,
		LogLevel:   DefaultLogLevel,
	}
}

// Load собирает конфигурацию из всех источников. args - аргументы без имени программы.
func Load(args []string) (*Config, error) {
	c := defaults()

	if err := c.loadFromFile(getConfigPath(args)); err != nil {
		return nil, err
	}
	if err := loadDotEnv(DefaultDotEnvPath); err != nil {
		return nil, err
	}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
	}
	if err := c.parseFlags(args); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func getConfigPath(args []string) string {
	for i, arg := range args {
		if (arg == "-c" || arg == "-config") && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(arg, "-config="); ok {
			return v
		}
		if v, ok := strings.CutPrefix(arg, "-c="); ok {
			return v
		}
	}
	return os.Getenv("CONFIG")
}

// loadFromFile читает JSON или YAML, формат определяется по расширению
func (c *Config) loadFromFile(filename string) error {
	if filename == "" {
		return nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("ошибка разбора файла конфигурации %s: %w", filename, err)
	}
	return nil
}

// loadDotEnv дополняет окружение значениями из .env, не перетирая уже заданные
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ошибка чтения %s: %w", path, err)
	}
	return nil
}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("linkalias", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.ServerAddr, "a", c.ServerAddr, "server host")
	fs.StringVar(&c.BaseURL, "b", c.BaseURL, "base url for short links")
	fs.StringVar(&c.FilePath, "f", c.FilePath, "file storage path")
	fs.StringVar(&c.DBurl, "d", c.DBurl, "database DSN")
	fs.StringVar(&c.RedisAddr, "r", c.RedisAddr, "redis address")
	fs.StringVar(&c.LogLevel, "l", c.LogLevel, "log level")
	fs.StringVar(&c.AuditFile, "audit-file", c.AuditFile, "audit file path")
	fs.StringVar(&c.AuditURL, "audit-url", c.AuditURL, "audit server URL")
	fs.StringVar(&c.PprofAddr, "pprof", c.PprofAddr, "pprof server address")
	fs.BoolVar(&c.EnableHTTPS, "s", c.EnableHTTPS, "enable HTTPS")
	fs.StringVar(&c.TrustedSubnet, "t", c.TrustedSubnet, "trusted subnet CIDR for /metrics")
	fs.DurationVar(&c.CacheMaxTTL, "cache-max-ttl", c.CacheMaxTTL, "cache TTL cap for links without expiration")
	fs.String("c", "", "config file path")
	fs.String("config", "", "config file path")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("ошибка разбора флагов: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.AliasMinLength < 0 || c.AliasMinLength > 255 {
		return fmt.Errorf("ALIAS_MIN_LENGTH должен быть от 0 до 255, получено %d", c.AliasMinLength)
	}
	if c.EnableHTTPS && (c.CertFile == "" || c.KeyFile == "") {
		return errors.New("для HTTPS нужны CERT_FILE и KEY_FILE")
	}
	if c.CacheMaxTTL < 0 {
		return fmt.Errorf("CACHE_MAX_TTL не может быть отрицательным, получено %s", c.CacheMaxTTL)
	}
	if c.TrustedSubnet != "" {
		if _, _, err := net.ParseCIDR(c.TrustedSubnet); err != nil {
			return fmt.Errorf("невалидный TRUSTED_SUBNET: %w", err)
		}
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}
