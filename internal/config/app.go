package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPServer struct {
	Port        string `mapstructure:"port"`
	MetricsPort string `mapstructure:"metrics_port"`
}

type DbServer struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Pass     string `mapstructure:"pass"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (config *DbServer) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		config.User, config.Pass, config.Host, config.Port, config.Name,
	)
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// RatesProvider points at a fixer.io compatible endpoint. Requests go to BaseURL+AccessKey.
type RatesProvider struct {
	BaseURL   string `mapstructure:"base_url"`
	AccessKey string `mapstructure:"access_key"`
}

type Cache struct {
	Backend  string `mapstructure:"backend"`
	Key      string `mapstructure:"key"`
	MaxItems int64  `mapstructure:"max_items"`
}

type Redis struct {
	Addr string `mapstructure:"addr"`
	Pass string `mapstructure:"pass"`
	DB   int    `mapstructure:"db"`
}

type Scheduler struct {
	Hour     uint   `mapstructure:"hour"`
	Minute   uint   `mapstructure:"minute"`
	Timezone string `mapstructure:"timezone"`
}

type Conversion struct {
	Targets []string `mapstructure:"targets"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	HTTPServer    HTTPServer    `mapstructure:"http_server"`
	DbServer      DbServer      `mapstructure:"db_server"`
	HTTPClient    HTTPClient    `mapstructure:"http_client"`
	RatesProvider RatesProvider `mapstructure:"rates_provider"`
	Cache         Cache         `mapstructure:"cache"`
	Redis         Redis         `mapstructure:"redis"`
	Scheduler     Scheduler     `mapstructure:"scheduler"`
	Conversion    Conversion    `mapstructure:"conversion"`
	Logging       Logging       `mapstructure:"logging"`
}

const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

func (cfg *AppConfig) Validate() error {
	if cfg.RatesProvider.BaseURL == "" {
		return errors.New("rates provider base url is required")
	}
	if cfg.RatesProvider.AccessKey == "" {
		return errors.New("rates provider access key is required")
	}
	switch cfg.Cache.Backend {
	case CacheBackendRedis, CacheBackendMemory:
	default:
		return fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	if cfg.Scheduler.Hour > 23 || cfg.Scheduler.Minute > 59 {
		return fmt.Errorf("invalid scheduler time %02d:%02d", cfg.Scheduler.Hour, cfg.Scheduler.Minute)
	}
	if len(cfg.Conversion.Targets) == 0 {
		return errors.New("at least one conversion target is required")
	}
	return nil
}

// Init reads config.yaml from the working directory, then applies .env and environment overrides.
func Init() (*AppConfig, error) {
	return Load("config.yaml")
}

func Load(path string) (*AppConfig, error) {
	var cfg AppConfig

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetDefault("http_server.port", "8080")
	v.SetDefault("http_server.metrics_port", "9090")
	v.SetDefault("db_server.max_conns", 10)
	v.SetDefault("http_client.timeout_seconds", 10)
	v.SetDefault("cache.backend", CacheBackendRedis)
	v.SetDefault("cache.key", "currency_rates")
	v.SetDefault("cache.max_items", 16)
	v.SetDefault("scheduler.hour", 18)
	v.SetDefault("scheduler.minute", 30)
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("conversion.targets", []string{"EUR", "USD", "GBP", "RUB"})
	v.SetDefault("logging.level", "info")

	// db server env vars
	_ = v.BindEnv("db_server.host", "DB_HOST")
	_ = v.BindEnv("db_server.port", "DB_PORT")
	_ = v.BindEnv("db_server.user", "DB_USER")
	_ = v.BindEnv("db_server.pass", "DB_PASS")
	_ = v.BindEnv("db_server.name", "DB_NAME")
	_ = v.BindEnv("db_server.max_conns", "DB_MAX_CONNS")

	// redis env vars
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.pass", "REDIS_PASS")
	_ = v.BindEnv("redis.db", "REDIS_DB")

	// rates provider env vars
	_ = v.BindEnv("rates_provider.base_url", "CURRENCY_FETCH_URL")
	_ = v.BindEnv("rates_provider.access_key", "CURRENCY_ACCESS_KEY")

	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")
	_ = v.BindEnv("cache.backend", "CACHE_BACKEND")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	for i, code := range cfg.Conversion.Targets {
		cfg.Conversion.Targets[i] = strings.ToUpper(strings.TrimSpace(code))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
