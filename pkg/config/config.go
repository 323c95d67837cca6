package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Redis   RedisConfig
	Cart    CartConfig
	Catalog CatalogConfig
	CORS    CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POSCENTER_APP_ENV" required:"true"`
	Port         string `envconfig:"POSCENTER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"POSCENTER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POSCENTER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points the gateway at the upstream POS REST API.
type BackendConfig struct {
	BaseURL     string        `envconfig:"POSCENTER_BACKEND_BASE_URL" required:"true"`
	ListTimeout time.Duration `envconfig:"POSCENTER_BACKEND_LIST_TIMEOUT" default:"5s"`
	ListLimit   int           `envconfig:"POSCENTER_BACKEND_LIST_LIMIT" default:"100"`
}

func (b BackendConfig) validate() error {
	if !strings.HasPrefix(b.BaseURL, "http://") && !strings.HasPrefix(b.BaseURL, "https://") {
		return fmt.Errorf("%s must be an http(s) url", EnvBackendBaseURL)
	}
	if b.ListTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvBackendListTimeout)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"POSCENTER_REDIS_URL"`
	Address      string        `envconfig:"POSCENTER_REDIS_ADDR"`
	Password     string        `envconfig:"POSCENTER_REDIS_PASSWORD"`
	DB           int           `envconfig:"POSCENTER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POSCENTER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POSCENTER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POSCENTER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POSCENTER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POSCENTER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all. The catalog
// cache degrades to pass-through when it is not.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// CartConfig bounds the in-memory order-building sessions.
type CartConfig struct {
	TTL           time.Duration `envconfig:"POSCENTER_CART_TTL" default:"2h"`
	SweepInterval time.Duration `envconfig:"POSCENTER_CART_SWEEP_INTERVAL" default:"5m"`
	MaxItems      int           `envconfig:"POSCENTER_CART_MAX_ITEMS" default:"200"`
}

type CatalogConfig struct {
	CacheTTL time.Duration `envconfig:"POSCENTER_CATALOG_CACHE_TTL" default:"60s"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"POSCENTER_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
