package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageDriverBolt   = "bolt"
	StorageDriverRedis  = "redis"
	StorageDriverMemory = "memory"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	Redis   RedisConfig
	Sync    SyncConfig
	Catalog CatalogConfig
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverBolt, StorageDriverRedis, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == StorageDriverRedis && c.Redis.Addr == "" {
		return errors.New("redis address is required for the redis storage driver")
	}
	if c.Sync.Enabled && c.Sync.NATSURL == "" {
		return errors.New("nats url is required when sync is enabled")
	}
	return nil
}

type AppConfig struct {
	Env      string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	LogLevel string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"STOREFRONT_LOG_FILE"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StorageConfig struct {
	Driver      string        `envconfig:"STOREFRONT_STORAGE_DRIVER" default:"bolt"`
	BoltPath    string        `envconfig:"STOREFRONT_BOLT_PATH" default:"storefront.db"`
	BoltBucket  string        `envconfig:"STOREFRONT_BOLT_BUCKET" default:"storefront"`
	BoltTimeout time.Duration `envconfig:"STOREFRONT_BOLT_TIMEOUT" default:"1s"`
}

type RedisConfig struct {
	Addr      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password  string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB        int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	KeyPrefix string        `envconfig:"STOREFRONT_REDIS_KEY_PREFIX" default:"storefront"`
	TTL       time.Duration `envconfig:"STOREFRONT_REDIS_TTL" default:"168h"`
}

type SyncConfig struct {
	Enabled bool   `envconfig:"STOREFRONT_SYNC_ENABLED" default:"false"`
	NATSURL string `envconfig:"STOREFRONT_NATS_URL"`
	Subject string `envconfig:"STOREFRONT_SYNC_SUBJECT" default:"storefront.cart.snapshot"`
	Workers int    `envconfig:"STOREFRONT_SYNC_WORKERS" default:"4"`
}

type CatalogConfig struct {
	// Path overrides the embedded catalog with a YAML file.
	Path string `envconfig:"STOREFRONT_CATALOG_PATH"`
}
