package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Storage      StorageConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Order        OrderConfig
	Auth         AuthConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GOLDSTORE_APP_ENV" required:"true"`
	Port         string `envconfig:"GOLDSTORE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GOLDSTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GOLDSTORE_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"GOLDSTORE_CORS_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects the persistent key-value backend and the key names each store owns.
type StorageConfig struct {
	Driver    string `envconfig:"GOLDSTORE_STORAGE_DRIVER" default:"redis"`
	CartKey   string `envconfig:"GOLDSTORE_STORAGE_CART_KEY" default:"cart"`
	OrdersKey string `envconfig:"GOLDSTORE_STORAGE_ORDERS_KEY" default:"orders"`
	TokenKey  string `envconfig:"GOLDSTORE_STORAGE_TOKEN_KEY" default:"token"`
	UserKey   string `envconfig:"GOLDSTORE_STORAGE_USER_KEY" default:"user"`
}

// NormalizedDriver returns the lower-cased driver name.
func (s StorageConfig) NormalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}

// IsSQL reports whether the driver is backed by gorm.
func (s StorageConfig) IsSQL() bool {
	switch s.NormalizedDriver() {
	case StorageDriverPostgres, StorageDriverSQLite:
		return true
	}
	return false
}

type DBConfig struct {
	DSN string `envconfig:"GOLDSTORE_DB_DSN"`

	MaxOpenConns    int           `envconfig:"GOLDSTORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GOLDSTORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GOLDSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GOLDSTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GOLDSTORE_REDIS_URL"`
	Address      string        `envconfig:"GOLDSTORE_REDIS_ADDR"`
	Password     string        `envconfig:"GOLDSTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GOLDSTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GOLDSTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GOLDSTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GOLDSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GOLDSTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GOLDSTORE_REDIS_WRITE_TIMEOUT" default:"5s"`

	// StateTTL expires client state nobody has touched for this long. Zero keeps it forever.
	StateTTL time.Duration `envconfig:"GOLDSTORE_REDIS_STATE_TTL" default:"0"`
}

// SessionConfig controls how long rehydrated client sessions stay in memory.
type SessionConfig struct {
	IdleTTL       time.Duration `envconfig:"GOLDSTORE_SESSION_IDLE_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"GOLDSTORE_SESSION_SWEEP_INTERVAL" default:"1m"`
}

// OrderConfig holds the snapshot values stamped on locally completed orders.
type OrderConfig struct {
	EstimateDays int    `envconfig:"GOLDSTORE_ORDER_ESTIMATE_DAYS" default:"7"`
	StatusLabel  string `envconfig:"GOLDSTORE_ORDER_STATUS_LABEL" default:"Processing"`
}

// EstimateWindow returns the delivery estimate offset applied at completion time.
func (o OrderConfig) EstimateWindow() time.Duration {
	if o.EstimateDays <= 0 {
		return 0
	}
	return time.Duration(o.EstimateDays) * 24 * time.Hour
}

type AuthConfig struct {
	SuperuserRole string `envconfig:"GOLDSTORE_AUTH_SUPERUSER_ROLE" default:"superadmin"`
	LoginRoute    string `envconfig:"GOLDSTORE_AUTH_LOGIN_ROUTE" default:"/login"`
	HomeRoute     string `envconfig:"GOLDSTORE_AUTH_HOME_ROUTE" default:"/"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GOLDSTORE_AUTO_MIGRATE" default:"false"`
}

func (c *Config) validate() error {
	switch c.Storage.NormalizedDriver() {
	case StorageDriverMemory:
	case StorageDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the redis driver", EnvRedisURL, EnvRedisAddr)
		}
	case StorageDriverPostgres, StorageDriverSQLite:
		if c.DB.DSN == "" {
			return fmt.Errorf("%s is required for the %s driver", EnvDBDSN, c.Storage.NormalizedDriver())
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageDriver, c.Storage.Driver)
	}

	keys := map[string]string{
		EnvCartKey:   c.Storage.CartKey,
		EnvOrdersKey: c.Storage.OrdersKey,
		EnvTokenKey:  c.Storage.TokenKey,
		EnvUserKey:   c.Storage.UserKey,
	}
	seen := map[string]string{}
	for env, key := range keys {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("%s must not be empty", env)
		}
		if other, ok := seen[key]; ok {
			return fmt.Errorf("%s and %s share the storage key %q", other, env, key)
		}
		seen[key] = env
	}
	return nil
}
