package config

const (
	EnvPrefix = "GOLDSTORE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "GOLDSTORE_APP_ENV"
	EnvPort     = "GOLDSTORE_APP_PORT"
	EnvLogLevel = "GOLDSTORE_LOG_LEVEL"

	EnvStorageDriver = "GOLDSTORE_STORAGE_DRIVER"
	EnvCartKey       = "GOLDSTORE_STORAGE_CART_KEY"
	EnvOrdersKey     = "GOLDSTORE_STORAGE_ORDERS_KEY"
	EnvTokenKey      = "GOLDSTORE_STORAGE_TOKEN_KEY"
	EnvUserKey       = "GOLDSTORE_STORAGE_USER_KEY"

	EnvDBDSN      = "GOLDSTORE_DB_DSN"
	EnvRedisURL   = "GOLDSTORE_REDIS_URL"
	EnvRedisAddr  = "GOLDSTORE_REDIS_ADDR"
	EnvSessionTTL = "GOLDSTORE_SESSION_IDLE_TTL"

	EnvSuperuserRole = "GOLDSTORE_AUTH_SUPERUSER_ROLE"
	EnvEstimateDays  = "GOLDSTORE_ORDER_ESTIMATE_DAYS"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
)
