package config

const (
	EnvPrefix = "PHOOL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "PHOOL_APP_ENV"
	EnvPort     = "PHOOL_APP_PORT"
	EnvLogLevel = "PHOOL_LOG_LEVEL"

	EnvDBDSN  = "PHOOL_DB_DSN"
	EnvDBHost = "PHOOL_DB_HOST"
	EnvDBUser = "PHOOL_DB_USER"
	EnvDBName = "PHOOL_DB_NAME"
	EnvDBPort = "PHOOL_DB_PORT"

	EnvUseSQLite = "PHOOL_USE_SQLITE"
	EnvRedisURL  = "PHOOL_REDIS_URL"

	EnvCacheProductsTTL = "PHOOL_CACHE_PRODUCTS_TTL"
	EnvCacheCardsTTL    = "PHOOL_CACHE_CARDS_TTL"
	EnvPromoCodes       = "PHOOL_PROMO_CODES"
	EnvGiftWrapCost     = "PHOOL_GIFT_WRAP_COST"
	EnvJWTSecret        = "PHOOL_JWT_SECRET"
	EnvSheetsURL        = "PHOOL_GOOGLE_SHEETS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
