package config

// EnvPrefix is passed to envconfig; variable names are fully qualified in the
// struct tags so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "GCOMMERCE_APP_ENV"
	EnvPort       = "GCOMMERCE_APP_PORT"
	EnvDBDSN      = "GCOMMERCE_DB_DSN"
	EnvDBHost     = "GCOMMERCE_DB_HOST"
	EnvDBUser     = "GCOMMERCE_DB_USER"
	EnvDBName     = "GCOMMERCE_DB_NAME"
	EnvRedisURL   = "GCOMMERCE_REDIS_URL"
	EnvJWTSecret  = "GCOMMERCE_JWT_SECRET"
	EnvJWTIssuer  = "GCOMMERCE_JWT_ISSUER"
	EnvJWTExpMins = "GCOMMERCE_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{
	EnvDBHost,
	EnvDBUser,
	EnvDBName,
}
