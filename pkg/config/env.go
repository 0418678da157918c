package config

// EnvPrefix namespaces every environment variable read by this service.
const EnvPrefix = "ROADWATCH"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv                 = "ROADWATCH_APP_ENV"
	EnvPort                   = "ROADWATCH_APP_PORT"
	EnvDBDSN                  = "ROADWATCH_DB_DSN"
	EnvDBHost                 = "ROADWATCH_DB_HOST"
	EnvDBUser                 = "ROADWATCH_DB_USER"
	EnvDBName                 = "ROADWATCH_DB_NAME"
	EnvRedisURL               = "ROADWATCH_REDIS_URL"
	EnvJWTSecret              = "ROADWATCH_JWT_SECRET"
	EnvJWTIssuer              = "ROADWATCH_JWT_ISSUER"
	EnvJWTExpMins             = "ROADWATCH_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "ROADWATCH_REFRESH_TOKEN_TTL_MINUTES"
	EnvMLBaseURL              = "ROADWATCH_ML_BASE_URL"
	EnvMLTimeout              = "ROADWATCH_ML_TIMEOUT"
	EnvMediaUploadDir         = "ROADWATCH_MEDIA_UPLOAD_DIR"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
