package config

// EnvPrefix is handed to envconfig; every field carries an explicit name so
// the prefix only matters for untagged fields.
const EnvPrefix = "CATALOG"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	StorageProviderS3    = "s3"
	StorageProviderLocal = "local"
)

const (
	EnvAppEnv   = "CATALOG_APP_ENV"
	EnvPort     = "CATALOG_APP_PORT"
	EnvLogLevel = "CATALOG_LOG_LEVEL"

	EnvDBDSN    = "CATALOG_DB_DSN"
	EnvDBDriver = "CATALOG_DB_DRIVER"
	EnvDBHost   = "CATALOG_DB_HOST"
	EnvDBPort   = "CATALOG_DB_PORT"
	EnvDBUser   = "CATALOG_DB_USER"
	EnvDBPass   = "CATALOG_DB_PASSWORD"
	EnvDBName   = "CATALOG_DB_NAME"

	EnvRedisURL = "CATALOG_REDIS_URL"

	EnvAuthJWTSecret = "CATALOG_AUTH_JWT_SECRET"

	EnvStorageProvider      = "CATALOG_STORAGE_PROVIDER"
	EnvStorageEndpoint      = "CATALOG_STORAGE_ENDPOINT"
	EnvStoragePublicBaseURL = "CATALOG_STORAGE_PUBLIC_BASE_URL"
	EnvStorageBucket        = "CATALOG_STORAGE_BUCKET"
	EnvStorageLocalDir      = "CATALOG_STORAGE_LOCAL_DIR"

	EnvMaxUploadMB = "CATALOG_MAX_UPLOAD_MB"

	EnvNotificationRetentionDays = "CATALOG_NOTIFICATION_RETENTION_DAYS"
	EnvCORSExtraOrigins          = "CATALOG_CORS_EXTRA_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
