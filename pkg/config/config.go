package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Auth         AuthConfig
	Storage      StorageConfig
	Media        MediaConfig
	Geocode      GeocodeConfig
	Cron         CronConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CATALOG_APP_ENV" required:"true"`
	Port         string `envconfig:"CATALOG_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"CATALOG_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CATALOG_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CATALOG_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CATALOG_DB_DSN"`
	Driver string `envconfig:"CATALOG_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CATALOG_DB_HOST"`
	LegacyPort     int    `envconfig:"CATALOG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CATALOG_DB_USER"`
	LegacyPassword string `envconfig:"CATALOG_DB_PASSWORD"`
	LegacyName     string `envconfig:"CATALOG_DB_NAME"`
	LegacySSLMode  string `envconfig:"CATALOG_DB_SSLMODE" default:"require"`

	MaxOpenConns    int           `envconfig:"CATALOG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CATALOG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CATALOG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CATALOG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

// RedisConfig is optional for the API (idempotency is skipped without it) and
// required by the cron worker.
type RedisConfig struct {
	URL          string        `envconfig:"CATALOG_REDIS_URL"`
	Address      string        `envconfig:"CATALOG_REDIS_ADDR"`
	Password     string        `envconfig:"CATALOG_REDIS_PASSWORD"`
	DB           int           `envconfig:"CATALOG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CATALOG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CATALOG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CATALOG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CATALOG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CATALOG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// AuthConfig guards admin writes. An empty secret disables the check.
type AuthConfig struct {
	JWTSecret    string `envconfig:"CATALOG_AUTH_JWT_SECRET"`
	JWTIssuer    string `envconfig:"CATALOG_AUTH_JWT_ISSUER"`
	JWTAudience  string `envconfig:"CATALOG_AUTH_JWT_AUDIENCE"`
	RequiredRole string `envconfig:"CATALOG_AUTH_REQUIRED_ROLE"`
}

func (a AuthConfig) Enabled() bool {
	return strings.TrimSpace(a.JWTSecret) != ""
}

type StorageConfig struct {
	Provider        string `envconfig:"CATALOG_STORAGE_PROVIDER" default:"s3"`
	Endpoint        string `envconfig:"CATALOG_STORAGE_ENDPOINT"`
	Region          string `envconfig:"CATALOG_STORAGE_REGION" default:"us-east-1"`
	AccessKeyID     string `envconfig:"CATALOG_STORAGE_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"CATALOG_STORAGE_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `envconfig:"CATALOG_STORAGE_USE_PATH_STYLE" default:"true"`
	PublicBaseURL   string `envconfig:"CATALOG_STORAGE_PUBLIC_BASE_URL"`
	Bucket          string `envconfig:"CATALOG_STORAGE_BUCKET"`
	LocalDir        string `envconfig:"CATALOG_STORAGE_LOCAL_DIR" default:"./uploads"`
}

func (s StorageConfig) IsLocal() bool {
	return strings.EqualFold(strings.TrimSpace(s.Provider), StorageProviderLocal)
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"CATALOG_MAX_UPLOAD_MB" default:"10"`
}

// MaxBytes is the upload limit in bytes; 10 MB when unset.
func (m MediaConfig) MaxBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

type GeocodeConfig struct {
	BaseURL   string        `envconfig:"CATALOG_GEOCODE_BASE_URL" default:"https://nominatim.openstreetmap.org"`
	UserAgent string        `envconfig:"CATALOG_GEOCODE_USER_AGENT" default:"bigbestmart-catalog/1.0"`
	Timeout   time.Duration `envconfig:"CATALOG_GEOCODE_TIMEOUT" default:"10s"`
	// RateLimitPerMinute caps location searches per client IP; 0 disables it.
	// Only enforced when Redis is configured.
	RateLimitPerMinute int `envconfig:"CATALOG_GEOCODE_RATE_LIMIT_PER_MINUTE" default:"30"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"CATALOG_CRON_INTERVAL" default:"24h"`
	NotificationRetentionDays int           `envconfig:"CATALOG_NOTIFICATION_RETENTION_DAYS" default:"30"`
}

type CORSConfig struct {
	ExtraOrigins []string `envconfig:"CATALOG_CORS_EXTRA_ORIGINS"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CATALOG_AUTO_MIGRATE" default:"false"`
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case StorageProviderLocal:
		if strings.TrimSpace(s.LocalDir) == "" {
			return fmt.Errorf("%s is required for the local storage provider", EnvStorageLocalDir)
		}
		return nil
	case StorageProviderS3:
		missing := []string{}
		if strings.TrimSpace(s.Endpoint) == "" {
			missing = append(missing, EnvStorageEndpoint)
		}
		if strings.TrimSpace(s.PublicBaseURL) == "" {
			missing = append(missing, EnvStoragePublicBaseURL)
		}
		if len(missing) > 0 {
			return fmt.Errorf("s3 storage requires %s", strings.Join(missing, ", "))
		}
		return nil
	default:
		return fmt.Errorf("unsupported storage provider %q", s.Provider)
	}
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}
	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}
	db.DSN = u.String()
	return nil
}
