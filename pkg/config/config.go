package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "CETAKIN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Mongo         MongoConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	ImageHost     ImageHostConfig
	Catalog       CatalogConfig
	Upload        UploadConfig
	Mailer        MailerConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CETAKIN_APP_ENV" required:"true"`
	Port         string `envconfig:"CETAKIN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CETAKIN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CETAKIN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CETAKIN_DB_DSN"`
	Driver string `envconfig:"CETAKIN_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"CETAKIN_DB_HOST"`
	Port     int    `envconfig:"CETAKIN_DB_PORT" default:"5432"`
	User     string `envconfig:"CETAKIN_DB_USER"`
	Password string `envconfig:"CETAKIN_DB_PASSWORD"`
	Name     string `envconfig:"CETAKIN_DB_NAME"`
	SSLMode  string `envconfig:"CETAKIN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CETAKIN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CETAKIN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CETAKIN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CETAKIN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CETAKIN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CETAKIN_REDIS_ADDR"`
	Password     string        `envconfig:"CETAKIN_REDIS_PASSWORD"`
	DB           int           `envconfig:"CETAKIN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CETAKIN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CETAKIN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CETAKIN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CETAKIN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CETAKIN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type MongoConfig struct {
	URI            string        `envconfig:"CETAKIN_MONGO_URI" required:"true"`
	Database       string        `envconfig:"CETAKIN_MONGO_DATABASE" default:"cetakin"`
	ConnectTimeout time.Duration `envconfig:"CETAKIN_MONGO_CONNECT_TIMEOUT" default:"10s"`
	OpTimeout      time.Duration `envconfig:"CETAKIN_MONGO_OP_TIMEOUT" default:"10s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CETAKIN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CETAKIN_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CETAKIN_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	LinkWindow     time.Duration `envconfig:"CETAKIN_AUTH_RATE_LIMIT_LINK_WINDOW" default:"5m"`
	LinkEmailLimit int           `envconfig:"CETAKIN_AUTH_RATE_LIMIT_LINK_EMAIL_LIMIT" default:"3"`
	LinkIPLimit    int           `envconfig:"CETAKIN_AUTH_RATE_LIMIT_LINK_IP_LIMIT" default:"20"`
}

type ImageHostConfig struct {
	UploadURL string        `envconfig:"CETAKIN_IMAGE_HOST_UPLOAD_URL" required:"true"`
	APIKey    string        `envconfig:"CETAKIN_IMAGE_HOST_API_KEY" required:"true"`
	Timeout   time.Duration `envconfig:"CETAKIN_IMAGE_HOST_TIMEOUT" default:"30s"`
}

type CatalogConfig struct {
	PaperSourceURL string        `envconfig:"CETAKIN_CATALOG_PAPER_SOURCE_URL" required:"true"`
	FetchTimeout   time.Duration `envconfig:"CETAKIN_CATALOG_FETCH_TIMEOUT" default:"10s"`
}

type UploadConfig struct {
	MaxAssets       int   `envconfig:"CETAKIN_UPLOAD_MAX_ASSETS" default:"5"`
	MaxFileSizeByte int64 `envconfig:"CETAKIN_UPLOAD_MAX_FILE_BYTES" default:"10485760"`
}

type MailerConfig struct {
	APIURL      string `envconfig:"CETAKIN_MAILER_API_URL"`
	APIKey      string `envconfig:"CETAKIN_MAILER_API_KEY"`
	DefaultFrom string `envconfig:"CETAKIN_MAILER_FROM_EMAIL" default:"no-reply@cetakin.id"`
	LinkBaseURL string `envconfig:"CETAKIN_MAILER_LINK_BASE_URL" required:"true"`
	LinkTTL     time.Duration `envconfig:"CETAKIN_MAILER_LINK_TTL" default:"15m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CETAKIN_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	required := map[string]string{
		"CETAKIN_DB_HOST": db.Host,
		"CETAKIN_DB_USER": db.User,
		"CETAKIN_DB_NAME": db.Name,
	}
	for _, key := range []string{"CETAKIN_DB_HOST", "CETAKIN_DB_USER", "CETAKIN_DB_NAME"} {
		if required[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either CETAKIN_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
