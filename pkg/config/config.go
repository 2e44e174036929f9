package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "FAMCENTER"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Stripe       StripeConfig
	Sendgrid     SendgridConfig
	Webhook      WebhookConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FAMCENTER_APP_ENV" required:"true"`
	Port         string `envconfig:"FAMCENTER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FAMCENTER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FAMCENTER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"FAMCENTER_DB_DSN"`

	Host     string `envconfig:"FAMCENTER_DB_HOST"`
	Port     int    `envconfig:"FAMCENTER_DB_PORT" default:"5432"`
	User     string `envconfig:"FAMCENTER_DB_USER"`
	Password string `envconfig:"FAMCENTER_DB_PASSWORD"`
	Name     string `envconfig:"FAMCENTER_DB_NAME"`
	SSLMode  string `envconfig:"FAMCENTER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FAMCENTER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FAMCENTER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FAMCENTER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FAMCENTER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FAMCENTER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FAMCENTER_REDIS_ADDR"`
	Password     string        `envconfig:"FAMCENTER_REDIS_PASSWORD"`
	DB           int           `envconfig:"FAMCENTER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FAMCENTER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FAMCENTER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FAMCENTER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FAMCENTER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FAMCENTER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FAMCENTER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FAMCENTER_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FAMCENTER_JWT_EXPIRATION_MINUTES" default:"60"`
}

type StripeConfig struct {
	APIKey string `envconfig:"FAMCENTER_STRIPE_API_KEY"`
	Secret string `envconfig:"FAMCENTER_STRIPE_SECRET"`
	Env    string `envconfig:"FAMCENTER_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type SendgridConfig struct {
	APIKey      string `envconfig:"FAMCENTER_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"FAMCENTER_SENDGRID_FROM_EMAIL"`
}

type WebhookConfig struct {
	// HandleTimeout bounds one delivery end to end, including the optional
	// checkout session re-fetch and all store updates.
	HandleTimeout  time.Duration `envconfig:"FAMCENTER_WEBHOOK_HANDLE_TIMEOUT" default:"25s"`
	IdempotencyTTL time.Duration `envconfig:"FAMCENTER_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FAMCENTER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FAMCENTER_AUTO_MIGRATE" default:"false"`
}

const (
	EnvDBDSN  = "FAMCENTER_DB_DSN"
	EnvDBHost = "FAMCENTER_DB_HOST"
	EnvDBUser = "FAMCENTER_DB_USER"
	EnvDBName = "FAMCENTER_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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
