package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the platform.
const EnvPrefix = "SIMASOSIAL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Midtrans     MidtransConfig
	SMTP         SMTPConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Eventing     EventingConfig
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
	Env          string `envconfig:"SIMASOSIAL_APP_ENV" required:"true"`
	Port         string `envconfig:"SIMASOSIAL_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"SIMASOSIAL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SIMASOSIAL_LOG_WARN_STACK" default:"false"`
	BaseURL      string `envconfig:"SIMASOSIAL_APP_BASE_URL" default:"http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"SIMASOSIAL_DB_DSN"`

	Host     string `envconfig:"SIMASOSIAL_DB_HOST"`
	Port     int    `envconfig:"SIMASOSIAL_DB_PORT" default:"5432"`
	User     string `envconfig:"SIMASOSIAL_DB_USER"`
	Password string `envconfig:"SIMASOSIAL_DB_PASSWORD"`
	Name     string `envconfig:"SIMASOSIAL_DB_NAME"`
	SSLMode  string `envconfig:"SIMASOSIAL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SIMASOSIAL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SIMASOSIAL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SIMASOSIAL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SIMASOSIAL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a postgres DSN from the discrete fields when one was
// not provided directly.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database DSN or host/user/name are required")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"SIMASOSIAL_REDIS_URL"`
	Address      string        `envconfig:"SIMASOSIAL_REDIS_ADDR"`
	Password     string        `envconfig:"SIMASOSIAL_REDIS_PASSWORD"`
	DB           int           `envconfig:"SIMASOSIAL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SIMASOSIAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SIMASOSIAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SIMASOSIAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SIMASOSIAL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SIMASOSIAL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"SIMASOSIAL_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"SIMASOSIAL_JWT_ISSUER" default:"simasosial"`
}

type MidtransConfig struct {
	ServerKey   string `envconfig:"SIMASOSIAL_MIDTRANS_SERVER_KEY" required:"true"`
	ClientKey   string `envconfig:"SIMASOSIAL_MIDTRANS_CLIENT_KEY"`
	Environment string `envconfig:"SIMASOSIAL_MIDTRANS_ENV" default:"sandbox"`
}

func (m MidtransConfig) IsProduction() bool {
	return strings.EqualFold(m.Environment, "production")
}

type SMTPConfig struct {
	Host        string `envconfig:"SIMASOSIAL_SMTP_HOST"`
	Port        int    `envconfig:"SIMASOSIAL_SMTP_PORT" default:"587"`
	Username    string `envconfig:"SIMASOSIAL_SMTP_USERNAME"`
	Password    string `envconfig:"SIMASOSIAL_SMTP_PASSWORD"`
	FromAddress string `envconfig:"SIMASOSIAL_SMTP_FROM" default:"noreply@simasosial.ac.id"`
	FromName    string `envconfig:"SIMASOSIAL_SMTP_FROM_NAME" default:"SIMASOSIAL FST"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"SIMASOSIAL_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	ReceiptsTopic        string `envconfig:"SIMASOSIAL_PUBSUB_RECEIPTS_TOPIC" default:"simasosial-receipts"`
	ReceiptsSubscription string `envconfig:"SIMASOSIAL_PUBSUB_RECEIPTS_SUBSCRIPTION" default:"simasosial-receipts-mailer"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"SIMASOSIAL_OUTBOX_BATCH_SIZE" default:"50"`
	PollInterval   time.Duration `envconfig:"SIMASOSIAL_OUTBOX_POLL_INTERVAL" default:"500ms"`
	PublishTimeout time.Duration `envconfig:"SIMASOSIAL_OUTBOX_PUBLISH_TIMEOUT" default:"15s"`
	MaxAttempts    int           `envconfig:"SIMASOSIAL_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"SIMASOSIAL_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SIMASOSIAL_AUTO_MIGRATE" default:"false"`
}
