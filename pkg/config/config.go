package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "KIPPU_DB_DSN"
	EnvDBHost = "KIPPU_DB_HOST"
	EnvDBUser = "KIPPU_DB_USER"
	EnvDBName = "KIPPU_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Shopify      ShopifyConfig
	Points       PointsConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"KIPPU_APP_ENV" required:"true"`
	Port         string `envconfig:"KIPPU_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KIPPU_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KIPPU_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"KIPPU_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"KIPPU_DB_DSN"`
	Driver string `envconfig:"KIPPU_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KIPPU_DB_HOST"`
	LegacyPort     int    `envconfig:"KIPPU_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KIPPU_DB_USER"`
	LegacyPassword string `envconfig:"KIPPU_DB_PASSWORD"`
	LegacyName     string `envconfig:"KIPPU_DB_NAME"`
	LegacySSLMode  string `envconfig:"KIPPU_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KIPPU_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KIPPU_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KIPPU_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KIPPU_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KIPPU_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KIPPU_REDIS_ADDR"`
	Password     string        `envconfig:"KIPPU_REDIS_PASSWORD"`
	DB           int           `envconfig:"KIPPU_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KIPPU_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KIPPU_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KIPPU_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KIPPU_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KIPPU_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KIPPU_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KIPPU_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KIPPU_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"KIPPU_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"KIPPU_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KIPPU_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KIPPU_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KIPPU_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KIPPU_ARGON_KEY_LEN" default:"32"`
}

type ShopifyConfig struct {
	ShopDomain    string        `envconfig:"KIPPU_SHOPIFY_SHOP_DOMAIN" required:"true"`
	AccessToken   string        `envconfig:"KIPPU_SHOPIFY_ACCESS_TOKEN" required:"true"`
	WebhookSecret string        `envconfig:"KIPPU_SHOPIFY_WEBHOOK_SECRET" required:"true"`
	APIVersion    string        `envconfig:"KIPPU_SHOPIFY_API_VERSION" default:"2024-10"`
	Timeout       time.Duration `envconfig:"KIPPU_SHOPIFY_TIMEOUT" default:"10s"`
}

type PointsConfig struct {
	SignupBonus int `envconfig:"KIPPU_POINTS_SIGNUP_BONUS" default:"500"`
	OrderBonus  int `envconfig:"KIPPU_POINTS_ORDER_BONUS" default:"100"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KIPPU_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KIPPU_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"KIPPU_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"KIPPU_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"KIPPU_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	TicketsTopic        string `envconfig:"KIPPU_PUBSUB_TICKETS_TOPIC" default:"kippu-ticket-events"`
	PointsTopic         string `envconfig:"KIPPU_PUBSUB_POINTS_TOPIC" default:"kippu-point-events"`
	TicketsSubscription string `envconfig:"KIPPU_PUBSUB_TICKETS_SUBSCRIPTION"`
	PointsSubscription  string `envconfig:"KIPPU_PUBSUB_POINTS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"KIPPU_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"KIPPU_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"KIPPU_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
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
