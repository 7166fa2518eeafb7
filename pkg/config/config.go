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
	Session      SessionConfig
	Sweep        SweepConfig
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
	Env          string `envconfig:"CARTSVC_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTSVC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARTSVC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTSVC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CARTSVC_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CARTSVC_DB_DSN"`
	Driver string `envconfig:"CARTSVC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CARTSVC_DB_HOST"`
	LegacyPort     int    `envconfig:"CARTSVC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARTSVC_DB_USER"`
	LegacyPassword string `envconfig:"CARTSVC_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARTSVC_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARTSVC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARTSVC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTSVC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTSVC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTSVC_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	ConnectAttempts int `envconfig:"CARTSVC_DB_CONNECT_ATTEMPTS" default:"5"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTSVC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CARTSVC_REDIS_ADDR"`
	Password     string        `envconfig:"CARTSVC_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTSVC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTSVC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTSVC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTSVC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTSVC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTSVC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig drives the signed cart-session cookie.
type SessionConfig struct {
	Secret     string        `envconfig:"CARTSVC_SESSION_SECRET" required:"true"`
	Issuer     string        `envconfig:"CARTSVC_SESSION_ISSUER" default:"cart-service"`
	TTL        time.Duration `envconfig:"CARTSVC_SESSION_TTL" default:"720h"`
	CookieName string        `envconfig:"CARTSVC_SESSION_COOKIE" default:"cart_session"`
}

// SweepConfig holds the abandonment windows. Both thresholds are measured from
// the same last_interaction_at; purge eligibility is not reset when a cart is
// marked abandoned.
type SweepConfig struct {
	AbandonAfter time.Duration `envconfig:"CARTSVC_SWEEP_ABANDON_AFTER" default:"3h"`
	PurgeAfter   time.Duration `envconfig:"CARTSVC_SWEEP_PURGE_AFTER" default:"168h"`
	Interval     time.Duration `envconfig:"CARTSVC_SWEEP_INTERVAL" default:"30m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CARTSVC_AUTO_MIGRATE" default:"false"`
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
