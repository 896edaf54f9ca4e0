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
	DigiKey      DigiKeyConfig
	Import       ImportConfig
	Jobs         JobsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.App.validate(); err != nil {
		return nil, err
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env                 string `envconfig:"PARTSBIN_APP_ENV" required:"true"`
	Port                string `envconfig:"PARTSBIN_APP_PORT" default:"8080"`
	LogLevel            string `envconfig:"PARTSBIN_LOG_LEVEL" default:"info"`
	LogWarnStack        bool   `envconfig:"PARTSBIN_LOG_WARN_STACK" default:"false"`
	AllowedFrontendURLs string `envconfig:"PARTSBIN_ALLOWED_FRONTEND_URLS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(strings.TrimSpace(a.Env), AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(strings.TrimSpace(a.Env), AppEnvProd)
}

func (a AppConfig) IsTest() bool {
	return strings.EqualFold(strings.TrimSpace(a.Env), AppEnvTest)
}

// AllowedOrigins splits the configured frontend URLs on whitespace.
func (a AppConfig) AllowedOrigins() []string {
	return strings.Fields(a.AllowedFrontendURLs)
}

func (a AppConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.Env)) {
	case AppEnvProd, AppEnvDev, AppEnvTest:
		return nil
	default:
		return fmt.Errorf("invalid %s %q: expected one of prod, dev, test", EnvAppEnv, a.Env)
	}
}

type ServiceConfig struct {
	Kind string `envconfig:"PARTSBIN_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN        string `envconfig:"PARTSBIN_DB_DSN"`
	Driver     string `envconfig:"PARTSBIN_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"PARTSBIN_SQLITE_PATH" default:"partsbin.db"`

	LegacyHost     string `envconfig:"PARTSBIN_DB_HOST"`
	LegacyPort     int    `envconfig:"PARTSBIN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PARTSBIN_DB_USER"`
	LegacyPassword string `envconfig:"PARTSBIN_DB_PASSWORD"`
	LegacyName     string `envconfig:"PARTSBIN_DB_NAME"`
	LegacySSLMode  string `envconfig:"PARTSBIN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PARTSBIN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PARTSBIN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PARTSBIN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PARTSBIN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional; without a URL or address imports fall back to
// in-process locking.
type RedisConfig struct {
	URL          string        `envconfig:"PARTSBIN_REDIS_URL"`
	Address      string        `envconfig:"PARTSBIN_REDIS_ADDR"`
	Password     string        `envconfig:"PARTSBIN_REDIS_PASSWORD"`
	DB           int           `envconfig:"PARTSBIN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PARTSBIN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PARTSBIN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PARTSBIN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PARTSBIN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PARTSBIN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type DigiKeyConfig struct {
	ClientID     string        `envconfig:"DIGIKEY_ID"`
	ClientSecret string        `envconfig:"DIGIKEY_KEY"`
	BaseURL      string        `envconfig:"PARTSBIN_DIGIKEY_BASE_URL"`
	Timeout      time.Duration `envconfig:"PARTSBIN_DIGIKEY_TIMEOUT" default:"30s"`
}

type ImportConfig struct {
	StrictOrderMatching Flag          `envconfig:"STRICT_ORDER_MATCHING" default:"false"`
	LockTTL             time.Duration `envconfig:"PARTSBIN_IMPORT_LOCK_TTL" default:"30s"`
	LockWait            time.Duration `envconfig:"PARTSBIN_IMPORT_LOCK_WAIT" default:"10s"`
}

type JobsConfig struct {
	RefreshInterval time.Duration `envconfig:"PARTSBIN_REFRESH_INTERVAL" default:"24h"`
	LockTTL         time.Duration `envconfig:"PARTSBIN_JOBS_LOCK_TTL" default:"6h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PARTSBIN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PARTSBIN_AUTO_MIGRATE" default:"false"`
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
