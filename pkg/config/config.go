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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	AuthLimit    AuthRateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Outbox       OutboxConfig
	BillingSync  BillingSyncConfig
	Paddle       PaddleConfig
	Stripe       StripeConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.BillingSync.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env            string        `envconfig:"GOGO_APP_ENV" required:"true"`
	Port           string        `envconfig:"GOGO_APP_PORT" default:"8080"`
	LogLevel       string        `envconfig:"GOGO_LOG_LEVEL" default:"info"`
	LogWarnStack   bool          `envconfig:"GOGO_LOG_WARN_STACK" default:"false"`
	LogFile        string        `envconfig:"GOGO_LOG_FILE"`
	LogMaxSizeMB   int           `envconfig:"GOGO_LOG_MAX_SIZE_MB" default:"64"`
	LogMaxBackups  int           `envconfig:"GOGO_LOG_MAX_BACKUPS" default:"7"`
	DefaultLocale  string        `envconfig:"GOGO_DEFAULT_LOCALE" default:"ko"`
	RequestTimeout time.Duration `envconfig:"GOGO_REQUEST_TIMEOUT" default:"30s"`
	CORSOrigins    []string      `envconfig:"GOGO_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"GOGO_DB_DSN"`

	Host     string `envconfig:"GOGO_DB_HOST"`
	Port     int    `envconfig:"GOGO_DB_PORT" default:"5432"`
	User     string `envconfig:"GOGO_DB_USER"`
	Password string `envconfig:"GOGO_DB_PASSWORD"`
	Name     string `envconfig:"GOGO_DB_NAME"`
	SSLMode  string `envconfig:"GOGO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GOGO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GOGO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GOGO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GOGO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GOGO_REDIS_URL"`
	Address      string        `envconfig:"GOGO_REDIS_ADDR"`
	Password     string        `envconfig:"GOGO_REDIS_PASSWORD"`
	DB           int           `envconfig:"GOGO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GOGO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GOGO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GOGO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GOGO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GOGO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GOGO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GOGO_JWT_ISSUER" default:"gogo-admin"`
	ExpirationMinutes      int    `envconfig:"GOGO_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"GOGO_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GOGO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GOGO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GOGO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GOGO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GOGO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"GOGO_AUTH_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"GOGO_AUTH_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"GOGO_AUTH_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GOGO_AUTO_MIGRATE" default:"false"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"GOGO_OUTBOX_BATCH_SIZE" default:"25"`
	PollIntervalMS int `envconfig:"GOGO_OUTBOX_POLL_MS" default:"1000"`
	MaxAttempts    int `envconfig:"GOGO_OUTBOX_MAX_ATTEMPTS" default:"8"`
	RetentionDays  int `envconfig:"GOGO_OUTBOX_RETENTION_DAYS" default:"30"`
}

type BillingSyncConfig struct {
	Provider      string        `envconfig:"GOGO_BILLING_PROVIDER" default:"paddle"`
	InlineSync    bool          `envconfig:"GOGO_BILLING_INLINE_SYNC" default:"true"`
	Grace         time.Duration `envconfig:"GOGO_BILLING_SYNC_GRACE" default:"30s"`
	LockTTL       time.Duration `envconfig:"GOGO_BILLING_SYNC_LOCK_TTL" default:"2m"`
	CallTimeout   time.Duration `envconfig:"GOGO_BILLING_CALL_TIMEOUT" default:"20s"`
	DriftInterval time.Duration `envconfig:"GOGO_BILLING_DRIFT_INTERVAL" default:"1h"`
}

// ProviderName returns the normalized provider selector.
func (b BillingSyncConfig) ProviderName() string {
	name := strings.ToLower(strings.TrimSpace(b.Provider))
	if name == "" {
		return BillingProviderPaddle
	}
	return name
}

func (b BillingSyncConfig) validate() error {
	switch b.ProviderName() {
	case BillingProviderPaddle, BillingProviderStripe, BillingProviderNone:
		return nil
	default:
		return fmt.Errorf("%s must be one of %s, %s, %s", EnvBillingProvider, BillingProviderPaddle, BillingProviderStripe, BillingProviderNone)
	}
}

type PaddleConfig struct {
	APIKey string `envconfig:"GOGO_PADDLE_API_KEY"`
	Env    string `envconfig:"GOGO_PADDLE_ENV" default:"sandbox"`
}

// Environment returns the normalized Paddle environment (sandbox/production).
func (p PaddleConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(p.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type StripeConfig struct {
	APIKey string `envconfig:"GOGO_STRIPE_API_KEY"`
	Env    string `envconfig:"GOGO_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

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
	for _, key := range discreteDBEnvVars {
		if values[key] == "" {
			missing = append(missing, key)
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
