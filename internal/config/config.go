package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	HTTP         HTTPConfig
	Storage      StorageConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
	OpTimeout   time.Duration
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// AuthConfig defines authentication parameters. It is handed to the auth
// service at construction time.
type AuthConfig struct {
	BcryptCost       int
	SessionTTL       time.Duration
	RememberTTL      time.Duration
	IdleTimeout      time.Duration
	RequireApproval  bool
	DefaultRole      string
	Password         PasswordPolicyConfig
	CSRFSecret       string
	CookieName       string
	CookieSecure     bool
	PasswordResetTTL time.Duration
	LoginMaxAttempts int
	LoginLockout     time.Duration
}

// PasswordPolicyConfig toggles the individual password rules.
type PasswordPolicyConfig struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

// HTTPConfig tunes the per-IP throttle on public auth routes.
type HTTPConfig struct {
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// StorageConfig locates uploaded profile photos.
type StorageConfig struct {
	Dir           string
	MaxPhotoBytes int64
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	rateLimit, err := strconv.ParseFloat(getEnv("HTTP_RATE_LIMIT_PER_SECOND", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_RATE_LIMIT_PER_SECOND: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "portal-auth"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			DB:          redisDB,
			PoolSize:    getEnvAsInt("REDIS_POOL_SIZE", 0),
			DialTimeout: time.Duration(getEnvAsInt("REDIS_DIAL_TIMEOUT_MS", 2000)) * time.Millisecond,
			OpTimeout:   time.Duration(getEnvAsInt("REDIS_OP_TIMEOUT_MS", 500)) * time.Millisecond,
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Auth: AuthConfig{
			BcryptCost:      getEnvAsInt("AUTH_BCRYPT_COST", 12),
			SessionTTL:      time.Duration(getEnvAsInt("AUTH_SESSION_TTL_MINUTES", 120)) * time.Minute,
			RememberTTL:     time.Duration(getEnvAsInt("AUTH_REMEMBER_TTL_HOURS", 24*30)) * time.Hour,
			IdleTimeout:     time.Duration(getEnvAsInt("AUTH_IDLE_TIMEOUT_MINUTES", 30)) * time.Minute,
			RequireApproval: getEnvAsBool("AUTH_REQUIRE_APPROVAL", true),
			DefaultRole:     strings.ToLower(getEnv("AUTH_DEFAULT_ROLE", "user")),
			Password: PasswordPolicyConfig{
				MinLength:     getEnvAsInt("AUTH_PASSWORD_MIN_LENGTH", 8),
				RequireUpper:  getEnvAsBool("AUTH_PASSWORD_REQUIRE_UPPER", true),
				RequireLower:  getEnvAsBool("AUTH_PASSWORD_REQUIRE_LOWER", true),
				RequireDigit:  getEnvAsBool("AUTH_PASSWORD_REQUIRE_DIGIT", true),
				RequireSymbol: getEnvAsBool("AUTH_PASSWORD_REQUIRE_SYMBOL", true),
			},
			CSRFSecret:       getEnv("AUTH_CSRF_SECRET", "dev-csrf-secret"),
			CookieName:       getEnv("AUTH_COOKIE_NAME", "portal_session"),
			CookieSecure:     getEnvAsBool("AUTH_COOKIE_SECURE", false),
			PasswordResetTTL: time.Duration(getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30)) * time.Minute,
			LoginMaxAttempts: getEnvAsInt("AUTH_LOGIN_MAX_ATTEMPTS", 5),
			LoginLockout:     time.Duration(getEnvAsInt("AUTH_LOGIN_LOCKOUT_MINUTES", 15)) * time.Minute,
		},
		HTTP: HTTPConfig{
			RateLimitPerSecond: rateLimit,
			RateLimitBurst:     getEnvAsInt("HTTP_RATE_LIMIT_BURST", 10),
		},
		Storage: StorageConfig{
			Dir:           getEnv("STORAGE_DIR", "data/uploads"),
			MaxPhotoBytes: int64(getEnvAsInt("STORAGE_MAX_PHOTO_BYTES", 2<<20)),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects auth settings the service cannot run with.
func (a AuthConfig) Validate() error {
	if a.SessionTTL <= 0 {
		return fmt.Errorf("AUTH_SESSION_TTL_MINUTES must be positive")
	}
	if a.RememberTTL < a.SessionTTL {
		return fmt.Errorf("AUTH_REMEMBER_TTL_HOURS must not be shorter than the session TTL")
	}
	if a.IdleTimeout < 0 {
		return fmt.Errorf("AUTH_IDLE_TIMEOUT_MINUTES must not be negative")
	}
	switch a.DefaultRole {
	case "user", "student":
	default:
		return fmt.Errorf("AUTH_DEFAULT_ROLE must be user or student, got %q", a.DefaultRole)
	}
	if strings.TrimSpace(a.CSRFSecret) == "" {
		return fmt.Errorf("AUTH_CSRF_SECRET is required")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
