package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds process-level settings for cmd/api.
type ServerConfig struct {
	Port           string
	StorageBackend string

	// ResetLinkInResponse echoes the generated reset link in the /reset-password response body
	// in addition to emailing it.
	ResetLinkInResponse bool

	// ProtectResources requires a bearer token on trip and notification routes.
	ProtectResources bool
}

func LoadServerConfigFromEnv() (ServerConfig, error) {
	cfg := ServerConfig{
		Port:           getenv("PORT", "8080"),
		StorageBackend: strings.ToLower(getenv("STORAGE_BACKEND", "memory")),
	}
	switch cfg.StorageBackend {
	case "memory", "mongo", "postgres":
	default:
		return ServerConfig{}, fmt.Errorf("STORAGE_BACKEND must be one of memory|mongo|postgres, got %q", cfg.StorageBackend)
	}

	var err error
	if cfg.ResetLinkInResponse, err = getenvBool("RESET_LINK_IN_RESPONSE", true); err != nil {
		return ServerConfig{}, err
	}
	if cfg.ProtectResources, err = getenvBool("PROTECT_RESOURCES", false); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// MongoConfig configures the document database connection.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

func LoadMongoConfigFromEnv() (MongoConfig, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		return MongoConfig{}, fmt.Errorf("missing required env var: MONGO_URI")
	}
	cfg := MongoConfig{
		URI:            uri,
		Database:       getenv("MONGO_DB", "roadbook"),
		ConnectTimeout: 10 * time.Second,
	}
	if v := os.Getenv("MONGO_CONNECT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return MongoConfig{}, fmt.Errorf("MONGO_CONNECT_TIMEOUT must be a duration (e.g. 10s): %w", err)
		}
		cfg.ConnectTimeout = d
	}
	return cfg, nil
}

// PostgresConfig configures the relational storage backend.
type PostgresConfig struct {
	DSN string
}

func LoadPostgresConfigFromEnv() (PostgresConfig, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return PostgresConfig{}, fmt.Errorf("missing required env var: DATABASE_URL")
	}
	return PostgresConfig{DSN: dsn}, nil
}

// MailConfig configures the outbound mail relay.
type MailConfig struct {
	// Backend is "smtp" (default) or "log" for local development.
	Backend string

	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func LoadMailConfigFromEnv() (MailConfig, error) {
	cfg := MailConfig{
		Backend:  strings.ToLower(getenv("MAIL_BACKEND", "smtp")),
		Host:     os.Getenv("SMTP_HOST"),
		Port:     587,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("MAIL_FROM"),
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	switch cfg.Backend {
	case "log":
		return cfg, nil
	case "smtp":
	default:
		return MailConfig{}, fmt.Errorf("MAIL_BACKEND must be one of smtp|log, got %q", cfg.Backend)
	}

	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		return MailConfig{}, fmt.Errorf("missing required env vars: SMTP_HOST, SMTP_USERNAME, SMTP_PASSWORD")
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return MailConfig{}, fmt.Errorf("SMTP_PORT must be a positive integer")
		}
		cfg.Port = n
	}
	return cfg, nil
}

// IdentityConfig configures the external identity provider.
type IdentityConfig struct {
	// Backend is "firebase" (default) or "memory" for local development.
	Backend string

	CredentialsFile string
	ProjectID       string

	// ContinueURL is where the provider redirects after the reset completes; optional.
	ContinueURL string
}

func LoadIdentityConfigFromEnv() (IdentityConfig, error) {
	cfg := IdentityConfig{
		Backend:         strings.ToLower(getenv("IDENTITY_BACKEND", "firebase")),
		CredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		ContinueURL:     os.Getenv("RESET_CONTINUE_URL"),
	}
	switch cfg.Backend {
	case "memory":
	case "firebase":
		if cfg.CredentialsFile == "" {
			return IdentityConfig{}, fmt.Errorf("missing required env var: FIREBASE_CREDENTIALS_FILE")
		}
	default:
		return IdentityConfig{}, fmt.Errorf("IDENTITY_BACKEND must be one of firebase|memory, got %q", cfg.Backend)
	}
	return cfg, nil
}

// IdempotencyConfig selects where Idempotency-Key replay records live.
type IdempotencyConfig struct {
	// Backend is "storage" (default; same backend as STORAGE_BACKEND) or "redis".
	Backend string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TTL bounds how long a stored response can be replayed, on every backend.
	TTL time.Duration
}

func LoadIdempotencyConfigFromEnv() (IdempotencyConfig, error) {
	cfg := IdempotencyConfig{
		Backend:       strings.ToLower(getenv("IDEMPOTENCY_BACKEND", "storage")),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		TTL:           24 * time.Hour,
	}
	switch cfg.Backend {
	case "storage", "redis":
	default:
		return IdempotencyConfig{}, fmt.Errorf("IDEMPOTENCY_BACKEND must be one of storage|redis, got %q", cfg.Backend)
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return IdempotencyConfig{}, fmt.Errorf("REDIS_DB must be a non-negative integer")
		}
		cfg.RedisDB = n
	}
	if v := os.Getenv("IDEMPOTENCY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return IdempotencyConfig{}, fmt.Errorf("IDEMPOTENCY_TTL must be a positive duration (e.g. 24h)")
		}
		cfg.TTL = d
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvBool(k string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", k, err)
	}
	return b, nil
}
