package cliparse

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Storage backends
const (
	BackendNone = "none"
	BackendSQL  = "sql"
	BackendREST = "rest"
)

// Runtime environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port           int
	DataDir        string
	Backend        string
	DatabaseURL    string
	DatabaseType   string
	KVRestURL      string
	KVRestToken    string
	AppURL         string
	SharedAppURL   string
	Env            string
	Timezone       string
	Location       *time.Location
	RemoteTimeout  time.Duration
	RateLimit      int
	TrustProxy     bool // rate limit by X-Forwarded-For / X-Real-IP
	AllowedOrigins []string
	EnvFile        string
}

// KVEnabled reports whether a remote store is configured
func (c Config) KVEnabled() bool {
	return c.Backend != BackendNone
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// ParseFlags parses flags, loads the env file and fills unset values from
// the environment. Flags take precedence over the environment, which takes
// precedence over the env file.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var origins string

	fs := pflag.NewFlagSet("supportcenter", pflag.ContinueOnError)

	fs.IntVarP(&cfg.Port, "port", "p", 3000, "Server port")
	fs.StringVar(&cfg.DataDir, "data-dir", "data", "Directory for local JSON copies")
	fs.StringVar(&cfg.Backend, "backend", "", "Remote store: none, sql or rest (detected when empty)")
	fs.StringVarP(&cfg.DatabaseURL, "database-url", "d", "", "Database URL for the sql backend")
	fs.StringVarP(&cfg.DatabaseType, "database-type", "t", "", "Database type (sqlite or postgres, inferred from URL)")
	fs.StringVar(&cfg.KVRestURL, "kv-url", "", "KV REST API URL for the rest backend")
	fs.StringVar(&cfg.KVRestToken, "kv-token", "", "KV REST API token (prefer env)")
	fs.StringVar(&cfg.AppURL, "app-url", "", "Public URL of this deployment")
	fs.StringVar(&cfg.SharedAppURL, "shared-app-url", "", "URL encoded in the submission QR code")
	fs.StringVar(&cfg.Env, "env", EnvDevelopment, "Environment (development or production)")
	fs.StringVar(&cfg.Timezone, "timezone", "Local", "IANA time zone used for report day boundaries")
	fs.DurationVar(&cfg.RemoteTimeout, "remote-timeout", 5*time.Second, "Timeout for remote store calls")
	fs.IntVar(&cfg.RateLimit, "rate-limit", 300, "Requests per minute per client IP (0 disables)")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", false, "Rate limit by forwarding headers (only behind a trusted proxy)")
	fs.StringVar(&origins, "allowed-origins", "*", "Comma-separated CORS origins")
	fs.StringVar(&cfg.EnvFile, "env-file", ".env", "Env file to load")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", cfg.EnvFile, err)
		}
	}

	// Fall back to environment variables
	if !fs.Changed("port") {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		}
	}
	stringEnv(fs, "data-dir", &cfg.DataDir, "DATA_DIR")
	stringEnv(fs, "backend", &cfg.Backend, "STORAGE_BACKEND")
	stringEnv(fs, "database-url", &cfg.DatabaseURL, "DATABASE_URL")
	stringEnv(fs, "database-type", &cfg.DatabaseType, "DATABASE_TYPE")
	stringEnv(fs, "kv-url", &cfg.KVRestURL, "KV_REST_API_URL")
	stringEnv(fs, "kv-token", &cfg.KVRestToken, "KV_REST_API_TOKEN")
	stringEnv(fs, "app-url", &cfg.AppURL, "APP_URL")
	stringEnv(fs, "shared-app-url", &cfg.SharedAppURL, "SHARED_APP_URL")
	stringEnv(fs, "env", &cfg.Env, "APP_ENV")
	stringEnv(fs, "timezone", &cfg.Timezone, "APP_TIMEZONE")
	stringEnv(fs, "allowed-origins", &origins, "ALLOWED_ORIGINS")

	if !fs.Changed("remote-timeout") {
		if v := os.Getenv("REMOTE_TIMEOUT"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, errors.New("invalid REMOTE_TIMEOUT env variable")
			}
			cfg.RemoteTimeout = d
		}
	}
	if !fs.Changed("rate-limit") {
		if v := os.Getenv("RATE_LIMIT"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return Config{}, errors.New("invalid RATE_LIMIT env variable")
			}
			cfg.RateLimit = n
		}
	}

	if !fs.Changed("trust-proxy") {
		if v := os.Getenv("TRUST_PROXY"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid TRUST_PROXY env variable")
			}
			cfg.TrustProxy = b
		}
	}

	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	if err := cfg.resolve(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// resolve fills derived settings and validates the combination
func (c *Config) resolve() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DataDir == "" {
		return errors.New("data directory required")
	}

	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("invalid env %q (use development or production)", c.Env)
	}

	if c.Backend == "" {
		switch {
		case c.KVRestURL != "" && c.KVRestToken != "":
			c.Backend = BackendREST
		case c.DatabaseURL != "":
			c.Backend = BackendSQL
		default:
			c.Backend = BackendNone
		}
	}

	switch c.Backend {
	case BackendNone:
	case BackendSQL:
		if c.DatabaseURL == "" {
			return errors.New("database URL required for the sql backend (use -d or DATABASE_URL env)")
		}
		if c.DatabaseType == "" {
			c.DatabaseType = inferDatabaseType(c.DatabaseURL)
		}
		if c.DatabaseType != "sqlite" && c.DatabaseType != "postgres" {
			return fmt.Errorf("invalid database type %q", c.DatabaseType)
		}
	case BackendREST:
		if c.KVRestURL == "" || c.KVRestToken == "" {
			return errors.New("KV_REST_API_URL and KV_REST_API_TOKEN required for the rest backend")
		}
		c.KVRestURL = strings.TrimRight(c.KVRestURL, "/")
	default:
		return fmt.Errorf("invalid backend %q (use none, sql or rest)", c.Backend)
	}

	if c.RemoteTimeout <= 0 {
		return errors.New("remote timeout must be positive")
	}
	if c.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc

	if c.SharedAppURL == "" {
		c.SharedAppURL = c.AppURL
	}
	return nil
}

func inferDatabaseType(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

// stringEnv copies env into dst unless the flag was set explicitly
func stringEnv(fs *pflag.FlagSet, flag string, dst *string, env string) {
	if fs.Changed(flag) {
		return
	}
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
