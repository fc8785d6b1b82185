package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

type Config struct {
	Server       ServerConfig
	Storage      StorageConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Session      SessionConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
	TLS          TLSConfig
	Firebase     FirebaseConfig
	Telemetry    TelemetryConfig
	Log          LogConfig
}

type ServerConfig struct {
	Port         string   `env:"PORT" envDefault:"8080"`
	Host         string   `env:"HOST" envDefault:"0.0.0.0"`
	AllowedHosts []string `env:"ALLOWED_HOSTS" envSeparator:","`
}

type StorageConfig struct {
	Backend string `env:"STORAGE_BACKEND" envDefault:"memory"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"budgetcoach"`
	Password string `env:"DB_PASSWORD"`
	DBName   string `env:"DB_NAME" envDefault:"budgetcoach"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`
}

type SessionConfig struct {
	CacheTTL time.Duration `env:"SESSION_CACHE_TTL" envDefault:"10m"`
}

type NotificationConfig struct {
	TTL time.Duration `env:"NOTIFICATION_TTL" envDefault:"5s"`
}

type RateLimitConfig struct {
	// Requests per second per client IP on the auth endpoints
	AuthRPS   float64 `env:"AUTH_RATE_LIMIT_RPS" envDefault:"1"`
	AuthBurst int     `env:"AUTH_RATE_LIMIT_BURST" envDefault:"5"`
}

type TLSConfig struct {
	Enabled      bool   `env:"TLS_ENABLED" envDefault:"false"`
	CertPath     string `env:"TLS_CERT_PATH"`
	KeyPath      string `env:"TLS_KEY_PATH"`
	RedirectHTTP bool   `env:"TLS_REDIRECT_HTTP" envDefault:"false"`
	// Redirects plain HTTP requests reaching the API, e.g. via a proxy
	// that sets X-Forwarded-Proto
	ForceHTTPS bool `env:"TLS_FORCE_HTTPS" envDefault:"false"`
}

type FirebaseConfig struct {
	ProjectID       string `env:"FIREBASE_PROJECT_ID"`
	CredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
	// Points the Firestore client at a local emulator when set
	EmulatorHost string `env:"FIRESTORE_EMULATOR_HOST"`
}

type TelemetryConfig struct {
	Enabled      bool   `env:"OTEL_ENABLED" envDefault:"false"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"budgetcoach-api"`
	Environment  string `env:"APP_ENV" envDefault:"development"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_ENDPOINT" envDefault:"localhost:4317"`
	MetricsPort  string `env:"OTEL_METRICS_PORT" envDefault:"9464"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads an optional .env file and then the environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// LoadStorage is Load for tools that only open the storage backend. JWT,
// TLS and rate limit settings are not checked.
func LoadStorage() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateStorage(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads the configuration from the environment only.
func Parse() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.Server.AllowedHosts = trimHosts(cfg.Server.AllowedHosts)
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	return cfg, nil
}

// Validate checks required fields and cross-field constraints
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if c.TLS.Enabled {
		if c.TLS.CertPath == "" {
			return errors.New("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if c.TLS.KeyPath == "" {
			return errors.New("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}

	if c.RateLimit.AuthRPS <= 0 || c.RateLimit.AuthBurst <= 0 {
		return errors.New("AUTH_RATE_LIMIT_RPS and AUTH_RATE_LIMIT_BURST must be positive")
	}

	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendPostgres:
	case BackendFirestore:
		if c.Firebase.ProjectID == "" && c.Firebase.CredentialsFile == "" {
			return errors.New("FIREBASE_PROJECT_ID or FIREBASE_CREDENTIALS_FILE is required when STORAGE_BACKEND=firestore")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want memory, firestore or postgres)", c.Storage.Backend)
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the postgres:// form used by the migrator
func (c *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// FirebaseEnabled reports whether Firebase sign-in can be offered
func (c *Config) FirebaseEnabled() bool {
	return c.Firebase.ProjectID != "" || c.Firebase.CredentialsFile != ""
}

func trimHosts(hosts []string) []string {
	var out []string
	for _, h := range hosts {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
