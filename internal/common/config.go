package common

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Values come from an optional YAML file; environment variables always win.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Upload   UploadConfig   `yaml:"upload"`
	Guest    GuestConfig    `yaml:"guest"`
	Geocode  GeocodeConfig  `yaml:"geocode"`
	LLM      LLMConfig      `yaml:"llm"`
}

// DatabaseConfig holds database-related configuration.
// URL is either a postgres:// DSN or a SQLite file path (optionally sqlite:/// prefixed).
type DatabaseConfig struct {
	URL              string        `yaml:"url" env:"DATABASE_URL" env-default:"instance/wildsync.db"`
	MaxConns         int32         `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"20"`
	MinConns         int32         `yaml:"min_conns" env:"DB_MIN_CONNS" env-default:"2"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime" env:"DB_MAX_CONN_LIFETIME" env-default:"30m"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time" env:"DB_MAX_CONN_IDLE_TIME" env-default:"5m"`
	DialTimeout      time.Duration `yaml:"dial_timeout" env:"DB_DIAL_TIMEOUT" env-default:"3s"`
	StatementTimeout time.Duration `yaml:"statement_timeout" env:"DB_STATEMENT_TIMEOUT" env-default:"0s"`
}

// ServerConfig holds listener configuration for the daemon.
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr" env:"HTTP_ADDR" env-default:":8000"`
	GRPCAddr        string        `yaml:"grpc_addr" env:"GRPC_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"15s"`
}

// UploadConfig holds ingestion limits and drop-folder settings.
type UploadConfig struct {
	Folder           string        `yaml:"folder" env:"UPLOAD_FOLDER" env-default:"uploads"`
	MaxContentLength int64         `yaml:"max_content_length" env:"MAX_CONTENT_LENGTH" env-default:"52428800"`
	WatchDir         string        `yaml:"watch_dir" env:"WATCH_DIR" env-default:""`
	Debounce         time.Duration `yaml:"debounce" env:"WATCH_DEBOUNCE" env-default:"500ms"`
	Workers          int           `yaml:"workers" env:"INGEST_WORKERS" env-default:"4"`
	QueueSize        int           `yaml:"queue_size" env:"INGEST_QUEUE_SIZE" env-default:"256"`
	ProcessTimeout   time.Duration `yaml:"process_timeout" env:"INGEST_TIMEOUT" env-default:"2m"`
}

// GuestConfig is the fallback identity used for anonymous ingestion.
type GuestConfig struct {
	Name     string `yaml:"name" env:"GUEST_NAME" env-default:"Guest"`
	Email    string `yaml:"email" env:"GUEST_EMAIL" env-default:"guest@wildsync.local"`
	Password string `yaml:"-" env:"GUEST_PASSWORD" env-default:"guest"`
}

// GeocodeConfig controls the optional place-name geocoder.
type GeocodeConfig struct {
	Enabled   bool          `yaml:"enabled" env:"GEOCODE_ENABLED" env-default:"false"`
	URL       string        `yaml:"url" env:"GEOCODE_URL" env-default:"https://nominatim.openstreetmap.org/search"`
	UserAgent string        `yaml:"user_agent" env:"GEOCODE_USER_AGENT" env-default:"WildSync/1.0 (contact: admin@wildsync.ai)"`
	Timeout   time.Duration `yaml:"timeout" env:"GEOCODE_TIMEOUT" env-default:"10s"`
	RedisURL  string        `yaml:"redis_url" env:"REDIS_URL" env-default:""`
	CacheTTL  time.Duration `yaml:"cache_ttl" env:"GEOCODE_CACHE_TTL" env-default:"24h"`
}

// LLMConfig holds assistant configuration.
type LLMConfig struct {
	APIKey      string        `yaml:"-" env:"OPENAI_API_KEY" env-default:""`
	BaseURL     string        `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model       string        `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-3.5-turbo"`
	Temperature float32       `yaml:"temperature" env:"OPENAI_TEMPERATURE" env-default:"0.2"`
	Timeout     time.Duration `yaml:"timeout" env:"OPENAI_TIMEOUT" env-default:"30s"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Driver reports which storage backend URL points at.
func (d DatabaseConfig) Driver() string {
	u := strings.ToLower(d.URL)
	if strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// SQLitePath returns the file path for a SQLite URL.
func (d DatabaseConfig) SQLitePath() string {
	p := d.URL
	for _, prefix := range []string{"sqlite:///", "sqlite://", "file:"} {
		if strings.HasPrefix(p, prefix) {
			return strings.TrimPrefix(p, prefix)
		}
	}
	return p
}

// LoadConfig reads .env (if present), then the YAML file at path (if present), then the environment.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			return cfg, cfg.Validate()
		}
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate validates the loaded configuration. The returned error names the
// offending variables and wraps ErrValidation.
func (c *Config) Validate() error {
	v := NewValidator().
		Field("DATABASE_URL", c.Database.URL, Required).
		Field("GUEST_NAME", c.Guest.Name, Required).
		Field("GUEST_EMAIL", c.Guest.Email, Required, Email).
		Field("MAX_CONTENT_LENGTH", c.Upload.MaxContentLength, Positive).
		Field("INGEST_WORKERS", c.Upload.Workers, Positive)
	if c.Geocode.Enabled {
		v.Field("GEOCODE_URL", c.Geocode.URL, Required).
			Field("GEOCODE_URL", urlScheme(c.Geocode.URL), OneOf("http", "https"))
	}
	if c.LLM.APIKey != "" {
		v.Field("OPENAI_BASE_URL", urlScheme(c.LLM.BaseURL), OneOf("http", "https"))
	}
	if err := v.Error(); err != nil {
		var names []string
		for _, fe := range v.Errors() {
			if !slices.Contains(names, fe.Field) {
				names = append(names, fe.Field)
			}
		}
		return NewAppError(CodeConfig, "invalid configuration: "+strings.Join(names, ", "), err)
	}
	return nil
}

func urlScheme(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
