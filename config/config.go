package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	ContactAPI    ContactAPIConfig
	Directory     DirectoryConfig
	Session       SessionConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

// ContactAPIConfig points at the external HR contact API
type ContactAPIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// DirectoryConfig tunes the directory controller
type DirectoryConfig struct {
	SearchDebounceMillis  int
	FetchTimeoutSeconds   int
	InitialLoadWaitMillis int
}

type SessionConfig struct {
	Secret          string
	Issuer          string
	TTLMinutes      int
	CookieDomain    string
	CookieSecure    bool
	CleanupInterval int // seconds
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("CONTACT_API_TIMEOUT_SECONDS", 10)
	v.SetDefault("SEARCH_DEBOUNCE_MS", 500)
	v.SetDefault("FETCH_TIMEOUT_SECONDS", 15)
	v.SetDefault("INITIAL_LOAD_WAIT_MS", 2000)
	v.SetDefault("SESSION_ISSUER", "hr-directory")
	v.SetDefault("SESSION_TTL_MINUTES", 60)
	v.SetDefault("SESSION_CLEANUP_INTERVAL_SECONDS", 300)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_SERVICE_NAME", "hr-directory")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "hr-directory")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "hr-directory")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,inuse_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		ContactAPI: ContactAPIConfig{
			BaseURL:        strings.TrimRight(v.GetString("CONTACT_API_BASE_URL"), "/"),
			TimeoutSeconds: v.GetInt("CONTACT_API_TIMEOUT_SECONDS"),
		},
		Directory: DirectoryConfig{
			SearchDebounceMillis:  v.GetInt("SEARCH_DEBOUNCE_MS"),
			FetchTimeoutSeconds:   v.GetInt("FETCH_TIMEOUT_SECONDS"),
			InitialLoadWaitMillis: v.GetInt("INITIAL_LOAD_WAIT_MS"),
		},
		Session: SessionConfig{
			Secret:          v.GetString("SESSION_SECRET"),
			Issuer:          v.GetString("SESSION_ISSUER"),
			TTLMinutes:      v.GetInt("SESSION_TTL_MINUTES"),
			CookieDomain:    v.GetString("COOKIE_DOMAIN"),
			CookieSecure:    v.GetBool("COOKIE_SECURE"),
			CleanupInterval: v.GetInt("SESSION_CLEANUP_INTERVAL_SECONDS"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList parses a comma-separated list, dropping blanks
func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.ContactAPI.BaseURL == "" {
		return fmt.Errorf("CONTACT_API_BASE_URL is required")
	}
	if u, err := url.Parse(c.ContactAPI.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CONTACT_API_BASE_URL must be an absolute URL")
	}

	if c.Directory.SearchDebounceMillis < 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE_MS must not be negative")
	}

	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

// SearchDebounce returns the quiet period applied to free-text search
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.Directory.SearchDebounceMillis) * time.Millisecond
}

// FetchTimeout bounds a single directory list request
func (c *Config) FetchTimeout() time.Duration {
	if c.Directory.FetchTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Directory.FetchTimeoutSeconds) * time.Second
}

// InitialLoadWait bounds how long a page render waits for the first fetch
func (c *Config) InitialLoadWait() time.Duration {
	return time.Duration(c.Directory.InitialLoadWaitMillis) * time.Millisecond
}

// SessionTTL returns the idle lifetime of a browser session
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// ContactAPITimeout returns the HTTP client timeout for the contact API
func (c *Config) ContactAPITimeout() time.Duration {
	if c.ContactAPI.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ContactAPI.TimeoutSeconds) * time.Second
}
