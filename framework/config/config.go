package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/km-arc/go-inject/framework/errors"
)

// Config is the central typed configuration struct.
type Config struct {
	App  AppConfig
	Log  LogConfig
	HTTP HTTPConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool   // logs at debug level or above, with callers
	URL   string // public base URL, reported at startup
	Port  string
}

type LogConfig struct {
	Verbosity int  // 0 warn, 1 info, 2 debug, 3 trace
	JSON      bool // structured output instead of the console writer
}

type HTTPConfig struct {
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "go-inject"),
			Env:   env("APP_ENV", "local"),
			Debug: GetBool("APP_DEBUG", false),
			URL:   env("APP_URL", "http://localhost"),
			Port:  env("APP_PORT", "8000"),
		},
		Log: LogConfig{
			Verbosity: GetInt("LOG_VERBOSITY", 1),
			JSON:      GetBool("LOG_JSON", false),
		},
		HTTP: HTTPConfig{
			CORSOrigins:     GetList("HTTP_CORS_ORIGINS", []string{"*"}),
			ShutdownTimeout: GetDuration("HTTP_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch c.App.Env {
	case "local", "production", "testing":
	default:
		return errors.Newf(errors.ErrConfigInvalid, "APP_ENV must be local, production or testing, got %q", c.App.Env).
			WithDetail("key", "APP_ENV")
	}
	if port, err := strconv.Atoi(c.App.Port); err != nil || port <= 0 || port > 65535 {
		return errors.Newf(errors.ErrConfigInvalid, "APP_PORT must be a TCP port, got %q", c.App.Port).
			WithDetail("key", "APP_PORT")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return errors.New(errors.ErrConfigInvalid, "HTTP_SHUTDOWN_TIMEOUT must be positive").
			WithDetail("key", "HTTP_SHUTDOWN_TIMEOUT")
	}
	return nil
}

// LogVerbosity is Log.Verbosity, raised to debug (2) when App.Debug is set.
func (c *Config) LogVerbosity() int {
	if c.App.Debug {
		return max(c.Log.Verbosity, 2)
	}
	return c.Log.Verbosity
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + c.App.Port }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

// GetDuration returns a time.Duration env value ("5s", "250ms").
func GetDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// GetList returns a comma-separated env value, trimmed, without empty items.
func GetList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
