package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the CLI needs to talk to one OpsPanel backend.
type Config struct {
	APIURL       string
	WSURL        string
	AccessToken  string
	RefreshToken string
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	Debug        bool
}

// Defaults returns the baseline configuration before env overrides.
func Defaults() Config {
	return Config{
		APIURL:     "http://localhost:8000/api/v1",
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
	}
}

// Load builds the configuration from defaults, an optional .env file, and
// OPS_* environment variables, in that order of increasing priority.
func Load() (Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	cfg := Defaults()
	applyEnv(&cfg)
	if cfg.WSURL == "" {
		ws, err := deriveWSURL(cfg.APIURL)
		if err != nil {
			return cfg, err
		}
		cfg.WSURL = ws
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	set := func(key string, apply func(string)) {
		if v := os.Getenv(key); v != "" {
			apply(v)
		}
	}

	set("OPS_API_URL", func(v string) { cfg.APIURL = v })
	set("OPS_WS_URL", func(v string) { cfg.WSURL = v })
	set("OPS_ACCESS_TOKEN", func(v string) { cfg.AccessToken = v })
	set("OPS_REFRESH_TOKEN", func(v string) { cfg.RefreshToken = v })
	set("OPS_TIMEOUT", func(v string) {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	})
	set("OPS_MAX_RETRIES", func(v string) {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	})
	set("OPS_RETRY_DELAY", func(v string) {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RetryDelay = d
		}
	})
	set("OPS_DEBUG", func(v string) {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	})
}

// Validate checks that the endpoint URLs are usable.
func (c Config) Validate() error {
	if err := validateURL(c.APIURL, "http", "https"); err != nil {
		return fmt.Errorf("API URL: %w", err)
	}
	if err := validateURL(c.WSURL, "ws", "wss"); err != nil {
		return fmt.Errorf("WebSocket URL: %w", err)
	}
	return nil
}

func validateURL(raw string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid URL format: %q", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("unsupported URL scheme %q in %q", u.Scheme, raw)
}

// deriveWSURL maps the API base URL onto the backend's log stream endpoint.
func deriveWSURL(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("derive WebSocket URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/job-queue"
	return u.String(), nil
}
