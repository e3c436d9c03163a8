package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvAPIKey is the environment variable holding the OpenWeatherMap API key.
const EnvAPIKey = "OPENWEATHERAPIKEY"

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// Units is the fixed unit system requested from the API.
	Units = "metric"
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("API key is not set")

// ConfigError reports an invalid or missing configuration value.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// GetAPIKey reads the API key from the process environment.
func GetAPIKey() (string, error) {
	key := os.Getenv(EnvAPIKey)
	if strings.TrimSpace(key) == "" {
		return "", &ConfigError{Field: EnvAPIKey, Err: ErrMissingAPIKey}
	}
	return key, nil
}

// SetAPIKey stores the API key in the process environment for later calls.
func SetAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return &ConfigError{Field: EnvAPIKey, Err: ErrMissingAPIKey}
	}
	if err := os.Setenv(EnvAPIKey, key); err != nil {
		return &ConfigError{Field: EnvAPIKey, Err: err}
	}
	return nil
}

// Config represents the client configuration
type Config struct {
	APIKey         string `json:"apiKey"`
	BaseURL        string `json:"baseURL"`
	TimeoutSeconds int    `json:"timeoutSeconds"`

	// OpenWeatherMap free tier allows 60 calls/minute
	RateLimit struct {
		Enabled bool    `json:"enabled"`
		RPS     float64 `json:"rps"`
		Burst   int     `json:"burst"`
	} `json:"rateLimit"`

	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`
}

// DefaultConfig creates a default configuration
func DefaultConfig() Config {
	cfg := Config{
		BaseURL:        DefaultBaseURL,
		TimeoutSeconds: 10,
		LogLevel:       "info",
		LogFormat:      "text",
	}
	cfg.RateLimit.RPS = 1.0
	cfg.RateLimit.Burst = 5
	return cfg
}

// Timeout returns the HTTP timeout as a duration.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks that the configuration can be used for requests.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &ConfigError{Field: "apiKey", Err: ErrMissingAPIKey}
	}
	if c.BaseURL == "" {
		return &ConfigError{Field: "baseURL", Err: errors.New("must not be empty")}
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return &ConfigError{
			Field: "rateLimit",
			Err:   fmt.Errorf("rps and burst must be positive (got %v, %d)", c.RateLimit.RPS, c.RateLimit.Burst),
		}
	}
	return nil
}

// LoadConfig loads configuration from a JSON file on top of the defaults
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()

	file, err := os.Open(filename)
	if err != nil {
		return Config{}, &ConfigError{Field: filename, Err: err}
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, &ConfigError{Field: filename, Err: err}
	}

	return cfg, nil
}

// FromEnv returns the defaults overridden by environment variables.
func FromEnv() Config {
	cfg := DefaultConfig()
	applyEnv(&cfg)
	return cfg
}

// Load builds the configuration the CLI uses: .env file if present, then
// the optional JSON file, then environment overrides.
func Load(filename string) (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("loading .env file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if filename != "" {
		loaded, err := LoadConfig(filename)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if key, err := GetAPIKey(); err == nil {
		cfg.APIKey = strings.TrimSpace(key)
	}
	if v := strings.TrimSpace(os.Getenv("OWAPI_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
}
