package config

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileEnv names the environment variable pointing at an optional YAML config file.
const FileEnv = "CURRENCY_CONFIG"

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Log      LogConfig      `koanf:"log"`
	CORS     CORSConfig     `koanf:"cors"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host string `koanf:"host"`
	Port string `koanf:"port" validate:"required,numeric"`
	Addr string `koanf:"-"` // Combined host:port for convenience
}

// UpstreamConfig describes the exchange-rate provider.
type UpstreamConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	APIKey  string `koanf:"api_key" validate:"required"`
	// APIKeyParam is an SSM parameter name holding the API key. It is only
	// consulted when APIKey is empty.
	APIKeyParam string        `koanf:"api_key_param"`
	Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level      string `koanf:"level" validate:"oneof=debug info warn error"`
	Format     string `koanf:"format" validate:"oneof=json console"`
	OutputFile string `koanf:"output_file"`
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// envKeys maps supported environment variables to config keys.
var envKeys = map[string]string{
	"CURRENCY_SERVER_HOST":            "server.host",
	"CURRENCY_SERVER_PORT":            "server.port",
	"CURRENCY_UPSTREAM_BASE_URL":      "upstream.base_url",
	"CURRENCY_UPSTREAM_API_KEY":       "upstream.api_key",
	"CURRENCY_UPSTREAM_API_KEY_PARAM": "upstream.api_key_param",
	"CURRENCY_UPSTREAM_TIMEOUT":       "upstream.timeout",
	"CURRENCY_LOG_LEVEL":              "log.level",
	"CURRENCY_LOG_FORMAT":             "log.format",
	"CURRENCY_LOG_FILE":               "log.output_file",
	"CURRENCY_CORS_ALLOWED_ORIGINS":   corsOriginsKey,
}

// corsOriginsKey is the only list-valued key; its env value is comma separated.
const corsOriginsKey = "cors.allowed_origins"

// DefaultAllowedOrigins is used when no CORS origins are configured.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost",
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: "5000",
		},
		Upstream: UpstreamConfig{
			BaseURL: "https://v6.exchangerate-api.com/v6",
			Timeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds a Config by layering, from low to high precedence:
//  1. Defaults()
//  2. the YAML file named by CURRENCY_CONFIG, if set
//  3. environment variables, including those from a .env file
//
// When no API key is configured but an SSM parameter name is, the key is
// read from AWS SSM Parameter Store. The result is validated before return.
func Load(ctx context.Context) (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// Blank variables count as unset so they don't clobber lower layers.
	envProvider := env.ProviderWithValue("CURRENCY_", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		k := envKeys[key]
		if k == corsOriginsKey {
			return k, splitList(value)
		}
		return k, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := *Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = DefaultAllowedOrigins
	}

	if cfg.Upstream.APIKey == "" && cfg.Upstream.APIKeyParam != "" {
		fetcher, err := newParameterFetcher(ctx)
		if err != nil {
			return nil, err
		}
		if err := resolveAPIKey(ctx, &cfg.Upstream, fetcher); err != nil {
			return nil, err
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	// Combine host and port
	cfg.Server.Addr = net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)

	return &cfg, nil
}

// splitList splits a comma-separated value, trimming blanks and dropping empty items.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// Validate checks the struct tags on cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
