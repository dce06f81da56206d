package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "passproxy.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
// PORT and API_KEY keep their historical names; everything else is PASSPROXY_*.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.CORSOrigin, "PASSPROXY_CORS_ORIGIN")
	setString(&cfg.Auth.APIKey, "API_KEY")
	setString(&cfg.Upstream.ApisURL, "PASSPROXY_APIS_URL")
	setString(&cfg.Upstream.GamesURL, "PASSPROXY_GAMES_URL")
	setDuration(&cfg.Upstream.Timeout, "PASSPROXY_UPSTREAM_TIMEOUT")
	setString(&cfg.Cache.Backend, "PASSPROXY_CACHE_BACKEND")
	setDuration(&cfg.Cache.TTL, "PASSPROXY_CACHE_TTL")
	setInt64(&cfg.Cache.MaxSizeMB, "PASSPROXY_CACHE_SIZE_MB")
	setString(&cfg.Logging.Level, "PASSPROXY_LOG_LEVEL")
	setString(&cfg.Logging.Service, "PASSPROXY_LOG_SERVICE")
	setInt(&cfg.Breaker.MaxFailures, "PASSPROXY_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "PASSPROXY_BREAKER_TIMEOUT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Upstream.ApisURL == "" {
		return errors.New("upstream.apis_url is required")
	}
	if cfg.Upstream.GamesURL == "" {
		return errors.New("upstream.games_url is required")
	}
	if cfg.Cache.Backend != "memory" && cfg.Cache.Backend != "ristretto" {
		return fmt.Errorf("cache.backend must be memory or ristretto, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL <= 0 {
		return errors.New("cache.ttl must be positive")
	}
	if cfg.Breaker.MaxFailures < 0 {
		return errors.New("breaker.max_failures must be >= 0")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
