// Package config provides hierarchical configuration loading for passproxy.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the passproxy service.
type Config struct {
	Server   Server   `yaml:"server"`
	Auth     Auth     `yaml:"auth"`
	Upstream Upstream `yaml:"upstream"`
	Cache    Cache    `yaml:"cache"`
	Logging  Logging  `yaml:"logging"`
	Breaker  Breaker  `yaml:"breaker"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Auth holds shared-secret access control configuration.
// An empty APIKey disables the gate entirely.
type Auth struct {
	APIKey string `yaml:"api_key"`
}

// Upstream holds Roblox platform API configuration.
type Upstream struct {
	ApisURL  string        `yaml:"apis_url"`
	GamesURL string        `yaml:"games_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Cache holds game-pass listing cache configuration.
type Cache struct {
	Backend   string        `yaml:"backend"` // "memory" or "ristretto"
	TTL       time.Duration `yaml:"ttl"`
	MaxSizeMB int64         `yaml:"max_size_mb"` // ristretto backend only
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// Breaker holds circuit breaker configuration for upstream calls.
// MaxFailures of 0 disables the breaker.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			CORSOrigin: "*",
		},
		Upstream: Upstream{
			ApisURL:  "https://apis.roblox.com",
			GamesURL: "https://games.roblox.com",
			Timeout:  10 * time.Second,
		},
		Cache: Cache{
			Backend:   "memory",
			TTL:       10 * time.Minute,
			MaxSizeMB: 64,
		},
		Logging: Logging{
			Level:   "info",
			Service: "passproxy",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
	}
}
