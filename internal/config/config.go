// Package config holds the process configuration, read from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries every tunable the server reads at boot. Defaults match the
// reference deployment; a .env file is honored via godotenv in main.
type Config struct {
	Host          string        `env:"HOST" envDefault:"0.0.0.0"`
	Port          string        `env:"PORT" envDefault:"8080"`
	StaticDir     string        `env:"STATIC_DIR" envDefault:"."`
	PlayerTTL     time.Duration `env:"PLAYER_TTL" envDefault:"45s"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"30s"`
	MaxBodyBytes  int64         `env:"MAX_BODY_BYTES" envDefault:"1000000"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
