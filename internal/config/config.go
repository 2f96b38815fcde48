package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the server configuration, read from config.yaml with
// environment overrides.
type Config struct {
	HTTP      HTTP      `yaml:"http"`
	Log       Log       `yaml:"log"`
	Postgres  Postgres  `yaml:"postgres"`
	Generator Generator `yaml:"generator"`
}

type HTTP struct {
	Port string `yaml:"port" env:"API_PORT" env-default:"8080"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Postgres struct {
	// URL is empty when the server runs without durable snapshots.
	URL string `yaml:"url" env:"DATABASE_URL" env-default:""`
}

type Generator struct {
	Schedule string        `yaml:"schedule" env:"GENERATOR_SCHEDULE" env-default:"@every 1h"`
	Horizon  time.Duration `yaml:"horizon" env:"GENERATOR_HORIZON" env-default:"720h"`
}

// New loads the configuration.
func New() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		// Allow env vars to override config file
		cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}
