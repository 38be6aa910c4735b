// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Defaults can be overridden via environment variables:
//
//	PORT / CRCALC_PORT       listen port (default 8080)
//	CRCALC_DATA_FILE         card dataset; empty uses the embedded one
//	CRCALC_DB_PATH           SQLite file for scenarios; empty keeps them in memory
//	CRCALC_API_BASE          API base for the terminal client; empty runs locally
//	CRCALC_DEFAULT_DEFENCE   English name of the default defence card
type Config struct {
	Port           string        `env:"PORT"`
	CalcPort       string        `env:"CRCALC_PORT" envDefault:"8080"`
	DataFile       string        `env:"CRCALC_DATA_FILE"`
	DBPath         string        `env:"CRCALC_DB_PATH"`
	APIBase        string        `env:"CRCALC_API_BASE"`
	DefaultDefence string        `env:"CRCALC_DEFAULT_DEFENCE" envDefault:"Knight"`
	SessionIdle    time.Duration `env:"CRCALC_SESSION_IDLE" envDefault:"30m"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ListenAddr prefers PORT (set by most hosts) over CRCALC_PORT.
func (c Config) ListenAddr() string {
	if c.Port != "" {
		return ":" + c.Port
	}
	return ":" + c.CalcPort
}
