// Package config loads server settings from the environment, with an
// optional .env file for development.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	Port        string `env:"PORT" envDefault:"8080"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"false"`

	// DeckSeed fixes the shuffle; 0 draws a fresh seed.
	DeckSeed int64    `env:"DECK_SEED" envDefault:"0"`
	MaxTurns int      `env:"MAX_TURNS" envDefault:"13"`
	Players  []string `env:"PLAYERS" envDefault:"north,east,south,west" envSeparator:","`

	// Demo runs; STOP_FILE or MAX_SECONDS end a long run between games.
	DemoGames  int    `env:"DEMO_GAMES" envDefault:"1"`
	StopFile   string `env:"STOP_FILE"`
	MaxSeconds int    `env:"MAX_SECONDS" envDefault:"0"`

	Debug    bool   `env:"DEBUG" envDefault:"false"`
	NoColor  string `env:"NO_COLOR"`
	UseColor string `env:"USE_COLOR"`

	OriginAllowlist []string `env:"ORIGIN_ALLOWLIST" envSeparator:","`
}

// Load reads the given .env files (default ".env") if present, then parses
// the environment. Variables already set win over file values.
func Load(files ...string) (Config, error) {
	_ = godotenv.Load(files...)
	return Parse()
}

// Parse reads configuration from environment variables only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	for i, p := range cfg.Players {
		cfg.Players[i] = strings.TrimSpace(p)
	}
	return cfg, nil
}

// Color reports whether ANSI colors should be used for terminal output.
func (c Config) Color() bool {
	return c.NoColor == "" && strings.TrimSpace(c.UseColor) != "0"
}
