package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/keshon/textcmd/pkg/cmd"
	"github.com/rs/zerolog/log"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	DeveloperID  string `env:"DEVELOPER_ID"`

	Prefix        string `env:"COMMAND_PREFIX" envDefault:"!"`
	QuotePairs    string `env:"COMMAND_QUOTES"`
	PreviewLength int    `env:"PREVIEW_LENGTH" envDefault:"24"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	// Entity lookups against the Discord REST API, in requests per second.
	LookupRate    float64 `env:"LOOKUP_RATE" envDefault:"5"`
	LookupRateMax float64 `env:"LOOKUP_RATE_MAX" envDefault:"20"`
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, falling back to system environment variables")
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Prefix == "" {
		return nil, fmt.Errorf("COMMAND_PREFIX must not be empty")
	}
	if _, err := cfg.Quotes(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// New loads the config and exits on error.
func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	return cfg
}

// Quotes returns the configured quote map, or cmd.DefaultQuotes.
func (c *Config) Quotes() (cmd.Quotes, error) {
	if c.QuotePairs == "" {
		return cmd.DefaultQuotes, nil
	}
	q, err := cmd.ParseQuotes(c.QuotePairs)
	if err != nil {
		return nil, fmt.Errorf("COMMAND_QUOTES: %w", err)
	}
	return q, nil
}

// Parser builds the argument parser for types from the config.
func (c *Config) Parser(types cmd.TypeParser) *cmd.Parser {
	q, err := c.Quotes()
	if err != nil {
		q = cmd.DefaultQuotes
	}
	return &cmd.Parser{Types: types, Quotes: q, PreviewLength: c.PreviewLength}
}
