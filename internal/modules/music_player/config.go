package music_player

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/hydrogenbot/hydrogen/internal/config"
)

// Config holds the music player module knobs. Node addresses live in the
// process configuration; these tune playback behavior only.
type Config struct {
	// SearchPrefix is prepended to a play query that resolved to nothing,
	// turning it into a node search expression.
	SearchPrefix string `env:"SEARCH_PREFIX" envDefault:"ytsearch:"`

	// EmptyChatTimeout is how long, in seconds, a player survives in an
	// empty voice channel before it is destroyed.
	EmptyChatTimeout int `env:"EMPTY_CHAT_TIMEOUT" envDefault:"10"`

	// LavalinkTimeout bounds the node websocket handshake and each REST
	// call, in milliseconds.
	LavalinkTimeout int `env:"LAVALINK_TIMEOUT" envDefault:"5000"`

	// QueueMaxSize caps the number of tracks a guild's queue holds.
	QueueMaxSize int `env:"QUEUE_MAX_SIZE" envDefault:"1000"`
}

// loadConfig reads the module knobs from HYDROGEN_-prefixed environment
// variables and validates them.
func loadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: config.EnvPrefix}); err != nil {
		return nil, err
	}

	var errs []error
	if cfg.SearchPrefix == "" {
		errs = append(errs, errors.New("search prefix must not be empty"))
	}
	if cfg.EmptyChatTimeout <= 0 {
		errs = append(errs, errors.New("empty chat timeout must be positive"))
	}
	if cfg.LavalinkTimeout <= 0 {
		errs = append(errs, errors.New("lavalink timeout must be positive"))
	}
	if cfg.QueueMaxSize <= 0 {
		errs = append(errs, errors.New("queue max size must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IdleTimeout returns the empty-channel grace period as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.EmptyChatTimeout) * time.Second
}

// NodeTimeout returns the node handshake and REST deadline as a duration.
func (c *Config) NodeTimeout() time.Duration {
	return time.Duration(c.LavalinkTimeout) * time.Millisecond
}
