// Package config loads the bot configuration from an optional YAML file and
// from HYDROGEN_-prefixed environment variables. Values from the environment
// take precedence over the file, which takes precedence over built-in
// defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is prepended to every environment variable name.
	EnvPrefix = "HYDROGEN_"

	// FileEnv names the environment variable that points at an optional
	// YAML configuration file.
	FileEnv = "HYDROGEN_CONFIG_FILE"
)

// Config holds the process-wide configuration.
type Config struct {
	// DiscordToken authenticates the gateway session.
	DiscordToken string `yaml:"discordToken" env:"DISCORD_TOKEN"`
	// Lavalink lists the audio nodes the bot may connect to.
	Lavalink []NodeAddress `yaml:"lavalink" env:"LAVALINK" envSeparator:";"`
	// DefaultLanguage is the locale used when a guild's locale has no
	// translation catalog.
	DefaultLanguage string `yaml:"defaultLanguage" env:"DEFAULT_LANGUAGE"`
	// LanguagePath is the directory containing translation catalogs.
	LanguagePath string `yaml:"languagePath" env:"LANGUAGE_PATH"`
	// MetricsAddress is the listen address for the Prometheus scrape
	// endpoint. Empty disables the endpoint.
	MetricsAddress string `yaml:"metricsAddress" env:"METRICS_ADDRESS"`
}

// NodeAddress identifies a single Lavalink node.
type NodeAddress struct {
	Address  string
	Password string
	TLS      bool
}

// String returns the node address without the password, safe for logging.
func (n NodeAddress) String() string {
	if n.TLS {
		return n.Address + " (tls)"
	}
	return n.Address
}

// UnmarshalText parses the compact "host:port,password[,tls]" form used by
// HYDROGEN_LAVALINK entries and by scalar YAML list items.
func (n *NodeAddress) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), ",")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("config: lavalink node %q: expected host:port,password[,tls]", string(text))
	}

	address := strings.TrimSpace(parts[0])
	if address == "" {
		return fmt.Errorf("config: lavalink node %q: address is empty", string(text))
	}

	n.Address = address
	n.Password = parts[1]
	n.TLS = false

	if len(parts) == 3 {
		switch flag := strings.TrimSpace(parts[2]); flag {
		case "tls", "true":
			n.TLS = true
		case "", "false":
		default:
			return fmt.Errorf("config: lavalink node %q: unknown flag %q", string(text), flag)
		}
	}

	return nil
}

// UnmarshalYAML accepts either the compact scalar form or a mapping with
// address, password and tls keys.
func (n *NodeAddress) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return n.UnmarshalText([]byte(value.Value))
	}

	var raw struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		TLS      bool   `yaml:"tls"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	n.Address = raw.Address
	n.Password = raw.Password
	n.TLS = raw.TLS
	return nil
}

func defaultConfig() *Config {
	return &Config{
		DefaultLanguage: "en-US",
		LanguagePath:    "langs",
	}
}

// Load assembles the configuration from defaults, the YAML file named by
// HYDROGEN_CONFIG_FILE (if set) and the environment, then validates it.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(FileEnv); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %q: %w", path, err)
		}
		err = decodeYAML(f, cfg)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of the defaults and
// validates the result. The environment is not consulted. Useful in tests
// where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := defaultConfig()
	if err := decodeYAML(r, cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.DiscordToken == "" {
		errs = append(errs, errors.New("discordToken is required (HYDROGEN_DISCORD_TOKEN)"))
	}
	if len(cfg.Lavalink) == 0 {
		errs = append(errs, errors.New("at least one lavalink node is required (HYDROGEN_LAVALINK)"))
	}
	for i, node := range cfg.Lavalink {
		if node.Address == "" {
			errs = append(errs, fmt.Errorf("lavalink[%d]: address is required", i))
		}
	}
	if cfg.DefaultLanguage == "" {
		errs = append(errs, errors.New("defaultLanguage must not be empty"))
	}
	if cfg.LanguagePath == "" {
		errs = append(errs, errors.New("languagePath must not be empty"))
	}

	return errors.Join(errs...)
}
