package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hydrogenbot/hydrogen/internal/config"
)

func TestNodeAddressUnmarshalText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    config.NodeAddress
		wantErr bool
	}{
		{
			name:  "address and password",
			input: "localhost:2333,youshallnotpass",
			want:  config.NodeAddress{Address: "localhost:2333", Password: "youshallnotpass"},
		},
		{
			name:  "tls flag",
			input: "lavalink.example.com:443,secret,tls",
			want:  config.NodeAddress{Address: "lavalink.example.com:443", Password: "secret", TLS: true},
		},
		{
			name:  "true flag",
			input: "lavalink.example.com:443,secret,true",
			want:  config.NodeAddress{Address: "lavalink.example.com:443", Password: "secret", TLS: true},
		},
		{
			name:  "explicit false flag",
			input: "localhost:2333,secret,false",
			want:  config.NodeAddress{Address: "localhost:2333", Password: "secret"},
		},
		{
			name:    "missing password",
			input:   "localhost:2333",
			wantErr: true,
		},
		{
			name:    "empty address",
			input:   ",secret",
			wantErr: true,
		},
		{
			name:    "unknown flag",
			input:   "localhost:2333,secret,quic",
			wantErr: true,
		},
		{
			name:    "too many parts",
			input:   "localhost:2333,secret,tls,extra",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got config.NodeAddress
			err := got.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parsed %q as %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNodeAddressStringRedactsPassword(t *testing.T) {
	t.Parallel()

	n := config.NodeAddress{Address: "localhost:2333", Password: "hunter2", TLS: true}
	if s := n.String(); strings.Contains(s, "hunter2") {
		t.Errorf("String() leaked the password: %q", s)
	}
}

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	yaml := `
discordToken: token-123
defaultLanguage: pt-BR
lavalink:
  - "localhost:2333,youshallnotpass"
  - address: lavalink.example.com:443
    password: secret
    tls: true
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DiscordToken != "token-123" {
		t.Errorf("DiscordToken = %q, want token-123", cfg.DiscordToken)
	}
	if cfg.DefaultLanguage != "pt-BR" {
		t.Errorf("DefaultLanguage = %q, want pt-BR", cfg.DefaultLanguage)
	}
	if cfg.LanguagePath != "langs" {
		t.Errorf("LanguagePath should keep its default, got %q", cfg.LanguagePath)
	}
	if len(cfg.Lavalink) != 2 {
		t.Fatalf("expected 2 lavalink nodes, got %d", len(cfg.Lavalink))
	}
	if cfg.Lavalink[0].Address != "localhost:2333" || cfg.Lavalink[0].TLS {
		t.Errorf("first node parsed wrong: %+v", cfg.Lavalink[0])
	}
	if cfg.Lavalink[1].Address != "lavalink.example.com:443" || !cfg.Lavalink[1].TLS {
		t.Errorf("second node parsed wrong: %+v", cfg.Lavalink[1])
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	yaml := `
discordToken: token-123
lavalink:
  - "localhost:2333,pass"
bogusField: true
`
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestLoadFromReaderValidates(t *testing.T) {
	t.Parallel()

	yaml := `
defaultLanguage: en-US
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "discordToken") {
		t.Errorf("error should mention discordToken, got: %v", err)
	}
	if !strings.Contains(err.Error(), "lavalink") {
		t.Errorf("error should mention lavalink, got: %v", err)
	}
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("HYDROGEN_DISCORD_TOKEN", "env-token")
	t.Setenv("HYDROGEN_LAVALINK", "localhost:2333,pass;other.example.com:443,secret,tls")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DiscordToken != "env-token" {
		t.Errorf("DiscordToken = %q, want env-token", cfg.DiscordToken)
	}
	if len(cfg.Lavalink) != 2 {
		t.Fatalf("expected 2 lavalink nodes, got %d", len(cfg.Lavalink))
	}
	if !cfg.Lavalink[1].TLS {
		t.Errorf("second node should have TLS, got %+v", cfg.Lavalink[1])
	}
	if cfg.DefaultLanguage != "en-US" {
		t.Errorf("DefaultLanguage should default to en-US, got %q", cfg.DefaultLanguage)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
discordToken: file-token
defaultLanguage: pt-BR
lavalink:
  - "filehost:2333,filepass"
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("HYDROGEN_CONFIG_FILE", path)
	t.Setenv("HYDROGEN_DISCORD_TOKEN", "env-token")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DiscordToken != "env-token" {
		t.Errorf("environment should override file, got token %q", cfg.DiscordToken)
	}
	if cfg.DefaultLanguage != "pt-BR" {
		t.Errorf("file value should survive when env is unset, got %q", cfg.DefaultLanguage)
	}
	if len(cfg.Lavalink) != 1 || cfg.Lavalink[0].Address != "filehost:2333" {
		t.Errorf("lavalink nodes should come from the file, got %+v", cfg.Lavalink)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("HYDROGEN_CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	t.Setenv("HYDROGEN_DISCORD_TOKEN", "env-token")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}
