package music_player

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SearchPrefix != "ytsearch:" {
		t.Errorf("expected default search prefix %q, got %q", "ytsearch:", cfg.SearchPrefix)
	}
	if cfg.IdleTimeout() != 10*time.Second {
		t.Errorf("expected default idle timeout 10s, got %s", cfg.IdleTimeout())
	}
	if cfg.NodeTimeout() != 5000*time.Millisecond {
		t.Errorf("expected default node timeout 5s, got %s", cfg.NodeTimeout())
	}
	if cfg.QueueMaxSize != 1000 {
		t.Errorf("expected default queue max size 1000, got %d", cfg.QueueMaxSize)
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("HYDROGEN_SEARCH_PREFIX", "scsearch:")
	t.Setenv("HYDROGEN_EMPTY_CHAT_TIMEOUT", "30")
	t.Setenv("HYDROGEN_LAVALINK_TIMEOUT", "2500")
	t.Setenv("HYDROGEN_QUEUE_MAX_SIZE", "50")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SearchPrefix != "scsearch:" {
		t.Errorf("expected search prefix %q, got %q", "scsearch:", cfg.SearchPrefix)
	}
	if cfg.IdleTimeout() != 30*time.Second {
		t.Errorf("expected idle timeout 30s, got %s", cfg.IdleTimeout())
	}
	if cfg.NodeTimeout() != 2500*time.Millisecond {
		t.Errorf("expected node timeout 2.5s, got %s", cfg.NodeTimeout())
	}
	if cfg.QueueMaxSize != 50 {
		t.Errorf("expected queue max size 50, got %d", cfg.QueueMaxSize)
	}
}

func TestLoadConfigRejectsNonPositiveValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero idle timeout", "HYDROGEN_EMPTY_CHAT_TIMEOUT", "0"},
		{"negative node timeout", "HYDROGEN_LAVALINK_TIMEOUT", "-1"},
		{"zero queue size", "HYDROGEN_QUEUE_MAX_SIZE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := loadConfig(); err == nil {
				t.Errorf("expected error for %s=%s, got nil", tt.key, tt.value)
			}
		})
	}
}
