package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TWITCH_CHANNEL", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("SCORES_FILE", "")
	t.Setenv("HTTP_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
	if want := filepath.Join("data", "scores.json"); cfg.ScoresFile != want {
		t.Errorf("ScoresFile = %q, want %q", cfg.ScoresFile, want)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/var/lib/leetbot")
	t.Setenv("SCORES_FILE", "/tmp/custom.json")
	t.Setenv("HTTP_ADDR", ":9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ScoresFile != "/tmp/custom.json" {
		t.Errorf("ScoresFile = %q, want /tmp/custom.json", cfg.ScoresFile)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want :9999", cfg.HTTPAddr)
	}
}

func TestScoresFileFollowsDataDir(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/bot")
	t.Setenv("SCORES_FILE", "")

	cfg, _ := Load()
	if want := filepath.Join("/srv/bot", "scores.json"); cfg.ScoresFile != want {
		t.Errorf("ScoresFile = %q, want %q", cfg.ScoresFile, want)
	}
}

func TestValidateChatReady(t *testing.T) {
	t.Setenv("TWITCH_CHANNEL", "chan")
	t.Setenv("TWITCH_BOT_USERNAME", "bot")
	t.Setenv("TWITCH_OAUTH_TOKEN", "oauth:token")
	cfg, _ := Load()
	if err := cfg.ValidateChatReady(); err != nil {
		t.Errorf("expected valid chat config, got %v", err)
	}

	t.Setenv("TWITCH_CHANNEL", "")
	cfg, _ = Load()
	if err := cfg.ValidateChatReady(); err == nil {
		t.Error("expected error when missing twitch envs")
	}
}
