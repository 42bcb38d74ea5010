package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solo.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  url: ws://localhost:9000/ws
  transport: ws
new_game:
  ticks_per_day: 30
  tick_period: 2s
  volatility: "1.25"
engine:
  price_retries: 4
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Transport != "ws" || cfg.Server.URL != "ws://localhost:9000/ws" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.NewGame.TicksPerDay != 30 || cfg.NewGame.TickPeriod != 2*time.Second {
		t.Errorf("new game = %+v", cfg.NewGame)
	}
	if cfg.NewGame.Volatility.String() != "1.25" {
		t.Errorf("volatility = %s", cfg.NewGame.Volatility)
	}
	if cfg.NewGame.TradingDays != 5 {
		t.Errorf("unset field lost its default: trading days = %d", cfg.NewGame.TradingDays)
	}
	if cfg.Engine.PriceRetries != 4 || cfg.Logging.Level != "debug" {
		t.Errorf("engine=%+v logging=%+v", cfg.Engine, cfg.Logging)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "engine:\n  max_digits: 6\n")
	t.Setenv("SOLO_ENGINE_MAX_DIGITS", "4")
	t.Setenv("SOLO_NEW_GAME_TICK_PERIOD", "750ms")
	t.Setenv("SOLO_SERVER_URL", "http://game.local:8080")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Engine.MaxDigits != 4 {
		t.Errorf("max digits = %d, want 4", cfg.Engine.MaxDigits)
	}
	if cfg.NewGame.TickPeriod != 750*time.Millisecond {
		t.Errorf("tick period = %s", cfg.NewGame.TickPeriod)
	}
	if cfg.Server.URL != "http://game.local:8080" {
		t.Errorf("server url = %s", cfg.Server.URL)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"transport", func(c *Config) { c.Server.Transport = "carrier-pigeon" }},
		{"ws url for http", func(c *Config) { c.Server.URL = "ws://x" }},
		{"ticks", func(c *Config) { c.NewGame.TicksPerDay = 0 }},
		{"period", func(c *Config) { c.NewGame.TickPeriod = 0 }},
		{"digits", func(c *Config) { c.Engine.MaxDigits = 19 }},
		{"level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
