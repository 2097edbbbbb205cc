package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.Port != 8080 || cfg.StoreDriver != StoreSQLite || cfg.Notifier != NotifierDiscord {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.PollInterval != 2*time.Second || cfg.StalenessWindow != time.Hour || cfg.MinDuration != time.Minute {
		t.Fatalf("unexpected timing defaults %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("NOTIFIER", "LINE")
	t.Setenv("CHANNEL_SECRET", "secret")
	t.Setenv("CHANNEL_ACCESS_TOKEN", "token")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("POLL_INTERVAL", "5s")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.Notifier != NotifierLine || cfg.StoreDriver != StoreRedis || cfg.PollInterval != 5*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			StoreDriver:     StoreSQLite,
			Notifier:        NotifierDiscord,
			DiscordToken:    "token",
			PollInterval:    2 * time.Second,
			StalenessWindow: time.Hour,
			MaxTextLength:   1000,
		}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"store driver", func(c *Config) { c.StoreDriver = "mongo" }},
		{"notifier", func(c *Config) { c.Notifier = "slack" }},
		{"discord token", func(c *Config) { c.DiscordToken = "" }},
		{"line secrets", func(c *Config) { c.Notifier = NotifierLine }},
		{"poll interval", func(c *Config) { c.PollInterval = 0 }},
		{"window shorter than poll", func(c *Config) { c.StalenessWindow = time.Second }},
		{"text length", func(c *Config) { c.MaxTextLength = 0 }},
	}
	for _, tt := range tests {
		cfg := valid()
		tt.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: Validate accepted %+v", tt.name, cfg)
		}
	}
	cfg := valid()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate error = %v", err)
	}
}
