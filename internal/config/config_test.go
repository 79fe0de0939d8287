package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Postgres.MaxConnections != 20 {
		t.Errorf("Postgres.MaxConnections = %d, want 20", cfg.Database.Postgres.MaxConnections)
	}
	if cfg.RateLimit.RevealWindow != 24*time.Hour {
		t.Errorf("RateLimit.RevealWindow = %s, want 24h", cfg.RateLimit.RevealWindow)
	}
	if cfg.Outreach.MaxBatchSize != 200 {
		t.Errorf("Outreach.MaxBatchSize = %d, want 200", cfg.Outreach.MaxBatchSize)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REVEAL_USER_LIMIT", "5")
	t.Setenv("REVEAL_WINDOW", "1m")
	t.Setenv("OUTREACH_MAX_BATCH", "50")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
	}
	if cfg.RateLimit.RevealUserLimit != 5 {
		t.Errorf("RevealUserLimit = %d, want 5", cfg.RateLimit.RevealUserLimit)
	}
	if cfg.RateLimit.RevealWindow != time.Minute {
		t.Errorf("RevealWindow = %s, want 1m", cfg.RateLimit.RevealWindow)
	}
	if cfg.Outreach.MaxBatchSize != 50 {
		t.Errorf("MaxBatchSize = %d, want 50", cfg.Outreach.MaxBatchSize)
	}
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("POSTGRES_MAX_CONNECTIONS", "not-a-number")
	t.Setenv("REVEAL_WINDOW", "soon")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Database.Postgres.MaxConnections != 20 {
		t.Errorf("MaxConnections = %d, want default 20", cfg.Database.Postgres.MaxConnections)
	}
	if cfg.RateLimit.RevealWindow != 24*time.Hour {
		t.Errorf("RevealWindow = %s, want default 24h", cfg.RateLimit.RevealWindow)
	}
}

func TestValidate_RejectsNonPositiveLimits(t *testing.T) {
	t.Setenv("REVEAL_USER_LIMIT", "-1")

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() expected error for negative reveal limit, got nil")
	}
}
