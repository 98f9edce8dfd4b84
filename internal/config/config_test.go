package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for k := range defaults {
		if v, ok := os.LookupEnv(k); ok {
			os.Unsetenv(k)
			t.Cleanup(func() { os.Setenv(k, v) })
		}
	}
}

func TestLoadWithDefaults_Succeeds(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.HTTP.Address != ":8000" || cfg.GRPC.Address != ":50051" || cfg.Auth.JWTSecret == "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Database.Driver != "memory" || !cfg.Database.Seed {
		t.Fatalf("store defaults: %+v", cfg.Database)
	}
	if cfg.Oracle.HistoryTurns != 6 || cfg.Transcript.MaxTurns != 10 || cfg.Oracle.Cooldown != time.Minute {
		t.Fatalf("history defaults: %+v %+v", cfg.Oracle, cfg.Transcript)
	}
	if cfg.Oracle.APIKey != "" {
		t.Fatalf("no api key expected by default")
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "test.db")
	t.Setenv("GRPC_ADDRESS", ":1234")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is not set")
	}
	t.Setenv("JWT_SECRET", "x")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with secret set: %v", err)
	}
	if cfg.GRPC.Address != ":1234" || cfg.Database.Path != "test.db" {
		t.Fatalf("env overrides ignored: %+v", cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("ORACLE_TIMEOUT", "5s")
	t.Setenv("TRANSCRIPT_TURNS", "4")
	t.Setenv("SEED_ROSTER", "false")
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Oracle.Timeout != 5*time.Second || cfg.Transcript.MaxTurns != 4 || cfg.Database.Seed {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "mongo")
	if _, err := LoadWithDefaults(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestString_MasksSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("GEMINI_API_KEY", "api-key-value")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s := cfg.String()
	if strings.Contains(s, "super-secret") || strings.Contains(s, "api-key-value") {
		t.Fatalf("secret leaked: %s", s)
	}
	if !strings.Contains(s, "configured=true") {
		t.Fatalf("oracle flag missing: %s", s)
	}
}
