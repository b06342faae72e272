package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("AUTOSAVE_DELAY", "")
	t.Setenv("DEFAULT_CREDITS", "")
	t.Setenv("LLM_PROVIDER", "")

	cfg := Load()
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.AutosaveDelay != time.Second {
		t.Fatalf("expected autosave delay 1s, got %s", cfg.AutosaveDelay)
	}
	if cfg.DefaultCredits != 3 {
		t.Fatalf("expected 3 default credits, got %d", cfg.DefaultCredits)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected openai provider, got %q", cfg.LLMProvider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("AUTOSAVE_DELAY", "250ms")
	t.Setenv("DEFAULT_CREDITS", "7")
	t.Setenv("LLM_PROVIDER", "Google")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.AutosaveDelay != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", cfg.AutosaveDelay)
	}
	if cfg.DefaultCredits != 7 {
		t.Fatalf("expected 7 credits, got %d", cfg.DefaultCredits)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected gemini, got %q", cfg.LLMProvider)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowOrigin)
	}
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("AUTOSAVE_DELAY", "soon")
	t.Setenv("DEFAULT_CREDITS", "-2")

	cfg := Load()
	if cfg.AutosaveDelay != time.Second {
		t.Fatalf("expected fallback delay, got %s", cfg.AutosaveDelay)
	}
	if cfg.DefaultCredits != 3 {
		t.Fatalf("expected fallback credits, got %d", cfg.DefaultCredits)
	}
}

func TestUnknownProviderDisablesLLM(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic-ish")
	t.Setenv("OBJECT_STORE", "ftp")

	cfg := Load()
	if cfg.LLMProvider != "none" {
		t.Fatalf("expected none, got %q", cfg.LLMProvider)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("expected local store, got %q", cfg.ObjectStoreType)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	dev := Config{Env: "dev", ObjectStoreType: "local", LLMProvider: "none"}
	if err := dev.Validate(); err != nil {
		t.Fatalf("dev config should validate: %v", err)
	}

	prod := Config{Env: "production", ObjectStoreType: "s3", LLMProvider: "openai"}
	err := prod.Validate()
	if err == nil {
		t.Fatalf("expected production errors")
	}
	for _, want := range []string{"DATABASE_URL", "JWT_SECRET", "S3_BUCKET", "LLM_MODEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %s in %v", want, err)
		}
	}

	t.Setenv("JWT_SECRET", "s")
	prod = Config{Env: "production", DatabaseURL: "postgres://x", ObjectStoreType: "local", LLMProvider: "none"}
	if err := prod.Validate(); err != nil {
		t.Fatalf("complete production config: %v", err)
	}
}
