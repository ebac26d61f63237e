package config

import (
	"errors"
	"testing"
	"time"

	"moodtrip/internal/modules/usage"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("MOODTRIP_GATEWAY_URL", "https://llm.example.test")
	t.Setenv("MOODTRIP_GATEWAY_KEY", "k")

	cfg, err := fromEnv()
	if err != nil {
		t.Fatalf("fromEnv: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.Gateway.Provider != ProviderProxy {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Gateway.Model != "gemini-2.5-flash" || cfg.Gateway.MaxTokens != 8192 || cfg.Gateway.Temperature != 0.7 {
		t.Fatalf("unexpected gateway defaults: %+v", cfg.Gateway)
	}
	if cfg.Usage.MonthlyQuota != usage.DefaultMonthlyQuota {
		t.Fatalf("unexpected quota default %d", cfg.Usage.MonthlyQuota)
	}
	if cfg.Gateway.Timeout != 90*time.Second || cfg.Usage.InFlightTTL != usage.DefaultInFlightTTL {
		t.Fatalf("unexpected durations: %+v %+v", cfg.Gateway, cfg.Usage)
	}
	if len(cfg.HTTP.AllowedOrigins) != 1 || cfg.HTTP.AllowedOrigins[0] != "*" {
		t.Fatalf("unexpected origins %v", cfg.HTTP.AllowedOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MOODTRIP_GATEWAY_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g")
	t.Setenv("MOODTRIP_GATEWAY_TIMEOUT", "45s")
	t.Setenv("MOODTRIP_MONTHLY_QUOTA", "7")
	t.Setenv("MOODTRIP_RATE_RPS", "not-a-number")
	t.Setenv("MOODTRIP_ALLOWED_ORIGINS", "https://a.test, https://b.test,")

	cfg, err := fromEnv()
	if err != nil {
		t.Fatalf("fromEnv: %v", err)
	}
	if cfg.Gateway.Provider != ProviderGemini || cfg.Gateway.Timeout != 45*time.Second || cfg.Usage.MonthlyQuota != 7 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.HTTP.RateRPS != 2 {
		t.Fatalf("invalid number should fall back to default, got %v", cfg.HTTP.RateRPS)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 || cfg.HTTP.AllowedOrigins[1] != "https://b.test" {
		t.Fatalf("unexpected origins %v", cfg.HTTP.AllowedOrigins)
	}
}

func TestFromEnvMissingCredential(t *testing.T) {
	t.Setenv("MOODTRIP_GATEWAY_URL", "")
	t.Setenv("MOODTRIP_GATEWAY_KEY", "")
	if _, err := fromEnv(); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential for proxy, got %v", err)
	}

	t.Setenv("MOODTRIP_GATEWAY_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := fromEnv(); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential for gemini, got %v", err)
	}

	t.Setenv("MOODTRIP_GATEWAY_PROVIDER", "carrier-pigeon")
	if _, err := fromEnv(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
