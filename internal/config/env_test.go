package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pricing-ingest/internal/pricing"
)

func TestLoadEnvFileSetsUnsetVars(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "env")
	content := "FOO=bar\nBAZ=qux\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("FOO", "")
	os.Unsetenv("FOO")
	t.Cleanup(func() { os.Unsetenv("BAZ") })
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile err: %v", err)
	}
	if os.Getenv("FOO") != "bar" {
		t.Fatalf("expected FOO=bar, got %q", os.Getenv("FOO"))
	}
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "env")
	content := "FOO=bar\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("FOO", "existing")
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile err: %v", err)
	}
	if os.Getenv("FOO") != "existing" {
		t.Fatalf("expected existing to remain, got %q", os.Getenv("FOO"))
	}
}

func TestConfigureLoggingHonoursLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Setenv("LOG_LEVEL", "warn")
	var buf bytes.Buffer
	ConfigureLogging(&buf)
	slog.Info("hidden")
	slog.Warn("shown", "provider", "openai")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered, got %s", out)
	}
	if !strings.Contains(out, `"provider":"openai"`) {
		t.Fatalf("expected JSON warn line, got %s", out)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PRICING_TEST_MODE", "OPENAI_PRICING_URL", "OPENAI_PRICING_FIXTURE", "PRICING_FETCH_TIMEOUT", "PRICING_FIXTURE_DIR", "PRICING_REDIS_URL", "REDIS_URL"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.FetchTimeout != 20*time.Second {
		t.Fatalf("timeout = %v, want 20s", cfg.FetchTimeout)
	}
	if len(cfg.Sources) != len(pricing.ProviderKeys) {
		t.Fatalf("expected a source per provider, got %d", len(cfg.Sources))
	}
	dalle := cfg.Sources[pricing.DALLE]
	if dalle.Document != "openai" || dalle.FixturePath != filepath.Join("fixtures", "openai.md") {
		t.Fatalf("dalle should share the openai document, got %+v", dalle)
	}
	if dalle.ForceFixture {
		t.Fatal("fixtures should not be forced by default")
	}
	if cfg.RedisURL != "" {
		t.Fatalf("redis should be disabled by default, got %q", cfg.RedisURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PRICING_TEST_MODE", "")
	t.Setenv("ANTHROPIC_PRICING_URL", "http://localhost:9999/anthropic")
	t.Setenv("ANTHROPIC_PRICING_FIXTURE", "1")
	t.Setenv("GEMINI_PRICING_FIXTURE_PATH", "/tmp/gemini.md")
	t.Setenv("PRICING_FETCH_TIMEOUT", "3s")
	t.Setenv("PRICING_REDIS_URL", "")
	t.Setenv("REDIS_URL", "redis://cache:6379")

	cfg := Load()
	a := cfg.Sources[pricing.Anthropic]
	if a.URL != "http://localhost:9999/anthropic" || !a.ForceFixture {
		t.Fatalf("unexpected anthropic source %+v", a)
	}
	if got := cfg.Sources[pricing.Gemini].FixturePath; got != "/tmp/gemini.md" {
		t.Fatalf("gemini fixture = %q", got)
	}
	if cfg.Sources[pricing.OpenAI].ForceFixture {
		t.Fatal("force flag must be per provider")
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Fatalf("timeout = %v, want 3s", cfg.FetchTimeout)
	}
	if cfg.RedisURL != "redis://cache:6379" {
		t.Fatalf("expected REDIS_URL fallback, got %q", cfg.RedisURL)
	}
}

func TestTestModeForcesEveryFixture(t *testing.T) {
	t.Setenv("PRICING_TEST_MODE", "1")
	for key, src := range Load().Sources {
		if !src.ForceFixture {
			t.Errorf("%s should be fixture-only in test mode", key)
		}
	}
}
