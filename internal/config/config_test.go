package config

import (
	"testing"
	"time"
)

func TestEnvBool(t *testing.T) {
	t.Setenv("X_BOOL", "yes")
	if !envBool("X_BOOL", false) {
		t.Error(`"yes" should parse as true`)
	}
	t.Setenv("X_BOOL", "OFF")
	if envBool("X_BOOL", true) {
		t.Error(`"OFF" should parse as false`)
	}
	t.Setenv("X_BOOL", "garbage")
	if !envBool("X_BOOL", true) {
		t.Error("unparseable value should fall back to the default")
	}
	if envBool("X_BOOL_UNSET", false) {
		t.Error("unset variable should fall back to the default")
	}
}

func TestEnvDur(t *testing.T) {
	t.Setenv("X_DUR", "250ms")
	if got := envDur("X_DUR", time.Second); got != 250*time.Millisecond {
		t.Errorf("envDur = %v, want 250ms", got)
	}
	t.Setenv("X_DUR", "nonsense")
	if got := envDur("X_DUR", time.Second); got != time.Second {
		t.Errorf("envDur fallback = %v, want 1s", got)
	}
}

func TestParseMethods(t *testing.T) {
	m := parseMethods("get, head ,POST")
	for _, want := range []string{"GET", "HEAD", "POST"} {
		if !m[want] {
			t.Errorf("method %s missing from %v", want, m)
		}
	}
	if len(m) != 3 {
		t.Errorf("expected 3 methods, got %d", len(m))
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "0s")
	t.Setenv("RATE_LIMIT_TTL", "1ms")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity < 1 {
		t.Errorf("capacity = %d, must be clamped to at least 1", cfg.Capacity)
	}
	if cfg.RefillTokens < 1 {
		t.Errorf("refill tokens = %d, must be clamped to at least 1", cfg.RefillTokens)
	}
	if cfg.RefillInterval <= 0 {
		t.Errorf("refill interval = %v, must be positive", cfg.RefillInterval)
	}
	if cfg.TTL < 5*cfg.RefillInterval {
		t.Errorf("ttl = %v, must cover at least 5 refill intervals", cfg.TTL)
	}
}
