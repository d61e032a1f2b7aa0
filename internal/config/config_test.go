package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("default port = %s", cfg.Port)
	}
	if cfg.PriceCacheTTLSeconds < 1 {
		t.Fatalf("price cache ttl must be positive, got %d", cfg.PriceCacheTTLSeconds)
	}
	if cfg.SearchDebounceMillis < 1 {
		t.Fatalf("search debounce must be positive, got %d", cfg.SearchDebounceMillis)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("address = %s", cfg.Address())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PRICE_CACHE_TTL_SECONDS", "120")
	t.Setenv("SEARCH_DEBOUNCE_MILLIS", "400")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("port override ignored, got %s", cfg.Port)
	}
	if cfg.PriceCacheTTLSeconds != 120 {
		t.Fatalf("ttl override ignored, got %d", cfg.PriceCacheTTLSeconds)
	}
	if cfg.SearchDebounceMillis != 400 {
		t.Fatalf("debounce override ignored, got %d", cfg.SearchDebounceMillis)
	}
}

func TestLoadRejectsGarbageNumbers(t *testing.T) {
	t.Setenv("PRICE_CACHE_TTL_SECONDS", "banana")
	cfg := Load()
	if cfg.PriceCacheTTLSeconds != 30 {
		t.Fatalf("garbage ttl must fall back to default, got %d", cfg.PriceCacheTTLSeconds)
	}
}
