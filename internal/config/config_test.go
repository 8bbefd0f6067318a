package config

import (
	"strings"
	"testing"
	"time"
)

var managedKeys = []string{
	"DB_PATH", "FALLBACK_STORE_PATH", "SERVER_PORT", "LOG_LEVEL", "SENTRY_DSN", "ENV",
	"SUPABASE_URL", "SUPABASE_ANON_KEY", "SUPABASE_DB_URL", "SUPABASE_DB_PASSWORD", "SUPABASE_DB_MAX_CONNS",
	"ADMIN_PASSWORD_HASH", "SESSION_SECRET", "COOKIE_SECURE",
	"RESEND_API_KEY", "CONTACT_EMAIL_TO", "CONTACT_EMAIL_FROM",
	"SITE_NAME", "SITE_URL", "SITE_DESCRIPTION", "SITE_AUTHOR",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_CLIENT_TTL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DBPath != defaultDBPath {
		t.Errorf("expected default DB path %q, got %q", defaultDBPath, cfg.DBPath)
	}

	if cfg.FallbackStorePath != defaultFallbackStorePath {
		t.Errorf("expected default fallback path %q, got %q", defaultFallbackStorePath, cfg.FallbackStorePath)
	}

	if cfg.ServerPort != defaultServerPort {
		t.Errorf("expected default server port %d, got %d", defaultServerPort, cfg.ServerPort)
	}

	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("expected default log level %q, got %q", defaultLogLevel, cfg.LogLevel)
	}

	if cfg.Environment != defaultEnvironment {
		t.Errorf("expected default environment %q, got %q", defaultEnvironment, cfg.Environment)
	}

	if cfg.ShutdownGrace != defaultShutdownGrace {
		t.Errorf("expected shutdown grace %s, got %s", defaultShutdownGrace, cfg.ShutdownGrace)
	}

	if cfg.Admin.Enabled() {
		t.Errorf("expected admin to be disabled without credentials")
	}

	if cfg.Site.URL != defaultSiteURL {
		t.Errorf("expected site URL %q, got %q", defaultSiteURL, cfg.Site.URL)
	}

	if cfg.RateLimit.Burst != defaultRateLimitBurst || cfg.RateLimit.RequestsPerSecond != defaultRateLimitRPS {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}

	if cfg.RateLimit.ClientTTL != defaultRateLimitTTL {
		t.Errorf("expected client TTL %s, got %s", defaultRateLimitTTL, cfg.RateLimit.ClientTTL)
	}

	if cfg.SentryDSN != "" {
		t.Errorf("expected empty Sentry DSN, got %q", cfg.SentryDSN)
	}
}

func TestLoadWithExplicitValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "/tmp/portfolio.db")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SENTRY_DSN", "dsn")
	t.Setenv("ENV", "production")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$hash")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("SITE_URL", "https://example.com/")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "7")
	t.Setenv("RATE_LIMIT_CLIENT_TTL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DBPath != "/tmp/portfolio.db" {
		t.Errorf("expected DB path %q, got %q", "/tmp/portfolio.db", cfg.DBPath)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("expected server port 9090, got %d", cfg.ServerPort)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.LogLevel)
	}

	if cfg.Environment != "production" {
		t.Errorf("expected environment production, got %q", cfg.Environment)
	}

	if cfg.Supabase.URL != "https://project.supabase.co" || cfg.Supabase.AnonKey != "anon" {
		t.Errorf("unexpected supabase config: %+v", cfg.Supabase)
	}

	if !cfg.Admin.Enabled() {
		t.Errorf("expected admin to be enabled")
	}

	if !cfg.Admin.CookieSecure {
		t.Errorf("expected secure cookies")
	}

	if cfg.Site.URL != "https://example.com" {
		t.Errorf("expected trailing slash to be trimmed, got %q", cfg.Site.URL)
	}

	if cfg.RateLimit.RequestsPerSecond != 2.5 || cfg.RateLimit.Burst != 7 || cfg.RateLimit.ClientTTL != 30*time.Second {
		t.Errorf("unexpected rate limit config: %+v", cfg.RateLimit)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "invalid")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid port, got nil")
	}

	if !strings.Contains(err.Error(), "invalid SERVER_PORT value") {
		t.Fatalf("expected error to mention invalid SERVER_PORT value, got %v", err)
	}
}

func TestLoadInvalidCookieSecure(t *testing.T) {
	clearEnv(t)
	t.Setenv("COOKIE_SECURE", "sometimes")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid COOKIE_SECURE, got nil")
	}

	if !strings.Contains(err.Error(), "invalid COOKIE_SECURE value") {
		t.Fatalf("expected error to mention COOKIE_SECURE, got %v", err)
	}
}

func TestLoadInvalidRateLimitTTL(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_CLIENT_TTL", "soon")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid TTL, got nil")
	}

	if !strings.Contains(err.Error(), "RATE_LIMIT_CLIENT_TTL") {
		t.Fatalf("expected error to mention RATE_LIMIT_CLIENT_TTL, got %v", err)
	}
}

func TestRemoteAvailableIsEvaluatedPerCall(t *testing.T) {
	clearEnv(t)

	if RemoteAvailable() {
		t.Fatalf("expected remote to be unavailable without credentials")
	}

	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	if RemoteAvailable() {
		t.Fatalf("expected remote to be unavailable with only a URL")
	}

	t.Setenv("SUPABASE_ANON_KEY", "anon")
	if !RemoteAvailable() {
		t.Fatalf("expected remote to be available once both values are set")
	}

	t.Setenv("SUPABASE_URL", "  ")
	if RemoteAvailable() {
		t.Fatalf("expected blank URL to disable the remote tier")
	}
}
