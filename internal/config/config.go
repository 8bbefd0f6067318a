package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the portfolio server.
type Config struct {
	DBPath            string
	FallbackStorePath string
	ServerPort        int
	LogLevel          string
	SentryDSN         string
	Environment       string
	ShutdownGrace     time.Duration

	Supabase  SupabaseConfig
	Admin     AdminConfig
	Mail      MailConfig
	Site      SiteConfig
	RateLimit RateLimitConfig
}

// SupabaseConfig carries the hosted database settings. The remote tier is
// only used when both URL and AnonKey are present.
type SupabaseConfig struct {
	URL          string
	AnonKey      string
	DBURL        string
	DBPassword   string
	MaxOpenConns int
}

// AdminConfig enables the authenticated admin surface when both values are set.
type AdminConfig struct {
	PasswordHash  string
	SessionSecret string
	CookieSecure  bool
}

// Enabled reports whether admin authentication is configured.
func (a AdminConfig) Enabled() bool {
	return a.PasswordHash != "" && a.SessionSecret != ""
}

// MailConfig holds the outbound email relay settings for the contact form.
type MailConfig struct {
	ResendAPIKey string
	To           string
	From         string
}

// SiteConfig describes the public site for feeds, sitemaps and page titles.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// RateLimitConfig configures the per-client HTTP rate limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

const (
	defaultDBPath            = "./data/portfolio.db"
	defaultFallbackStorePath = "./data/fallback"
	defaultServerPort        = 8080
	defaultLogLevel          = "info"
	defaultEnvironment       = "development"
	defaultShutdownGrace     = 10 * time.Second
	defaultSiteName          = "Portfolio"
	defaultSiteURL           = "http://localhost:8080"
	defaultSiteDescription   = "Notes on frontend engineering, tooling and the craft of building for the web."
	defaultSiteAuthor        = "Portfolio Author"
	defaultMailFrom          = "Portfolio <onboarding@resend.dev>"
	defaultRateLimitRPS      = 5
	defaultRateLimitBurst    = 20
	defaultRateLimitTTL      = 10 * time.Minute
)

// Environment variables consulted by RemoteAvailable.
const (
	SupabaseURLEnv     = "SUPABASE_URL"
	SupabaseAnonKeyEnv = "SUPABASE_ANON_KEY"
)

// Load reads configuration values from environment variables, applying defaults where necessary.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:            getEnv("DB_PATH", defaultDBPath),
		FallbackStorePath: getEnv("FALLBACK_STORE_PATH", defaultFallbackStorePath),
		LogLevel:          getEnv("LOG_LEVEL", defaultLogLevel),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		Environment:       getEnv("ENV", defaultEnvironment),
		ShutdownGrace:     defaultShutdownGrace,
		Supabase: SupabaseConfig{
			URL:        strings.TrimSpace(os.Getenv(SupabaseURLEnv)),
			AnonKey:    strings.TrimSpace(os.Getenv(SupabaseAnonKeyEnv)),
			DBURL:      os.Getenv("SUPABASE_DB_URL"),
			DBPassword: os.Getenv("SUPABASE_DB_PASSWORD"),
		},
		Admin: AdminConfig{
			PasswordHash:  os.Getenv("ADMIN_PASSWORD_HASH"),
			SessionSecret: os.Getenv("SESSION_SECRET"),
		},
		Mail: MailConfig{
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
			To:           os.Getenv("CONTACT_EMAIL_TO"),
			From:         getEnv("CONTACT_EMAIL_FROM", defaultMailFrom),
		},
		Site: SiteConfig{
			Name:        getEnv("SITE_NAME", defaultSiteName),
			URL:         strings.TrimRight(getEnv("SITE_URL", defaultSiteURL), "/"),
			Description: getEnv("SITE_DESCRIPTION", defaultSiteDescription),
			Author:      getEnv("SITE_AUTHOR", defaultSiteAuthor),
		},
	}

	portValue := getEnv("SERVER_PORT", strconv.Itoa(defaultServerPort))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid SERVER_PORT value: %s", portValue)
	}
	cfg.ServerPort = port

	secure, err := parseBool("COOKIE_SECURE", false)
	if err != nil {
		return nil, err
	}
	cfg.Admin.CookieSecure = secure

	maxConns, err := parseInt("SUPABASE_DB_MAX_CONNS", 0)
	if err != nil {
		return nil, err
	}
	cfg.Supabase.MaxOpenConns = maxConns

	rateLimit, err := loadRateLimit()
	if err != nil {
		return nil, err
	}
	cfg.RateLimit = rateLimit

	return cfg, nil
}

// RemoteAvailable reports whether the hosted database credentials are present
// in the environment right now. It is evaluated on every call.
func RemoteAvailable() bool {
	return strings.TrimSpace(os.Getenv(SupabaseURLEnv)) != "" &&
		strings.TrimSpace(os.Getenv(SupabaseAnonKeyEnv)) != ""
}

func loadRateLimit() (RateLimitConfig, error) {
	rpsValue := getEnv("RATE_LIMIT_RPS", strconv.Itoa(defaultRateLimitRPS))
	rps, err := strconv.ParseFloat(rpsValue, 64)
	if err != nil {
		return RateLimitConfig{}, eris.Wrapf(err, "invalid RATE_LIMIT_RPS value: %s", rpsValue)
	}

	burst, err := parseInt("RATE_LIMIT_BURST", defaultRateLimitBurst)
	if err != nil {
		return RateLimitConfig{}, err
	}

	ttlValue := getEnv("RATE_LIMIT_CLIENT_TTL", defaultRateLimitTTL.String())
	ttl, err := time.ParseDuration(ttlValue)
	if err != nil {
		return RateLimitConfig{}, eris.Wrapf(err, "invalid RATE_LIMIT_CLIENT_TTL value: %s", ttlValue)
	}

	return RateLimitConfig{
		RequestsPerSecond: rps,
		Burst:             burst,
		ClientTTL:         ttl,
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	return value, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	return value, nil
}
