// Package supabase connects to the hosted backend: the REST SDK used for the
// blog_posts table and, when credentials allow it, a direct Postgres pool.
package supabase

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	supa "github.com/supabase-community/supabase-go"
)

// Config holds what is needed to reach the hosted backend.
type Config struct {
	// URL is the project URL, e.g. https://<ref>.supabase.co.
	URL string
	// AnonKey is the public API key used for REST calls.
	AnonKey string
	// DBURL is an optional Postgres connection string.
	DBURL string
	// DBPassword builds a connection string from URL when DBURL is empty.
	DBPassword string

	MaxOpenConns int
	MaxIdleConns int
	ConnMaxLife  time.Duration
}

// Client bundles the REST SDK and the optional direct database handle.
type Client struct {
	cfg    Config
	sdk    *supa.Client
	db     *sql.DB
	logger *logrus.Logger
}

// New constructs an unconnected client.
func New(cfg Config, logger *logrus.Logger) *Client {
	return &Client{cfg: cfg, logger: logger}
}

// Connect initializes the SDK and tries to open the direct database. A failing
// direct connection is logged and the client continues in REST-only mode.
func (c *Client) Connect(ctx context.Context) error {
	if strings.TrimSpace(c.cfg.URL) == "" || strings.TrimSpace(c.cfg.AnonKey) == "" {
		return eris.New("supabase URL and anon key are required")
	}

	sdk, err := supa.NewClient(c.cfg.URL, c.cfg.AnonKey, nil)
	if err != nil {
		return eris.Wrap(err, "initialize supabase SDK")
	}
	c.sdk = sdk

	connStr := c.cfg.DBURL
	if connStr == "" && c.cfg.DBPassword != "" {
		connStr, err = buildConnectionString(c.cfg.URL, c.cfg.DBPassword)
		if err != nil {
			c.warn(err, "cannot build postgres connection string, using REST only")
			return nil
		}
	}
	if connStr == "" {
		return nil
	}

	connStr = addConnectionParam(connStr, "statement_cache_capacity", "0")
	connStr = addConnectionParam(connStr, "default_query_exec_mode", "simple_protocol")

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		c.warn(err, "opening supabase postgres failed, using REST only")
		return nil
	}
	if c.cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.cfg.MaxOpenConns)
	}
	if c.cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.cfg.MaxIdleConns)
	}
	if c.cfg.ConnMaxLife > 0 {
		db.SetConnMaxLifetime(c.cfg.ConnMaxLife)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		c.warn(err, "pinging supabase postgres failed, using REST only")
		return nil
	}

	c.db = db
	return nil
}

// Close releases the direct database connection if one is open.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	if err := c.db.Close(); err != nil {
		return eris.Wrap(err, "closing supabase postgres")
	}
	return nil
}

// SDK returns the REST client, or nil before Connect succeeds.
func (c *Client) SDK() *supa.Client {
	if c == nil {
		return nil
	}
	return c.sdk
}

// DB returns the direct database handle. It is nil in REST-only mode.
func (c *Client) DB() *sql.DB {
	if c == nil {
		return nil
	}
	return c.db
}

// HasDirectDB reports whether a direct Postgres connection is available.
func (c *Client) HasDirectDB() bool {
	return c != nil && c.db != nil
}

func (c *Client) warn(err error, message string) {
	if c.logger == nil {
		return
	}
	c.logger.WithFields(logrus.Fields{
		"component": "supabase",
		"error":     err.Error(),
	}).Warn(message)
}

func buildConnectionString(projectURL, password string) (string, error) {
	parsed, err := url.Parse(projectURL)
	if err != nil {
		return "", eris.Wrap(err, "parse supabase URL")
	}

	parts := strings.Split(parsed.Host, ".")
	if len(parts) < 2 || parts[0] == "" {
		return "", eris.Errorf("invalid supabase URL %q: expected <project-ref>.supabase.co", projectURL)
	}

	return fmt.Sprintf(
		"postgresql://postgres:%s@db.%s.supabase.co:5432/postgres?sslmode=require",
		url.QueryEscape(password),
		parts[0],
	), nil
}

func addConnectionParam(connStr, key, value string) string {
	if strings.Contains(connStr, key+"=") {
		return connStr
	}
	separator := "?"
	if strings.Contains(connStr, "?") {
		separator = "&"
	}
	return connStr + separator + key + "=" + value
}
