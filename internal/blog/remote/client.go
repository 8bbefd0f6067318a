// Package remote reads and writes blog posts in the hosted blog_posts table
// through the PostgREST API.
package remote

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"portfolio/app/internal/blog"
)

const (
	// TableName is the hosted table holding the posts.
	TableName = "blog_posts"

	adminContextRPC = "set_admin_context"
	restPath        = "/rest/v1"
	schema          = "public"
)

// ErrAdminContext is returned when the backend refuses to mark the session as admin.
var ErrAdminContext = eris.New("admin context was not granted")

// Options configures a Client.
type Options struct {
	SDK *supa.Client
	// URL and Key reach the RPC endpoint. Each RPC gets its own PostgREST
	// client because a failed RPC poisons the client that issued it.
	URL    string
	Key    string
	Logger *logrus.Logger
}

// Client is the typed query module for the blog_posts table.
type Client struct {
	sdk    *supa.Client
	url    string
	key    string
	logger *logrus.Logger
	now    func() time.Time
}

// New constructs a Client.
func New(opts Options) (*Client, error) {
	if opts.SDK == nil {
		return nil, eris.New("supabase SDK client is required")
	}
	if strings.TrimSpace(opts.URL) == "" || strings.TrimSpace(opts.Key) == "" {
		return nil, eris.New("supabase URL and key are required")
	}

	return &Client{
		sdk:    opts.SDK,
		url:    strings.TrimRight(opts.URL, "/"),
		key:    opts.Key,
		logger: opts.Logger,
		now:    time.Now,
	}, nil
}

// GetAll returns every post, newest first.
func (c *Client) GetAll(ctx context.Context) ([]blog.Post, error) {
	const op = "getAll"
	if err := ctx.Err(); err != nil {
		return nil, c.fail(op, err)
	}

	var rows []postRow
	_, err := c.selectPosts().
		Order("published_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, c.fail(op, err)
	}
	return toPosts(rows), nil
}

// GetBySlug returns the post with slug. A missing row yields (nil, nil).
func (c *Client) GetBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	const op = "getBySlug"
	if err := ctx.Err(); err != nil {
		return nil, c.fail(op, err)
	}

	var rows []postRow
	_, err := c.selectPosts().
		Eq("slug", strings.TrimSpace(slug)).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, c.fail(op, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	post := rows[0].toPost()
	return &post, nil
}

// GetFeatured returns the featured posts, newest first.
func (c *Client) GetFeatured(ctx context.Context) ([]blog.Post, error) {
	const op = "getFeatured"
	if err := ctx.Err(); err != nil {
		return nil, c.fail(op, err)
	}

	var rows []postRow
	_, err := c.selectPosts().
		Eq("featured", "true").
		Order("published_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, c.fail(op, err)
	}
	return toPosts(rows), nil
}

// GetByCategory returns the posts in category, newest first.
func (c *Client) GetByCategory(ctx context.Context, category blog.Category) ([]blog.Post, error) {
	const op = "getByCategory"
	if err := ctx.Err(); err != nil {
		return nil, c.fail(op, err)
	}

	var rows []postRow
	_, err := c.selectPosts().
		Eq("category", string(category)).
		Order("published_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, c.fail(op, err)
	}
	return toPosts(rows), nil
}

// GetRecent returns at most limit posts, newest first.
func (c *Client) GetRecent(ctx context.Context, limit int) ([]blog.Post, error) {
	const op = "getRecent"
	if err := ctx.Err(); err != nil {
		return nil, c.fail(op, err)
	}
	if limit <= 0 {
		return []blog.Post{}, nil
	}

	var rows []postRow
	_, err := c.selectPosts().
		Order("published_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, c.fail(op, err)
	}
	return toPosts(rows), nil
}

// Create inserts post and returns the stored row.
func (c *Client) Create(ctx context.Context, post blog.Post) (blog.Post, error) {
	const op = "create"
	if err := c.assertAdmin(ctx); err != nil {
		return blog.Post{}, c.fail(op, err)
	}

	now := c.now().UTC()
	if post.PublishedAt.IsZero() {
		post.PublishedAt = now
	}
	post.UpdatedAt = now

	var rows []postRow
	_, err := c.sdk.From(TableName).
		Insert(fromPost(post), false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return blog.Post{}, c.fail(op, err)
	}
	if len(rows) == 0 {
		return blog.Post{}, c.fail(op, eris.New("insert returned no rows"))
	}

	c.logInfo(op, rows[0].Slug)
	return rows[0].toPost(), nil
}

// Update applies patch to the row with id and returns the stored row.
func (c *Client) Update(ctx context.Context, id string, patch blog.PostPatch) (blog.Post, error) {
	const op = "update"
	if err := c.assertAdmin(ctx); err != nil {
		return blog.Post{}, c.fail(op, err)
	}

	var rows []postRow
	_, err := c.sdk.From(TableName).
		Update(patchColumns(patch, c.now()), "representation", "").
		Eq("id", strings.TrimSpace(id)).
		ExecuteTo(&rows)
	if err != nil {
		return blog.Post{}, c.fail(op, err)
	}
	if len(rows) == 0 {
		return blog.Post{}, c.fail(op, eris.Wrapf(blog.ErrNotFound, "post %s", id))
	}

	c.logInfo(op, rows[0].Slug)
	return rows[0].toPost(), nil
}

// Delete removes the row with id.
func (c *Client) Delete(ctx context.Context, id string) error {
	const op = "delete"
	if err := c.assertAdmin(ctx); err != nil {
		return c.fail(op, err)
	}

	_, _, err := c.sdk.From(TableName).
		Delete("minimal", "").
		Eq("id", strings.TrimSpace(id)).
		Execute()
	if err != nil {
		return c.fail(op, err)
	}

	c.logInfo(op, id)
	return nil
}

func (c *Client) selectPosts() *postgrest.FilterBuilder {
	return c.sdk.From(TableName).Select("*", "", false)
}

// assertAdmin sets the access marker consumed by the table's row-level
// security policies. The RPC answers true when the marker was set.
func (c *Client) assertAdmin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rpc := postgrest.NewClient(c.url+restPath, schema, map[string]string{
		"apikey":        c.key,
		"Authorization": "Bearer " + c.key,
	})
	// Rpc builds its request without a context.
	rpc.Transport.Parent = contextTransport{ctx: ctx, next: http.DefaultTransport}
	result := rpc.Rpc(adminContextRPC, "", map[string]bool{"is_admin": true})
	if rpc.ClientError != nil {
		return eris.Wrap(rpc.ClientError, "calling "+adminContextRPC)
	}
	if strings.TrimSpace(result) != "true" {
		return eris.Wrapf(ErrAdminContext, "%s answered %q", adminContextRPC, truncate(result, 120))
	}
	return nil
}

type contextTransport struct {
	ctx  context.Context
	next http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.next.RoundTrip(req.WithContext(t.ctx))
}

func (c *Client) fail(op string, err error) error {
	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"component": "remote",
			"op":        op,
			"error":     err.Error(),
		}).Warn("blog_posts request failed")
	}
	return &BlogPostError{Op: op, Err: err}
}

func (c *Client) logInfo(op, subject string) {
	if c.logger == nil {
		return
	}
	c.logger.WithFields(logrus.Fields{
		"component": "remote",
		"op":        op,
		"subject":   subject,
	}).Info("blog_posts write succeeded")
}

func truncate(value string, max int) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max]) + "…"
}
