// Package content is the single entry point for reading and writing blog posts.
// Reads try the hosted table once and quietly fall back to the local store;
// callers never learn which tier answered.
package content

import (
	"context"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"portfolio/app/internal/blog"
	applog "portfolio/app/internal/log"
)

// Tier names reported by Service.Tier.
const (
	TierRemote = "remote"
	TierLocal  = "local"
)

// RemoteStore is the hosted blog_posts table.
type RemoteStore interface {
	GetAll(ctx context.Context) ([]blog.Post, error)
	GetBySlug(ctx context.Context, slug string) (*blog.Post, error)
	GetFeatured(ctx context.Context) ([]blog.Post, error)
	GetByCategory(ctx context.Context, category blog.Category) ([]blog.Post, error)
	GetRecent(ctx context.Context, limit int) ([]blog.Post, error)
	Create(ctx context.Context, post blog.Post) (blog.Post, error)
	Update(ctx context.Context, id string, patch blog.PostPatch) (blog.Post, error)
	Delete(ctx context.Context, id string) error
}

// LocalStore is the always-available fallback replica.
type LocalStore interface {
	Load(ctx context.Context) []blog.Post
	GetBySlug(ctx context.Context, slug string) *blog.Post
	GetRecent(ctx context.Context, limit int) []blog.Post
	GetFeatured(ctx context.Context) []blog.Post
	GetByCategory(ctx context.Context, category blog.Category) []blog.Post
	Create(ctx context.Context, post blog.Post) (blog.Post, error)
	Update(ctx context.Context, id string, patch blog.PostPatch) (blog.Post, error)
	Delete(ctx context.Context, id string) error
}

// Service defines the blog content operations exposed to handlers and the admin editor.
type Service interface {
	LoadBlogPosts(ctx context.Context) []blog.Post
	GetBlogPostBySlug(ctx context.Context, slug string) *blog.Post
	GetRecentPosts(ctx context.Context, limit int) []blog.Post
	GetFeaturedPosts(ctx context.Context) []blog.Post
	GetPostsByCategory(ctx context.Context, category blog.Category) []blog.Post
	CreatePost(ctx context.Context, post blog.Post) (blog.Post, error)
	UpdatePost(ctx context.Context, id string, patch blog.PostPatch) (blog.Post, error)
	DeletePost(ctx context.Context, id string) error
	Tier() string
}

type service struct {
	remote    RemoteStore
	local     LocalStore
	available func() bool
	logger    *logrus.Logger
	sentryHub *sentry.Hub
}

var _ Service = (*service)(nil)

// Options wires the facade. Remote may be nil. Available is consulted on
// every call; nil means the remote tier is always used when present.
type Options struct {
	Remote    RemoteStore
	Local     LocalStore
	Available func() bool
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
}

// NewService wires the content facade with its tiers.
func NewService(opts Options) (Service, error) {
	if opts.Local == nil {
		return nil, eris.New("local store is required")
	}

	available := opts.Available
	if available == nil {
		available = func() bool { return true }
	}

	return &service{
		remote:    opts.Remote,
		local:     opts.Local,
		available: available,
		logger:    opts.Logger,
		sentryHub: opts.SentryHub,
	}, nil
}

func (s *service) useRemote() bool {
	return s.remote != nil && s.available()
}

func (s *service) Tier() string {
	if s.useRemote() {
		return TierRemote
	}
	return TierLocal
}

func (s *service) LoadBlogPosts(ctx context.Context) []blog.Post {
	if s.useRemote() {
		posts, err := s.remote.GetAll(ctx)
		if err == nil {
			return posts
		}
		s.recordFallback(ctx, logrus.Fields{"op": "loadBlogPosts"}, err)
	}
	return s.local.Load(ctx)
}

func (s *service) GetBlogPostBySlug(ctx context.Context, slug string) *blog.Post {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil
	}

	if s.useRemote() {
		post, err := s.remote.GetBySlug(ctx, trimmed)
		if err == nil {
			return post
		}
		s.recordFallback(ctx, logrus.Fields{"op": "getBlogPostBySlug", "slug": trimmed}, err)
	}
	return s.local.GetBySlug(ctx, trimmed)
}

func (s *service) GetRecentPosts(ctx context.Context, limit int) []blog.Post {
	if s.useRemote() {
		posts, err := s.remote.GetRecent(ctx, limit)
		if err == nil {
			return posts
		}
		s.recordFallback(ctx, logrus.Fields{"op": "getRecentPosts", "limit": limit}, err)
	}
	return s.local.GetRecent(ctx, limit)
}

func (s *service) GetFeaturedPosts(ctx context.Context) []blog.Post {
	if s.useRemote() {
		posts, err := s.remote.GetFeatured(ctx)
		if err == nil {
			return posts
		}
		s.recordFallback(ctx, logrus.Fields{"op": "getFeaturedPosts"}, err)
	}
	return s.local.GetFeatured(ctx)
}

func (s *service) GetPostsByCategory(ctx context.Context, category blog.Category) []blog.Post {
	if s.useRemote() {
		posts, err := s.remote.GetByCategory(ctx, category)
		if err == nil {
			return posts
		}
		s.recordFallback(ctx, logrus.Fields{"op": "getPostsByCategory", "category": string(category)}, err)
	}
	return s.local.GetByCategory(ctx, category)
}

func (s *service) CreatePost(ctx context.Context, post blog.Post) (blog.Post, error) {
	if s.useRemote() {
		created, err := s.remote.Create(ctx, post)
		if err != nil {
			return blog.Post{}, eris.Wrapf(err, "creating post %s", post.Slug)
		}
		return created, nil
	}

	created, err := s.local.Create(ctx, post)
	if err != nil {
		return blog.Post{}, eris.Wrapf(err, "creating local post %s", post.Slug)
	}
	return created, nil
}

func (s *service) UpdatePost(ctx context.Context, id string, patch blog.PostPatch) (blog.Post, error) {
	if strings.TrimSpace(id) == "" {
		return blog.Post{}, eris.New("post id is required")
	}

	if s.useRemote() {
		updated, err := s.remote.Update(ctx, id, patch)
		if err != nil {
			return blog.Post{}, eris.Wrapf(err, "updating post %s", id)
		}
		return updated, nil
	}

	updated, err := s.local.Update(ctx, id, patch)
	if err != nil {
		return blog.Post{}, eris.Wrapf(err, "updating local post %s", id)
	}
	return updated, nil
}

func (s *service) DeletePost(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return eris.New("post id is required")
	}

	if s.useRemote() {
		if err := s.remote.Delete(ctx, id); err != nil {
			return eris.Wrapf(err, "deleting post %s", id)
		}
		return nil
	}

	if err := s.local.Delete(ctx, id); err != nil {
		return eris.Wrapf(err, "deleting local post %s", id)
	}
	return nil
}

func (s *service) recordFallback(ctx context.Context, fields logrus.Fields, err error) {
	if s.logger != nil {
		s.logger.WithContext(ctx).
			WithFields(fields).
			WithFields(logrus.Fields{"component": "content", "error": err.Error()}).
			Warn("remote tier failed, serving local posts")
	}

	applog.Capture(ctx, s.sentryHub, err)
}
