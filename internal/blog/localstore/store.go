// Package localstore keeps a self-contained replica of the blog posts in an
// embedded badger database so the site works with no hosted backend at all.
// The whole collection lives as one JSON array under StorageKey.
package localstore

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"portfolio/app/internal/blog"
)

// StorageKey is the fixed key holding the serialized post collection.
const StorageKey = "portfolio_blog_posts"

// ErrDuplicateSlug is returned when a write would give two posts the same slug.
var ErrDuplicateSlug = eris.New("a post with this slug already exists")

// Options controls how the fallback store is opened.
type Options struct {
	Path     string
	InMemory bool
	Logger   *logrus.Logger
	// Defaults overrides the built-in seed content. Nil means DefaultPosts().
	Defaults []blog.Post
}

// Store is the badger-backed fallback store.
type Store struct {
	db       *badger.DB
	mu       sync.Mutex
	logger   *logrus.Logger
	defaults []blog.Post
	now      func() time.Time
}

// Open opens (or creates) the fallback store.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && strings.TrimSpace(opts.Path) == "" {
		return nil, eris.New("fallback store path is required")
	}

	badgerOpts := badger.DefaultOptions(opts.Path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, eris.Wrap(err, "opening fallback store")
	}

	defaults := opts.Defaults
	if defaults == nil {
		defaults = DefaultPosts()
	}

	return &Store{
		db:       db,
		logger:   opts.Logger,
		defaults: clonePosts(defaults),
		now:      time.Now,
	}, nil
}

// Close releases the badger database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return eris.Wrap(err, "closing fallback store")
	}
	return nil
}

// Load returns the full collection. When nothing is stored yet it seeds the
// store with the default posts first. It never fails: read or decode errors
// are logged and the defaults are returned.
func (s *Store) Load(ctx context.Context) []blog.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked(ctx)
}

// GetBySlug returns the post with slug, or nil when there is none.
func (s *Store) GetBySlug(ctx context.Context, slug string) *blog.Post {
	post, ok := blog.FindBySlug(s.Load(ctx), slug)
	if !ok {
		return nil
	}
	return &post
}

// GetRecent returns at most limit posts ordered by published date, newest first.
func (s *Store) GetRecent(ctx context.Context, limit int) []blog.Post {
	return blog.Recent(s.Load(ctx), limit)
}

// GetFeatured returns the featured posts, newest first.
func (s *Store) GetFeatured(ctx context.Context) []blog.Post {
	return blog.Featured(s.Load(ctx))
}

// GetByCategory returns the posts in category, newest first.
func (s *Store) GetByCategory(ctx context.Context, category blog.Category) []blog.Post {
	return blog.InCategory(s.Load(ctx), category)
}

// Save replaces the stored collection with posts.
func (s *Store) Save(ctx context.Context, posts []blog.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeLocked(ctx, posts)
}

// Create appends post, assigning an ID when it has none.
func (s *Store) Create(ctx context.Context, post blog.Post) (blog.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.loadForWriteLocked(ctx)
	if err != nil {
		return blog.Post{}, eris.Wrap(err, "creating post")
	}

	if strings.TrimSpace(post.ID) == "" {
		post.ID = uuid.NewString()
	}
	for _, existing := range posts {
		if existing.ID == post.ID {
			return blog.Post{}, eris.Errorf("post with id %s already exists", post.ID)
		}
		if existing.Slug == post.Slug {
			return blog.Post{}, eris.Wrapf(ErrDuplicateSlug, "creating post %s", post.Slug)
		}
	}

	now := s.now().UTC()
	if post.PublishedAt.IsZero() {
		post.PublishedAt = now
	}
	post.UpdatedAt = now

	created := post.Clone()
	if err := s.writeLocked(ctx, append(posts, created)); err != nil {
		return blog.Post{}, err
	}
	return created.Clone(), nil
}

// Update applies patch to the post with id.
func (s *Store) Update(ctx context.Context, id string, patch blog.PostPatch) (blog.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.loadForWriteLocked(ctx)
	if err != nil {
		return blog.Post{}, eris.Wrapf(err, "updating post %s", id)
	}
	idx := indexByID(posts, id)
	if idx < 0 {
		return blog.Post{}, eris.Wrapf(blog.ErrNotFound, "updating post %s", id)
	}

	updated := posts[idx].Clone()
	patch.Apply(&updated)
	for i, existing := range posts {
		if i != idx && existing.Slug == updated.Slug {
			return blog.Post{}, eris.Wrapf(ErrDuplicateSlug, "updating post %s", id)
		}
	}
	updated.UpdatedAt = s.now().UTC()
	posts[idx] = updated

	if err := s.writeLocked(ctx, posts); err != nil {
		return blog.Post{}, err
	}
	return updated.Clone(), nil
}

// Delete removes the post with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.loadForWriteLocked(ctx)
	if err != nil {
		return eris.Wrapf(err, "deleting post %s", id)
	}
	idx := indexByID(posts, id)
	if idx < 0 {
		return eris.Wrapf(blog.ErrNotFound, "deleting post %s", id)
	}

	remaining := append(posts[:idx:idx], posts[idx+1:]...)
	return s.writeLocked(ctx, remaining)
}

func (s *Store) loadLocked(ctx context.Context) []blog.Post {
	posts, found, err := s.read()
	if err != nil {
		s.logError(ctx, err, "reading fallback posts, serving defaults")
		return clonePosts(s.defaults)
	}
	if found {
		return posts
	}

	if err := s.writeLocked(ctx, s.defaults); err != nil {
		s.logError(ctx, err, "seeding fallback store")
	} else {
		s.logInfo(ctx, len(s.defaults), "seeded fallback store with default posts")
	}
	return clonePosts(s.defaults)
}

// loadForWriteLocked refuses to build on an unreadable value so a write never
// replaces it with the defaults.
func (s *Store) loadForWriteLocked(ctx context.Context) ([]blog.Post, error) {
	posts, found, err := s.read()
	if err != nil {
		s.logError(ctx, err, "refusing to write over unreadable fallback posts")
		return nil, err
	}
	if found {
		return posts, nil
	}
	return s.loadLocked(ctx), nil
}

func (s *Store) read() ([]blog.Post, bool, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(StorageKey))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if eris.Is(err, badger.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "reading fallback posts")
	}

	var posts []blog.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, false, eris.Wrap(err, "decoding fallback posts")
	}
	if posts == nil {
		posts = []blog.Post{}
	}
	return posts, true, nil
}

func (s *Store) writeLocked(ctx context.Context, posts []blog.Post) error {
	if posts == nil {
		posts = []blog.Post{}
	}

	data, err := json.Marshal(posts)
	if err != nil {
		wrapped := eris.Wrap(err, "encoding fallback posts")
		s.logError(ctx, wrapped, "serializing fallback posts")
		return wrapped
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(StorageKey), data)
	}); err != nil {
		wrapped := eris.Wrap(err, "writing fallback posts")
		s.logError(ctx, wrapped, "persisting fallback posts")
		return wrapped
	}
	return nil
}

func (s *Store) logError(ctx context.Context, err error, message string) {
	if s.logger == nil || err == nil {
		return
	}
	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"component": "localstore",
		"error":     err.Error(),
	}).Error(message)
}

func (s *Store) logInfo(ctx context.Context, count int, message string) {
	if s.logger == nil {
		return
	}
	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"component": "localstore",
		"posts":     count,
	}).Info(message)
}

func indexByID(posts []blog.Post, id string) int {
	trimmed := strings.TrimSpace(id)
	for i, post := range posts {
		if post.ID == trimmed {
			return i
		}
	}
	return -1
}

func clonePosts(posts []blog.Post) []blog.Post {
	out := make([]blog.Post, len(posts))
	for i, post := range posts {
		out[i] = post.Clone()
	}
	return out
}
