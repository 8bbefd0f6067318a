package content

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/app/internal/blog"
	"portfolio/app/internal/blog/localstore"
	applog "portfolio/app/internal/log"
)

type stubRemote struct {
	mu       sync.Mutex
	posts    []blog.Post
	err      error
	writeErr error
	calls    map[string]int
}

func newStubRemote(posts ...blog.Post) *stubRemote {
	return &stubRemote{posts: posts, calls: map[string]int{}}
}

func (s *stubRemote) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
}

func (s *stubRemote) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *stubRemote) GetAll(context.Context) ([]blog.Post, error) {
	s.record("getAll")
	if s.err != nil {
		return nil, s.err
	}
	return s.posts, nil
}

func (s *stubRemote) GetBySlug(_ context.Context, slug string) (*blog.Post, error) {
	s.record("getBySlug")
	if s.err != nil {
		return nil, s.err
	}
	post, ok := blog.FindBySlug(s.posts, slug)
	if !ok {
		return nil, nil
	}
	return &post, nil
}

func (s *stubRemote) GetFeatured(context.Context) ([]blog.Post, error) {
	s.record("getFeatured")
	if s.err != nil {
		return nil, s.err
	}
	return blog.Featured(s.posts), nil
}

func (s *stubRemote) GetByCategory(_ context.Context, category blog.Category) ([]blog.Post, error) {
	s.record("getByCategory")
	if s.err != nil {
		return nil, s.err
	}
	return blog.InCategory(s.posts, category), nil
}

func (s *stubRemote) GetRecent(_ context.Context, limit int) ([]blog.Post, error) {
	s.record("getRecent")
	if s.err != nil {
		return nil, s.err
	}
	return blog.Recent(s.posts, limit), nil
}

func (s *stubRemote) Create(_ context.Context, post blog.Post) (blog.Post, error) {
	s.record("create")
	if s.writeErr != nil {
		return blog.Post{}, s.writeErr
	}
	post.ID = "remote-id"
	return post, nil
}

func (s *stubRemote) Update(_ context.Context, id string, patch blog.PostPatch) (blog.Post, error) {
	s.record("update")
	if s.writeErr != nil {
		return blog.Post{}, s.writeErr
	}
	post := blog.Post{ID: id}
	patch.Apply(&post)
	return post, nil
}

func (s *stubRemote) Delete(context.Context, string) error {
	s.record("delete")
	return s.writeErr
}

func newLocal(t *testing.T) *localstore.Store {
	t.Helper()

	store, err := localstore.Open(localstore.Options{InMemory: true, Logger: applog.Discard()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newService(t *testing.T, remote RemoteStore, local LocalStore, available bool) Service {
	t.Helper()

	svc, err := NewService(Options{
		Remote:    remote,
		Local:     local,
		Available: func() bool { return available },
		Logger:    applog.Discard(),
	})
	require.NoError(t, err)
	return svc
}

func remotePost(slug string) blog.Post {
	return blog.Post{
		ID:          "r-" + slug,
		Title:       "Remote " + slug,
		Slug:        slug,
		Content:     "remote",
		Author:      "Jane",
		PublishedAt: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		Category:    blog.CategoryTutorials,
		ReadTime:    1,
		Featured:    true,
	}
}

func TestNewServiceRequiresLocalStore(t *testing.T) {
	t.Parallel()

	_, err := NewService(Options{})
	require.Error(t, err)
}

func TestLoadBlogPostsPrefersRemote(t *testing.T) {
	t.Parallel()

	remote := newStubRemote(remotePost("from-remote"))
	svc := newService(t, remote, newLocal(t), true)

	posts := svc.LoadBlogPosts(context.Background())
	require.Len(t, posts, 1)
	assert.Equal(t, "from-remote", posts[0].Slug)
	assert.Equal(t, TierRemote, svc.Tier())
}

func TestLoadBlogPostsFallsBackWhenRemoteFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	remote := newStubRemote()
	remote.err = eris.New("connection refused")
	local := newLocal(t)
	svc := newService(t, remote, local, true)

	assert.Equal(t, localstore.DefaultPosts(), svc.LoadBlogPosts(ctx))
	assert.Equal(t, 1, remote.count("getAll"))

	assert.Len(t, svc.GetRecentPosts(ctx, 2), 2)
	assert.NotEmpty(t, svc.GetFeaturedPosts(ctx))
	assert.Len(t, svc.GetPostsByCategory(ctx, blog.CategoryCareer), 1)

	slug := localstore.DefaultPosts()[0].Slug
	post := svc.GetBlogPostBySlug(ctx, slug)
	require.NotNil(t, post)
	assert.Equal(t, slug, post.Slug)
	assert.Equal(t, 1, remote.count("getBySlug"))
}

func TestRemoteNotFoundIsAuthoritative(t *testing.T) {
	t.Parallel()

	remote := newStubRemote(remotePost("only-remote"))
	svc := newService(t, remote, newLocal(t), true)

	assert.Nil(t, svc.GetBlogPostBySlug(context.Background(), localstore.DefaultPosts()[0].Slug))
	assert.Nil(t, svc.GetBlogPostBySlug(context.Background(), "  "))
}

func TestUnavailableRemoteIsNeverCalled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	remote := newStubRemote(remotePost("from-remote"))
	svc := newService(t, remote, newLocal(t), false)

	assert.Equal(t, TierLocal, svc.Tier())
	assert.Len(t, svc.LoadBlogPosts(ctx), len(localstore.DefaultPosts()))
	assert.Zero(t, remote.count("getAll"))

	created, err := svc.CreatePost(ctx, remotePost("local-write"))
	require.NoError(t, err)
	assert.Equal(t, "r-local-write", created.ID)
	assert.Zero(t, remote.count("create"))
	assert.NotNil(t, svc.GetBlogPostBySlug(ctx, "local-write"))
}

func TestNilRemoteUsesLocal(t *testing.T) {
	t.Parallel()

	svc := newService(t, nil, newLocal(t), true)
	assert.Equal(t, TierLocal, svc.Tier())
	assert.NotEmpty(t, svc.LoadBlogPosts(context.Background()))
}

func TestAvailabilityIsEvaluatedPerCall(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	available := false
	svc, err := NewService(Options{
		Remote: newStubRemote(remotePost("from-remote")),
		Local:  newLocal(t),
		Available: func() bool {
			mu.Lock()
			defer mu.Unlock()
			return available
		},
	})
	require.NoError(t, err)

	assert.Equal(t, TierLocal, svc.Tier())
	mu.Lock()
	available = true
	mu.Unlock()
	assert.Equal(t, TierRemote, svc.Tier())
}

func TestRemoteWriteErrorsSurface(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	remote := newStubRemote()
	remote.writeErr = eris.New("permission denied")
	local := newLocal(t)
	svc := newService(t, remote, local, true)

	_, err := svc.CreatePost(ctx, remotePost("nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, remote.writeErr))
	assert.Nil(t, local.GetBySlug(ctx, "nope"), "failed remote write must not fall back")

	title := "x"
	_, err = svc.UpdatePost(ctx, "1", blog.PostPatch{Title: &title})
	require.Error(t, err)

	require.Error(t, svc.DeletePost(ctx, "1"))
	assert.NotNil(t, local.GetBySlug(ctx, localstore.DefaultPosts()[0].Slug))
}

func TestRemoteWritesReturnStoredRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	remote := newStubRemote()
	svc := newService(t, remote, newLocal(t), true)

	post := remotePost("created")
	post.ID = ""
	created, err := svc.CreatePost(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, "remote-id", created.ID)

	title := "Renamed"
	updated, err := svc.UpdatePost(ctx, "remote-id", blog.PostPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	require.NoError(t, svc.DeletePost(ctx, "remote-id"))
	assert.Equal(t, 1, remote.count("delete"))

	_, err = svc.UpdatePost(ctx, " ", blog.PostPatch{Title: &title})
	require.Error(t, err)
	require.Error(t, svc.DeletePost(ctx, ""))
}
