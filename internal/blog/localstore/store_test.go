package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/app/internal/blog"
	applog "portfolio/app/internal/log"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(Options{InMemory: true, Logger: applog.Discard()})
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func samplePost(slug string, published time.Time) blog.Post {
	return blog.Post{
		ID:          "id-" + slug,
		Title:       "Title " + slug,
		Slug:        slug,
		Excerpt:     "Excerpt",
		Content:     "Content with a fence\n\n```go\nfmt.Println(1)\n```\n",
		Author:      "Jane Doe",
		PublishedAt: published,
		UpdatedAt:   published,
		Category:    blog.CategoryTutorials,
		Tags:        []string{"go", "testing"},
		ReadTime:    2,
		Featured:    true,
		ImageURL:    "https://example.com/cover.png",
	}
}

func TestOpenRequiresPathUnlessInMemory(t *testing.T) {
	t.Parallel()

	_, err := Open(Options{})
	require.Error(t, err)
}

func TestLoadSeedsDefaultsIdempotently(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	first := store.Load(ctx)
	assert.Equal(t, DefaultPosts(), first)

	raw, found, err := store.read()
	require.NoError(t, err)
	require.True(t, found, "defaults should be persisted on first load")
	assert.Equal(t, DefaultPosts(), raw)

	second := store.Load(ctx)
	assert.Equal(t, first, second)
}

func TestGetBySlugAfterSaveReturnsStoredPost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	published := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	posts := []blog.Post{
		samplePost("alpha", published),
		samplePost("beta", published.Add(time.Hour)),
	}
	require.NoError(t, store.Save(ctx, posts))

	loaded := store.Load(ctx)
	require.Len(t, loaded, 2)

	for _, want := range posts {
		got := store.GetBySlug(ctx, want.Slug)
		require.NotNil(t, got)
		assert.Equal(t, want, *got)
	}

	assert.Nil(t, store.GetBySlug(ctx, "missing"))
}

func TestGetRecentOrdersByPublishedDate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, []blog.Post{
		samplePost("one", base),
		samplePost("three", base.Add(72*time.Hour)),
		samplePost("two", base.Add(24*time.Hour)),
	}))

	recent := store.GetRecent(ctx, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, "three", recent[0].Slug)
	assert.Equal(t, "two", recent[1].Slug)

	all := store.GetRecent(ctx, 10)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].PublishedAt.After(all[i].PublishedAt))
	}
}

func TestLoadFallsBackToDefaultsOnCorruptData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(StorageKey), []byte("{not json"))
	}))

	assert.Equal(t, DefaultPosts(), store.Load(ctx))

	_, _, err := store.read()
	assert.Error(t, err, "corrupt value should be left in place")
}

func TestWritesLeaveCorruptDataInPlace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	corrupt := []byte("{not json")
	require.NoError(t, store.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(StorageKey), corrupt)
	}))

	post := DefaultPosts()[0]
	post.ID = ""
	post.Slug = "brand-new"
	_, err := store.Create(ctx, post)
	require.Error(t, err)

	title := "Changed"
	_, err = store.Update(ctx, "1", blog.PostPatch{Title: &title})
	require.Error(t, err)
	require.Error(t, store.Delete(ctx, "1"))

	var raw []byte
	require.NoError(t, store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(StorageKey))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	}))
	assert.Equal(t, corrupt, raw)
}

func TestCreateAssignsIDAndRejectsDuplicateSlug(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	post := samplePost("fresh", time.Time{})
	post.ID = ""

	created, err := store.Create(ctx, post)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, fixed, created.PublishedAt)
	assert.Equal(t, fixed, created.UpdatedAt)
	assert.Len(t, store.Load(ctx), len(DefaultPosts())+1)

	dup := samplePost("fresh", fixed)
	dup.ID = "other"
	_, err = store.Create(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateSlug)
}

func TestUpdateAppliesPatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	title := "Retitled"
	updated, err := store.Update(ctx, "1", blog.PostPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Retitled", updated.Title)
	assert.Equal(t, DefaultPosts()[0].Slug, updated.Slug)

	stored := store.GetBySlug(ctx, updated.Slug)
	require.NotNil(t, stored)
	assert.Equal(t, "Retitled", stored.Title)

	clash := DefaultPosts()[1].Slug
	_, err = store.Update(ctx, "1", blog.PostPatch{Slug: &clash})
	assert.ErrorIs(t, err, ErrDuplicateSlug)

	_, err = store.Update(ctx, "missing", blog.PostPatch{Title: &title})
	assert.ErrorIs(t, err, blog.ErrNotFound)
}

func TestDeleteRemovesPost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Delete(ctx, "2"))
	assert.Nil(t, store.GetBySlug(ctx, DefaultPosts()[1].Slug))
	assert.Len(t, store.Load(ctx), len(DefaultPosts())-1)

	assert.ErrorIs(t, store.Delete(ctx, "2"), blog.ErrNotFound)
}

func TestFeaturedAndCategoryFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	featured := store.GetFeatured(ctx)
	require.NotEmpty(t, featured)
	for _, post := range featured {
		assert.True(t, post.Featured)
	}

	career := store.GetByCategory(ctx, blog.CategoryCareer)
	require.Len(t, career, 1)
	assert.Equal(t, blog.CategoryCareer, career[0].Category)
}

func TestDefaultPostsAreValid(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, post := range DefaultPosts() {
		assert.NoError(t, blog.Validate(post), post.Slug)
		assert.False(t, seen[post.Slug], "duplicate slug %s", post.Slug)
		seen[post.Slug] = true
	}
}
