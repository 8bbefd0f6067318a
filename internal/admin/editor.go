package admin

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"portfolio/app/internal/blog"
	"portfolio/app/internal/content"
)

// Editor holds the operator's working list of posts. After a successful write
// the list is updated from the returned row; it is never re-fetched.
type Editor struct {
	content       content.Service
	defaultAuthor string
	logger        *logrus.Logger
	now           func() time.Time

	mu    sync.RWMutex
	posts []blog.Post
}

// NewEditor wires an editor on top of the content facade.
func NewEditor(svc content.Service, defaultAuthor string, logger *logrus.Logger) (*Editor, error) {
	if svc == nil {
		return nil, eris.New("content service is required")
	}
	return &Editor{
		content:       svc,
		defaultAuthor: strings.TrimSpace(defaultAuthor),
		logger:        logger,
		now:           time.Now,
	}, nil
}

// Refresh reloads the list through the facade and returns it.
func (e *Editor) Refresh(ctx context.Context) []blog.Post {
	posts := e.content.LoadBlogPosts(ctx)
	sorted := blog.Recent(posts, len(posts))

	e.mu.Lock()
	e.posts = sorted
	e.mu.Unlock()

	return e.Posts()
}

// Posts returns a copy of the current list.
func (e *Editor) Posts() []blog.Post {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]blog.Post, len(e.posts))
	for i, post := range e.posts {
		out[i] = post.Clone()
	}
	return out
}

// Save creates the draft when it has no ID and updates it otherwise. The slug
// is derived from the title only when creating with an empty slug.
func (e *Editor) Save(ctx context.Context, draft blog.Post) (blog.Post, error) {
	editing := strings.TrimSpace(draft.ID) != ""
	draft = e.prepare(draft, editing)

	// An edit without a publish date keeps the stored one.
	keepPublished := editing && draft.PublishedAt.IsZero()
	checked := draft
	if keepPublished {
		checked.PublishedAt = e.knownPublishedAt(draft.ID)
	}
	if err := blog.Validate(checked); err != nil {
		return blog.Post{}, err
	}

	var (
		saved blog.Post
		err   error
	)
	if editing {
		patch := blog.PatchFrom(draft)
		if keepPublished {
			patch.PublishedAt = nil
		}
		saved, err = e.content.UpdatePost(ctx, draft.ID, patch)
	} else {
		saved, err = e.content.CreatePost(ctx, draft)
	}
	if err != nil {
		e.logFailure(err, draft.Slug, "saving post")
		return blog.Post{}, err
	}

	e.mu.Lock()
	e.posts = upsert(e.posts, saved)
	e.mu.Unlock()

	return saved.Clone(), nil
}

// Delete removes the post. The list changes only when the facade reports success.
func (e *Editor) Delete(ctx context.Context, id string) error {
	if err := e.content.DeletePost(ctx, id); err != nil {
		e.logFailure(err, id, "deleting post")
		return err
	}

	trimmed := strings.TrimSpace(id)
	e.mu.Lock()
	kept := e.posts[:0:0]
	for _, post := range e.posts {
		if post.ID != trimmed {
			kept = append(kept, post)
		}
	}
	e.posts = kept
	e.mu.Unlock()

	return nil
}

func (e *Editor) prepare(draft blog.Post, editing bool) blog.Post {
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Slug = strings.TrimSpace(draft.Slug)
	draft.Author = strings.TrimSpace(draft.Author)

	if !editing && draft.Slug == "" {
		draft.Slug = blog.Slugify(draft.Title)
	}
	if draft.Author == "" {
		draft.Author = e.defaultAuthor
	}
	if strings.TrimSpace(draft.Excerpt) == "" {
		draft.Excerpt = blog.DeriveExcerpt(draft.Content, blog.DefaultExcerptLen)
	}
	if draft.ReadTime <= 0 {
		draft.ReadTime = blog.EstimateReadTime(draft.Content)
	}
	if !editing && draft.PublishedAt.IsZero() {
		draft.PublishedAt = e.now().UTC()
	}
	if draft.Tags == nil {
		draft.Tags = []string{}
	}
	return draft
}

// knownPublishedAt is only used to validate an edit that leaves the date out.
func (e *Editor) knownPublishedAt(id string) time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, post := range e.posts {
		if post.ID == id && !post.PublishedAt.IsZero() {
			return post.PublishedAt
		}
	}
	return e.now().UTC()
}

func (e *Editor) logFailure(err error, subject, message string) {
	if e.logger == nil {
		return
	}
	e.logger.WithFields(logrus.Fields{
		"component": "admin",
		"subject":   subject,
		"error":     err.Error(),
	}).Warn(message)
}

func upsert(posts []blog.Post, saved blog.Post) []blog.Post {
	out := make([]blog.Post, 0, len(posts)+1)
	replaced := false
	for _, post := range posts {
		if post.ID == saved.ID {
			out = append(out, saved.Clone())
			replaced = true
			continue
		}
		out = append(out, post)
	}
	if !replaced {
		out = append([]blog.Post{saved.Clone()}, out...)
	}
	return out
}
