package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"portfolio/app/internal/admin"
	"portfolio/app/internal/blog"
	"portfolio/app/internal/blog/localstore"
	"portfolio/app/internal/blog/remote"
	"portfolio/app/internal/contact"
	"portfolio/app/internal/validation"
)

const (
	defaultRecentLimit = 3
	maxRecentLimit     = 50
)

type postsOutput struct {
	Body []blog.Post
}

type postOutput struct {
	Body blog.Post
}

type recentInput struct {
	Limit int `query:"limit" doc:"Maximum number of posts, defaults to 3"`
}

type categoryInput struct {
	Category string `path:"category"`
}

type slugInput struct {
	Slug string `path:"slug"`
}

type contactInput struct {
	Body struct {
		Name    string `json:"name,omitempty"`
		Email   string `json:"email,omitempty"`
		Message string `json:"message,omitempty"`
	}
}

type contactResult struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message,omitempty"`
	Error   string                  `json:"error,omitempty"`
	ID      string                  `json:"id,omitempty"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

type contactOutput struct {
	Status int
	Body   contactResult
}

type adminCheckOutput struct {
	Body struct {
		IsAdmin bool   `json:"isAdmin"`
		Message string `json:"message"`
	}
}

// postPayload is the editor form. Missing fields are derived or rejected by
// post validation rather than by the schema.
type postPayload struct {
	Title       string     `json:"title,omitempty"`
	Slug        string     `json:"slug,omitempty"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Content     string     `json:"content,omitempty"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	ReadTime    int        `json:"readTime,omitempty"`
	Featured    bool       `json:"featured,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
}

type createPostInput struct {
	Body postPayload
}

type updatePostInput struct {
	ID   string `path:"id"`
	Body postPayload
}

type deletePostInput struct {
	ID string `path:"id"`
}

func (p postPayload) draft(id string) blog.Post {
	post := blog.Post{
		ID:       strings.TrimSpace(id),
		Title:    p.Title,
		Slug:     p.Slug,
		Excerpt:  p.Excerpt,
		Content:  p.Content,
		Author:   p.Author,
		Category: blog.Category(strings.ToLower(strings.TrimSpace(p.Category))),
		Tags:     cleanTags(p.Tags),
		ReadTime: p.ReadTime,
		Featured: p.Featured,
		ImageURL: strings.TrimSpace(p.ImageURL),
	}
	if p.PublishedAt != nil {
		post.PublishedAt = p.PublishedAt.UTC()
	}
	return post
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (s *Server) registerPostRoutes() {
	tag := func(summary string) func(op *huma.Operation) {
		return func(op *huma.Operation) {
			op.Summary = summary
			op.Tags = []string{"posts"}
		}
	}

	huma.Get(s.api, "/api/posts", s.listPostsHandler, tag("List posts"))
	huma.Get(s.api, "/api/posts/recent", s.recentPostsHandler, tag("Recent posts"))
	huma.Get(s.api, "/api/posts/featured", s.featuredPostsHandler, tag("Featured posts"))
	huma.Get(s.api, "/api/posts/category/{category}", s.categoryPostsHandler, tag("Posts by category"))
	huma.Get(s.api, "/api/posts/{slug}", s.postBySlugHandler, tag("Get post by slug"))
}

func (s *Server) listPostsHandler(ctx context.Context, _ *struct{}) (*postsOutput, error) {
	return &postsOutput{Body: s.content.LoadBlogPosts(ctx)}, nil
}

func (s *Server) recentPostsHandler(ctx context.Context, input *recentInput) (*postsOutput, error) {
	limit := input.Limit
	switch {
	case limit <= 0:
		limit = defaultRecentLimit
	case limit > maxRecentLimit:
		limit = maxRecentLimit
	}
	return &postsOutput{Body: s.content.GetRecentPosts(ctx, limit)}, nil
}

func (s *Server) featuredPostsHandler(ctx context.Context, _ *struct{}) (*postsOutput, error) {
	return &postsOutput{Body: s.content.GetFeaturedPosts(ctx)}, nil
}

func (s *Server) categoryPostsHandler(ctx context.Context, input *categoryInput) (*postsOutput, error) {
	category, ok := blog.ParseCategory(input.Category)
	if !ok {
		return nil, huma.Error400BadRequest("unknown category", &huma.ErrorDetail{
			Location: "path.category",
			Message:  "Category must be one of the predefined categories",
			Value:    input.Category,
		})
	}
	return &postsOutput{Body: s.content.GetPostsByCategory(ctx, category)}, nil
}

func (s *Server) postBySlugHandler(ctx context.Context, input *slugInput) (*postOutput, error) {
	post := s.content.GetBlogPostBySlug(ctx, strings.TrimSpace(input.Slug))
	if post == nil {
		return nil, huma.Error404NotFound("post not found")
	}
	return &postOutput{Body: *post}, nil
}

func (s *Server) registerContactRoute() {
	huma.Post(s.api, "/api/contact", s.contactHandler, func(op *huma.Operation) {
		op.Summary = "Submit the contact form"
		op.Tags = []string{"contact"}
	})
}

func (s *Server) contactHandler(ctx context.Context, input *contactInput) (*contactOutput, error) {
	info := requestInfoFromContext(ctx)
	submission, err := s.contact.Submit(ctx, contact.Input{
		Name:    input.Body.Name,
		Email:   input.Body.Email,
		Message: input.Body.Message,
	}, contact.Meta{
		UserAgent: info.UserAgent,
		IPAddress: info.ClientIP,
	})

	var fieldErrs validation.Errors
	switch {
	case err == nil:
		return &contactOutput{
			Status: stdhttp.StatusOK,
			Body: contactResult{
				Success: true,
				Message: "Thanks for reaching out! I'll get back to you soon.",
				ID:      submission.ID,
			},
		}, nil
	case errors.As(err, &fieldErrs):
		return &contactOutput{
			Status: stdhttp.StatusBadRequest,
			Body: contactResult{
				Error:  fieldErrs.First().Message,
				Fields: fieldErrs,
			},
		}, nil
	default:
		s.recordError(ctx, err, "storing contact submission", nil)
		return &contactOutput{
			Status: stdhttp.StatusInternalServerError,
			Body: contactResult{
				Error: "Your message could not be sent. Please try again later.",
			},
		}, nil
	}
}

func (s *Server) registerAdminAPIRoutes() {
	tag := func(summary string) func(op *huma.Operation) {
		return func(op *huma.Operation) {
			op.Summary = summary
			op.Tags = []string{"admin"}
		}
	}

	huma.Get(s.api, "/api/admin/check", s.adminCheckHandler, tag("Check admin session"))
	huma.Get(s.api, "/api/admin/posts", s.adminListHandler, tag("Editor post list"))
	huma.Post(s.api, "/api/admin/posts", s.adminCreateHandler, func(op *huma.Operation) {
		tag("Create post")(op)
		op.DefaultStatus = stdhttp.StatusCreated
	})
	huma.Put(s.api, "/api/admin/posts/{id}", s.adminUpdateHandler, tag("Update post"))
	huma.Delete(s.api, "/api/admin/posts/{id}", s.adminDeleteHandler, func(op *huma.Operation) {
		tag("Delete post")(op)
		op.DefaultStatus = stdhttp.StatusNoContent
	})
}

func (s *Server) adminCheckHandler(ctx context.Context, _ *struct{}) (*adminCheckOutput, error) {
	state := adminFromContext(ctx)
	out := &adminCheckOutput{}
	out.Body.IsAdmin = state.IsAdmin
	out.Body.Message = state.Message
	if out.Body.Message == "" {
		out.Body.Message = admin.MessageDenied
	}
	return out, nil
}

func (s *Server) adminListHandler(ctx context.Context, _ *struct{}) (*postsOutput, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return &postsOutput{Body: s.editor.Refresh(ctx)}, nil
}

func (s *Server) adminCreateHandler(ctx context.Context, input *createPostInput) (*postOutput, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	saved, err := s.editor.Save(ctx, input.Body.draft(""))
	if err != nil {
		return nil, s.adminError(ctx, err, "creating post", logrus.Fields{"title": input.Body.Title})
	}
	return &postOutput{Body: saved}, nil
}

func (s *Server) adminUpdateHandler(ctx context.Context, input *updatePostInput) (*postOutput, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.ID) == "" {
		return nil, huma.Error400BadRequest("post id is required")
	}

	saved, err := s.editor.Save(ctx, input.Body.draft(input.ID))
	if err != nil {
		return nil, s.adminError(ctx, err, "updating post", logrus.Fields{"id": input.ID})
	}
	return &postOutput{Body: saved}, nil
}

func (s *Server) adminDeleteHandler(ctx context.Context, input *deletePostInput) (*struct{}, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.editor.Delete(ctx, input.ID); err != nil {
		return nil, s.adminError(ctx, err, "deleting post", logrus.Fields{"id": input.ID})
	}
	return &struct{}{}, nil
}

func requireAdmin(ctx context.Context) error {
	state := adminFromContext(ctx)
	if state.IsAdmin {
		return nil
	}
	message := state.Message
	if message == "" {
		message = admin.MessageDenied
	}
	return huma.Error401Unauthorized(message)
}

// adminError maps editor failures to API errors. Only unexpected failures
// are reported to Sentry.
func (s *Server) adminError(ctx context.Context, err error, message string, fields logrus.Fields) error {
	var (
		fieldErrs validation.Errors
		remoteErr *remote.BlogPostError
	)

	switch {
	case errors.As(err, &fieldErrs):
		details := make([]error, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, &huma.ErrorDetail{Location: "body." + fe.Field, Message: fe.Message})
		}
		return huma.Error400BadRequest(fieldErrs.First().Message, details...)
	case eris.Is(err, blog.ErrNotFound):
		return huma.Error404NotFound("post not found")
	case eris.Is(err, localstore.ErrDuplicateSlug):
		return huma.Error409Conflict("a post with this slug already exists")
	case eris.Is(err, remote.ErrAdminContext):
		s.recordError(ctx, err, message, fields)
		return huma.Error403Forbidden("the content backend refused the admin context")
	case errors.As(err, &remoteErr):
		s.recordError(ctx, err, message, fields)
		return huma.Error502BadGateway("the content backend rejected the change")
	default:
		s.recordError(ctx, err, message, fields)
		return huma.Error500InternalServerError("could not save the change")
	}
}
