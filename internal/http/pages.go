package http

import (
	"context"
	stdhttp "net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"portfolio/app/internal/blog"
	"portfolio/app/internal/http/templates"
)

const (
	homeRecentLimit = 3
	relatedLimit    = 3
)

type blogIndexInput struct {
	Category string `query:"category"`
}

type postPageInput struct {
	Slug string `path:"slug"`
}

func (s *Server) registerPageRoutes() {
	huma.Get(s.api, "/", s.homeHandler, htmlOperation("Home page", stdhttp.StatusNotFound))
	huma.Get(s.api, "/blog", s.blogIndexHandler, htmlOperation("Blog index", stdhttp.StatusNotFound))
	huma.Get(s.api, "/blog/{slug}", s.postPageHandler, htmlOperation(
		"Blog post",
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
	huma.Get(s.api, "/admin", s.adminPageHandler, htmlOperation("Admin dashboard", stdhttp.StatusFound))
	huma.Get(s.api, "/admin/login", s.loginPageHandler, htmlOperation("Admin login form"))
}

func (s *Server) homeHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	// "GET /" is the mux catch-all.
	if path := requestInfoFromContext(ctx).Path; path != "" && path != "/" {
		return s.renderErrorResponse(ctx, stdhttp.StatusNotFound, "We couldn't find that page.")
	}

	data := templates.HomePageData{
		Layout:   s.layout(ctx, "", "", "/"),
		Intro:    s.site.Description,
		Featured: summarizeAll(s.content.GetFeaturedPosts(ctx)),
		Recent:   summarizeAll(s.content.GetRecentPosts(ctx, homeRecentLimit)),
	}

	body, err := renderHTML(ctx, templates.HomePage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering home page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render the homepage.")
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) blogIndexHandler(ctx context.Context, input *blogIndexInput) (*htmlResponse, error) {
	heading := "Blog"
	var (
		posts  []blog.Post
		active blog.Category
	)

	if raw := strings.TrimSpace(input.Category); raw != "" {
		category, ok := blog.ParseCategory(raw)
		if !ok {
			return s.renderErrorResponse(ctx, stdhttp.StatusNotFound, "That category doesn't exist.")
		}
		active = category
		heading = category.Label()
		posts = s.content.GetPostsByCategory(ctx, category)
	} else {
		all := s.content.LoadBlogPosts(ctx)
		posts = blog.Recent(all, len(all))
	}

	links := []templates.CategoryLink{{Label: "All", URL: "/blog", Active: active == ""}}
	for _, category := range blog.Categories() {
		links = append(links, templates.CategoryLink{
			Label:  category.Label(),
			URL:    "/blog?category=" + string(category),
			Active: category == active,
		})
	}

	data := templates.BlogIndexData{
		Layout:     s.layout(ctx, heading, "", "/blog"),
		Heading:    heading,
		Categories: links,
		Posts:      summarizeAll(posts),
	}

	body, err := renderHTML(ctx, templates.BlogIndexPage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering blog index", logrus.Fields{"category": string(active)})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) postPageHandler(ctx context.Context, input *postPageInput) (*htmlResponse, error) {
	slug := strings.TrimSpace(input.Slug)
	post := s.content.GetBlogPostBySlug(ctx, slug)
	if post == nil {
		return s.renderErrorResponse(ctx, stdhttp.StatusNotFound, "We couldn't find that post.")
	}

	html, err := blog.RenderMarkdown(post.Content)
	if err != nil {
		s.recordError(ctx, err, "rendering post markdown", logrus.Fields{"slug": slug})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render this post.")
	}

	related := make([]blog.Post, 0, relatedLimit)
	for _, candidate := range s.content.GetPostsByCategory(ctx, post.Category) {
		if candidate.Slug == post.Slug {
			continue
		}
		related = append(related, candidate)
		if len(related) == relatedLimit {
			break
		}
	}

	data := templates.PostPageData{
		Layout:  s.layout(ctx, post.Title, post.Excerpt, "/blog/"+post.Slug),
		Post:    summarize(*post),
		Author:  post.Author,
		HTML:    html,
		Related: summarizeAll(related),
	}

	body, err := renderHTML(ctx, templates.PostPage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering post page", logrus.Fields{"slug": slug})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render this post.")
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) adminPageHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	if !adminFromContext(ctx).IsAdmin {
		response := newHTMLResponse(stdhttp.StatusFound, nil)
		response.Location = "/admin/login"
		return response, nil
	}

	posts := s.editor.Refresh(ctx)
	rows := make([]templates.AdminRow, 0, len(posts))
	for _, post := range posts {
		rows = append(rows, templates.AdminRow{
			ID:        post.ID,
			Title:     post.Title,
			Slug:      post.Slug,
			Category:  post.Category.Label(),
			Published: post.PublishedAt.Format(displayDateLayout),
			Featured:  post.Featured,
		})
	}

	data := templates.AdminPageData{
		Layout:      s.layout(ctx, "Admin", "", "/admin"),
		Tier:        s.content.Tier(),
		ContactMode: s.contact.Mode(),
		Posts:       rows,
	}

	body, err := renderHTML(ctx, templates.AdminPage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering admin page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	response := newHTMLResponse(stdhttp.StatusOK, body)
	response.CacheControl = "no-store"
	return response, nil
}

func (s *Server) loginPageHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	if adminFromContext(ctx).IsAdmin {
		response := newHTMLResponse(stdhttp.StatusFound, nil)
		response.Location = "/admin"
		return response, nil
	}

	body, err := s.renderLogin(ctx, false)
	if err != nil {
		s.recordError(ctx, err, "rendering login page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	response := newHTMLResponse(stdhttp.StatusOK, body)
	response.CacheControl = "no-store"
	return response, nil
}

func (s *Server) renderLogin(ctx context.Context, failed bool) ([]byte, error) {
	return renderHTML(ctx, templates.LoginPage(templates.LoginPageData{
		Layout:   s.layout(ctx, "Admin login", "", "/admin/login"),
		Failed:   failed,
		Disabled: !s.auth.Enabled(),
	}))
}
