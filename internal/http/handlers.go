package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"portfolio/app/internal/blog"
	"portfolio/app/internal/db"
	"portfolio/app/internal/http/templates"
)

const (
	htmlContentType      = "text/html; charset=utf-8"
	errorFallbackMessage = "We couldn't process your request right now."
	displayDateLayout    = "January 2, 2006"
)

type htmlResponse struct {
	Status       int
	ContentType  string `header:"Content-Type"`
	Location     string `header:"Location"`
	CacheControl string `header:"Cache-Control"`
	Body         []byte
}

type healthResponse struct {
	Status int
	Body   struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Content  string `json:"content"`
		Contact  string `json:"contact"`
		Admin    string `json:"admin"`
	}
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
		op.Tags = []string{"ops"}
	})
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{Status: stdhttp.StatusOK}
	resp.Body.Status = "ok"
	resp.Body.Database = "ok"
	resp.Body.Content = s.content.Tier()
	resp.Body.Contact = s.contact.Mode()
	resp.Body.Admin = "disabled"
	if s.auth.Enabled() {
		resp.Body.Admin = "enabled"
	}

	if err := db.Ping(ctx, s.db); err != nil {
		s.recordError(ctx, err, "pinging database", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	}

	return resp, nil
}

func newHTMLResponse(status int, body []byte) *htmlResponse {
	return &htmlResponse{
		Status:      status,
		ContentType: htmlContentType,
		Body:        body,
	}
}

func htmlOperation(summary string, statuses ...int) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		if summary != "" {
			op.Summary = summary
		}
		op.Tags = []string{"pages"}
		if op.Responses == nil {
			op.Responses = map[string]*huma.Response{}
		}

		statusCodes := append([]int{stdhttp.StatusOK}, statuses...)
		for _, status := range statusCodes {
			code := strconv.Itoa(status)
			op.Responses[code] = &huma.Response{
				Description: stdhttp.StatusText(status),
				Content: map[string]*huma.MediaType{
					htmlContentType: {
						Schema: &huma.Schema{Type: "string"},
					},
				},
			}
		}
	}
}

// layout builds the shared page values for the current request.
func (s *Server) layout(ctx context.Context, title, description, path string) templates.Layout {
	if title == "" {
		title = s.site.Name
	} else {
		title = fmt.Sprintf("%s • %s", title, s.site.Name)
	}
	if description == "" {
		description = s.site.Description
	}

	return templates.Layout{
		Title:        title,
		Description:  description,
		SiteName:     s.site.Name,
		CanonicalURL: s.site.URL + path,
		IsAdmin:      adminFromContext(ctx).IsAdmin,
	}
}

func (s *Server) renderErrorResponse(ctx context.Context, status int, message string) (*htmlResponse, error) {
	label := fmt.Sprintf("%d %s", status, stdhttp.StatusText(status))
	template := templates.ErrorPage(templates.ErrorPageData{
		Layout:      s.layout(ctx, label, "", ""),
		StatusLabel: label,
		Message:     message,
	})

	body, err := renderHTML(ctx, template)
	if err != nil {
		s.recordError(ctx, err, "rendering error page", logrus.Fields{"status": status})
		fallback := []byte(fmt.Sprintf("<html><body><h1>%s</h1><p>%s</p></body></html>", label, message))
		return newHTMLResponse(status, fallback), nil
	}

	return newHTMLResponse(status, body), nil
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}

func summarize(post blog.Post) templates.PostSummary {
	return templates.PostSummary{
		Title:         post.Title,
		URL:           "/blog/" + post.Slug,
		Excerpt:       post.Excerpt,
		CategoryLabel: post.Category.Label(),
		CategoryURL:   "/blog?category=" + string(post.Category),
		Published:     post.PublishedAt.Format(displayDateLayout),
		PublishedISO:  post.PublishedAt.UTC().Format("2006-01-02"),
		ReadTime:      post.ReadTime,
		Featured:      post.Featured,
		ImageURL:      post.ImageURL,
		Tags:          post.Tags,
	}
}

func summarizeAll(posts []blog.Post) []templates.PostSummary {
	out := make([]templates.PostSummary, 0, len(posts))
	for _, post := range posts {
		out = append(out, summarize(post))
	}
	return out
}
