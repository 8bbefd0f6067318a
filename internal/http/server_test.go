package http

import (
	"encoding/json"
	"html"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/crypto/bcrypt"

	"portfolio/app/internal/admin"
	"portfolio/app/internal/blog"
	"portfolio/app/internal/blog/localstore"
	"portfolio/app/internal/config"
	"portfolio/app/internal/contact"
	"portfolio/app/internal/content"
	"portfolio/app/internal/db"
	applog "portfolio/app/internal/log"
)

const testPassword = "correct horse battery staple"

func TestHomeRouteRendersPage(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := serve(srv, "GET", "/", "", "")

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != htmlContentType {
		t.Fatalf("expected content type %q, got %q", htmlContentType, ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Test Portfolio") {
		t.Fatalf("expected body to contain site name, got %q", body)
	}
	if !strings.Contains(body, "Building Responsive Layouts with CSS Grid") {
		t.Fatalf("expected featured post on homepage, got %q", body)
	}
}

func TestUnknownPathRendersNotFoundPage(t *testing.T) {
	t.Parallel()

	rec := serve(newTestServer(t), "GET", "/no/such/page", "", "")

	if rec.Code != 404 {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != htmlContentType {
		t.Fatalf("expected content type %q, got %q", htmlContentType, ct)
	}
}

func TestPostPageRendersMarkdown(t *testing.T) {
	t.Parallel()

	rec := serve(newTestServer(t), "GET", "/blog/building-responsive-layouts-with-css-grid", "", "")

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<code class="language-css">`) {
		t.Fatalf("expected rendered code fence, got %q", body)
	}
	if !strings.Contains(body, "<h2>Why Grid</h2>") {
		t.Fatalf("expected rendered heading, got %q", body)
	}
}

func TestPostPageReturns404ForMissingSlug(t *testing.T) {
	t.Parallel()

	rec := serve(newTestServer(t), "GET", "/blog/does-not-exist", "", "")

	if rec.Code != 404 {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if !strings.Contains(html.UnescapeString(rec.Body.String()), "We couldn't find that post.") {
		t.Fatalf("expected not found message, got %q", rec.Body.String())
	}
}

func TestBlogIndexFiltersByCategory(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	rec := serve(srv, "GET", "/blog?category=react", "", "")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Understanding React Hooks") {
		t.Fatalf("expected react post, got %q", body)
	}
	if strings.Contains(body, "Modern JavaScript Features") {
		t.Fatalf("expected other categories to be filtered out, got %q", body)
	}

	rec = serve(srv, "GET", "/blog?category=cooking", "", "")
	if rec.Code != 404 {
		t.Fatalf("expected status 404 for unknown category, got %d", rec.Code)
	}
}

func TestPostsAPI(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	var all []blog.Post
	decodeJSON(t, serve(srv, "GET", "/api/posts", "", ""), 200, &all)
	if len(all) != len(localstore.DefaultPosts()) {
		t.Fatalf("expected %d posts, got %d", len(localstore.DefaultPosts()), len(all))
	}

	var recent []blog.Post
	decodeJSON(t, serve(srv, "GET", "/api/posts/recent?limit=2", "", ""), 200, &recent)
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent posts, got %d", len(recent))
	}
	if !recent[0].PublishedAt.After(recent[1].PublishedAt) {
		t.Fatalf("expected newest first, got %v then %v", recent[0].PublishedAt, recent[1].PublishedAt)
	}

	var featured []blog.Post
	decodeJSON(t, serve(srv, "GET", "/api/posts/featured", "", ""), 200, &featured)
	for _, post := range featured {
		if !post.Featured {
			t.Fatalf("expected only featured posts, got %q", post.Slug)
		}
	}

	var post blog.Post
	decodeJSON(t, serve(srv, "GET", "/api/posts/understanding-react-hooks", "", ""), 200, &post)
	if post.Category != blog.CategoryReact {
		t.Fatalf("expected react category, got %q", post.Category)
	}

	if rec := serve(srv, "GET", "/api/posts/missing", "", ""); rec.Code != 404 {
		t.Fatalf("expected status 404 for missing slug, got %d", rec.Code)
	}
	if rec := serve(srv, "GET", "/api/posts/category/cooking", "", ""); rec.Code != 400 {
		t.Fatalf("expected status 400 for unknown category, got %d", rec.Code)
	}
}

func TestContactRouteStoresSubmission(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := serve(srv, "POST", "/api/contact",
		`{"name":"Ada","email":"ada@example.com","message":"Hello there, nice site!"}`, "application/json")

	var result contactResult
	decodeJSON(t, rec, 200, &result)
	if !result.Success || result.ID == "" {
		t.Fatalf("expected successful submission with id, got %+v", result)
	}
}

func TestContactRouteRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := serve(srv, "POST", "/api/contact",
		`{"name":"A","email":"ada@example.com","message":"Hello there, nice site!"}`, "application/json")

	var result contactResult
	decodeJSON(t, rec, 400, &result)
	if result.Success {
		t.Fatal("expected submission to fail")
	}
	if result.Error != "Name must be at least 2 characters long" {
		t.Fatalf("unexpected error message %q", result.Error)
	}
}

func TestAdminAPIRequiresSession(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	if rec := serve(srv, "GET", "/api/admin/posts", "", ""); rec.Code != 401 {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}

	var check struct {
		IsAdmin bool   `json:"isAdmin"`
		Message string `json:"message"`
	}
	decodeJSON(t, serve(srv, "GET", "/api/admin/check", "", ""), 200, &check)
	if check.IsAdmin || check.Message != admin.MessageDenied {
		t.Fatalf("unexpected admin check %+v", check)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	t.Parallel()

	form := url.Values{"password": {"nope"}}.Encode()
	rec := serve(newTestServer(t), "POST", "/admin/login", form, "application/x-www-form-urlencoded")

	if rec.Code != 401 {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Incorrect password.") {
		t.Fatalf("expected failure notice, got %q", rec.Body.String())
	}
}

func TestAdminCreatePostAfterLogin(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	cookie := login(t, srv)

	req := httptest.NewRequest("POST", "/api/admin/posts", strings.NewReader(
		`{"title":"Hello Go Templates","content":"First paragraph.\n\nSecond one.","category":"tutorials"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", cookie)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var created blog.Post
	decodeJSON(t, rec, 201, &created)
	if created.Slug != "hello-go-templates" {
		t.Fatalf("expected derived slug, got %q", created.Slug)
	}
	if created.Excerpt != "First paragraph." {
		t.Fatalf("expected derived excerpt, got %q", created.Excerpt)
	}

	if rec := serve(srv, "GET", "/blog/hello-go-templates", "", ""); rec.Code != 200 {
		t.Fatalf("expected new post to be served, got %d", rec.Code)
	}

	req = httptest.NewRequest("DELETE", "/api/admin/posts/"+created.ID, nil)
	req.Header.Set("Cookie", cookie)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != 204 {
		t.Fatalf("expected status 204, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminCreateReportsValidationErrors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	cookie := login(t, srv)

	req := httptest.NewRequest("POST", "/api/admin/posts", strings.NewReader(
		`{"title":"Bad category","content":"Body.","category":"gardening"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", cookie)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "predefined categories") {
		t.Fatalf("expected category message, got %q", rec.Body.String())
	}
}

func TestRSSFeedParses(t *testing.T) {
	t.Parallel()

	rec := serve(newTestServer(t), "GET", "/blog/feed.xml", "", "")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != rssContentType {
		t.Fatalf("expected content type %q, got %q", rssContentType, ct)
	}

	feed, err := gofeed.NewParser().ParseString(rec.Body.String())
	if err != nil {
		t.Fatalf("parsing feed: %v", err)
	}
	if feed.Title != "Test Portfolio" {
		t.Fatalf("unexpected feed title %q", feed.Title)
	}
	if len(feed.Items) != len(localstore.DefaultPosts()) {
		t.Fatalf("expected %d items, got %d", len(localstore.DefaultPosts()), len(feed.Items))
	}
	if feed.Items[0].Link != "https://example.com/blog/from-side-projects-to-a-frontend-career" {
		t.Fatalf("expected newest post first, got %q", feed.Items[0].Link)
	}
}

func TestSitemapListsPosts(t *testing.T) {
	t.Parallel()

	rec := serve(newTestServer(t), "GET", "/sitemap.xml", "", "")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<loc>https://example.com/blog/understanding-react-hooks</loc>") {
		t.Fatalf("expected post url in sitemap, got %q", rec.Body.String())
	}
}

func TestRobotsAdvertisesSitemap(t *testing.T) {
	t.Parallel()

	rec := serve(newTestServer(t), "GET", "/robots.txt", "", "")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Sitemap: https://example.com/sitemap.xml") {
		t.Fatalf("expected sitemap line, got %q", rec.Body.String())
	}
}

func TestHealthRouteReportsOK(t *testing.T) {
	t.Parallel()

	rec := serve(newTestServer(t), "GET", "/healthz", "", "")

	var health struct {
		Status  string `json:"status"`
		Content string `json:"content"`
		Contact string `json:"contact"`
		Admin   string `json:"admin"`
	}
	decodeJSON(t, rec, 200, &health)
	if health.Status != "ok" || health.Content != content.TierLocal {
		t.Fatalf("unexpected health %+v", health)
	}
	if health.Contact != "demo" || health.Admin != "enabled" {
		t.Fatalf("unexpected health %+v", health)
	}
}

// helper utilities

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := applog.Discard()

	gormDB, err := db.Open(db.Options{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("db.Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gormDB) })

	if err := contact.Migrate(t.Context(), gormDB, logger); err != nil {
		t.Fatalf("contact.Migrate returned error: %v", err)
	}
	repo, err := contact.NewGormRepository(gormDB, logger)
	if err != nil {
		t.Fatalf("NewGormRepository returned error: %v", err)
	}
	contactSvc, err := contact.NewService(repo, nil, logger, nil)
	if err != nil {
		t.Fatalf("contact.NewService returned error: %v", err)
	}

	store, err := localstore.Open(localstore.Options{InMemory: true, Logger: logger})
	if err != nil {
		t.Fatalf("localstore.Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	contentSvc, err := content.NewService(content.Options{Local: store, Logger: logger})
	if err != nil {
		t.Fatalf("content.NewService returned error: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	auth := admin.NewAuthenticator(config.AdminConfig{
		PasswordHash:  string(hash),
		SessionSecret: "0123456789abcdef0123456789abcdef",
	}, logger)

	srv, err := NewServer(Options{
		Content:  contentSvc,
		Contact:  contactSvc,
		Auth:     auth,
		Database: gormDB,
		Site: config.SiteConfig{
			Name:        "Test Portfolio",
			URL:         "https://example.com",
			Description: "Writing about the web.",
			Author:      "Test Author",
		},
		Logger: logger,
		RateLimiter: RateLimiterSettings{
			RequestsPerSecond: 1000,
			Burst:             1000,
			ClientTTL:         time.Minute,
		},
	})
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}
	t.Cleanup(srv.Close)

	return srv
}

func serve(srv *Server, method, target, body, contentType string) *httptest.ResponseRecorder {
	var req = httptest.NewRequest(method, target, nil)
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, srv *Server) string {
	t.Helper()

	form := url.Values{"password": {testPassword}}.Encode()
	rec := serve(srv, "POST", "/admin/login", form, "application/x-www-form-urlencoded")
	if rec.Code != 303 {
		t.Fatalf("expected status 303 after login, got %d", rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/admin" {
		t.Fatalf("expected redirect to /admin, got %q", location)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}
	return cookies[0].Name + "=" + cookies[0].Value
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, status int, target any) {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}
