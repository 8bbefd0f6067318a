package http

import (
	"bytes"
	"context"
	"encoding/xml"
	stdhttp "net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rotisserie/eris"

	"portfolio/app/internal/blog"
)

const (
	rssContentType     = "application/rss+xml; charset=utf-8"
	sitemapContentType = "application/xml; charset=utf-8"
	feedCacheControl   = "public, max-age=3600"
	feedItemLimit      = 20
)

type xmlResponse struct {
	Status       int
	ContentType  string `header:"Content-Type"`
	CacheControl string `header:"Cache-Control"`
	Body         []byte
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (s *Server) registerFeedRoutes() {
	huma.Get(s.api, "/blog/feed.xml", s.rssHandler, xmlOperation("RSS feed", rssContentType))
	huma.Get(s.api, "/sitemap.xml", s.sitemapHandler, xmlOperation("Sitemap", sitemapContentType))
}

func (s *Server) rssHandler(ctx context.Context, _ *struct{}) (*xmlResponse, error) {
	posts := s.content.GetRecentPosts(ctx, feedItemLimit)

	items := make([]rssItem, 0, len(posts))
	for _, post := range posts {
		link := s.site.URL + "/blog/" + post.Slug
		items = append(items, rssItem{
			Title:       post.Title,
			Link:        link,
			Description: post.Excerpt,
			Categories:  append([]string{post.Category.Label()}, post.Tags...),
			PubDate:     post.PublishedAt.UTC().Format(time.RFC1123Z),
			GUID:        link,
		})
	}

	channel := rssChannel{
		Title:       s.site.Name,
		Link:        s.site.URL,
		Description: s.site.Description,
		Language:    "en",
		Items:       items,
	}
	if len(posts) > 0 {
		channel.LastBuildDate = latestUpdate(posts).Format(time.RFC1123Z)
	}

	body, err := encodeXML(rssDocument{Version: "2.0", Channel: channel})
	if err != nil {
		s.recordError(ctx, err, "encoding rss feed", nil)
		return nil, huma.Error500InternalServerError("could not build feed")
	}

	return &xmlResponse{
		Status:       stdhttp.StatusOK,
		ContentType:  rssContentType,
		CacheControl: feedCacheControl,
		Body:         body,
	}, nil
}

func (s *Server) sitemapHandler(ctx context.Context, _ *struct{}) (*xmlResponse, error) {
	posts := s.content.LoadBlogPosts(ctx)

	urls := []sitemapURL{
		{Loc: s.site.URL + "/"},
		{Loc: s.site.URL + "/blog"},
	}
	for _, category := range blog.Categories() {
		urls = append(urls, sitemapURL{Loc: s.site.URL + "/blog?category=" + string(category)})
	}
	for _, post := range blog.Recent(posts, len(posts)) {
		urls = append(urls, sitemapURL{
			Loc:     s.site.URL + "/blog/" + post.Slug,
			LastMod: lastModified(post).Format("2006-01-02"),
		})
	}

	body, err := encodeXML(sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	})
	if err != nil {
		s.recordError(ctx, err, "encoding sitemap", nil)
		return nil, huma.Error500InternalServerError("could not build sitemap")
	}

	return &xmlResponse{
		Status:       stdhttp.StatusOK,
		ContentType:  sitemapContentType,
		CacheControl: feedCacheControl,
		Body:         body,
	}, nil
}

func encodeXML(document any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(document); err != nil {
		return nil, eris.Wrap(err, "encoding xml document")
	}
	return buf.Bytes(), nil
}

func lastModified(post blog.Post) time.Time {
	if post.UpdatedAt.After(post.PublishedAt) {
		return post.UpdatedAt.UTC()
	}
	return post.PublishedAt.UTC()
}

func latestUpdate(posts []blog.Post) time.Time {
	var latest time.Time
	for _, post := range posts {
		if modified := lastModified(post); modified.After(latest) {
			latest = modified
		}
	}
	return latest
}

func xmlOperation(summary, contentType string) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		op.Summary = summary
		op.Tags = []string{"feeds"}
		op.Responses = map[string]*huma.Response{
			"200": {
				Description: stdhttp.StatusText(stdhttp.StatusOK),
				Content: map[string]*huma.MediaType{
					contentType: {Schema: &huma.Schema{Type: "string"}},
				},
			},
		}
	}
}
