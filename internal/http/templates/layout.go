package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// withLayout wraps body in the shared document shell.
func withLayout(layout Layout, body func(ctx context.Context, p *page)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		siteName := layout.SiteName
		if siteName == "" {
			siteName = "Portfolio"
		}
		title := layout.Title
		if title == "" {
			title = siteName
		}
		footer := layout.FooterNote
		if footer == "" {
			footer = DefaultFooterNote
		}

		p := &page{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`)
		p.text(title)
		p.raw(`</title>`)
		if layout.Description != "" {
			p.raw(`<meta name="description" content="`)
			p.text(layout.Description)
			p.raw(`">`)
		}
		if layout.CanonicalURL != "" {
			p.raw(`<link rel="canonical" href="`)
			p.text(layout.CanonicalURL)
			p.raw(`">`)
		}
		p.raw(`<link rel="alternate" type="application/rss+xml" title="`)
		p.text(siteName)
		p.raw(`" href="/blog/feed.xml">`)
		p.raw(`<link rel="stylesheet" href="/static/site.css"></head><body>`)

		p.raw(`<header class="site-header"><a class="brand" href="/">`)
		p.text(siteName)
		p.raw(`</a><nav><a href="/blog">Blog</a>`)
		if layout.IsAdmin {
			p.raw(`<a href="/admin">Admin</a><form method="post" action="/admin/logout" class="inline"><button type="submit">Log out</button></form>`)
		}
		p.raw(`</nav></header><main>`)

		body(ctx, p)

		p.raw(`</main><footer class="site-footer"><p>`)
		p.text(footer)
		p.raw(`</p></footer></body></html>`)
		return p.err
	})
}
