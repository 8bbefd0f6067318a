package templates

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
)

// HomePage renders the landing page with featured and recent posts.
func HomePage(data HomePageData) templ.Component {
	return withLayout(data.Layout, func(ctx context.Context, p *page) {
		p.raw(`<section class="hero"><h1>`)
		p.text(data.SiteName)
		p.raw(`</h1>`)
		if data.Intro != "" {
			p.raw(`<p>`)
			p.text(data.Intro)
			p.raw(`</p>`)
		}
		p.raw(`</section>`)

		if len(data.Featured) > 0 {
			p.raw(`<section class="featured"><h2>Featured</h2>`)
			postList(p, data.Featured)
			p.raw(`</section>`)
		}

		p.raw(`<section class="recent"><h2>Recent posts</h2>`)
		if len(data.Recent) == 0 {
			p.raw(`<p class="empty">No posts yet.</p>`)
		} else {
			postList(p, data.Recent)
		}
		p.raw(`<p><a href="/blog">All posts &rarr;</a></p></section>`)
	})
}

// BlogIndexPage renders the blog listing with its category filter.
func BlogIndexPage(data BlogIndexData) templ.Component {
	return withLayout(data.Layout, func(ctx context.Context, p *page) {
		p.raw(`<h1>`)
		p.text(data.Heading)
		p.raw(`</h1><nav class="categories">`)
		for _, link := range data.Categories {
			if link.Active {
				p.raw(`<a class="active" aria-current="page" href="`)
			} else {
				p.raw(`<a href="`)
			}
			p.text(link.URL)
			p.raw(`">`)
			p.text(link.Label)
			p.raw(`</a>`)
		}
		p.raw(`</nav>`)

		if len(data.Posts) == 0 {
			p.raw(`<p class="empty">No posts in this category yet.</p>`)
			return
		}
		postList(p, data.Posts)
	})
}

// PostPage renders a single post. HTML must already be safe to embed.
func PostPage(data PostPageData) templ.Component {
	return withLayout(data.Layout, func(ctx context.Context, p *page) {
		post := data.Post
		p.raw(`<article class="post"><header><h1>`)
		p.text(post.Title)
		p.raw(`</h1><p class="meta">`)
		if data.Author != "" {
			p.text(data.Author)
			p.raw(` &middot; `)
		}
		p.raw(`<time datetime="`)
		p.text(post.PublishedISO)
		p.raw(`">`)
		p.text(post.Published)
		p.raw(`</time> &middot; `)
		p.text(strconv.Itoa(post.ReadTime))
		p.raw(` min read &middot; <a href="`)
		p.text(post.CategoryURL)
		p.raw(`">`)
		p.text(post.CategoryLabel)
		p.raw(`</a></p>`)
		if post.ImageURL != "" {
			p.raw(`<img class="cover" alt="" src="`)
			p.text(post.ImageURL)
			p.raw(`">`)
		}
		p.raw(`</header><div class="post-body">`)
		p.component(ctx, RawHTML(data.HTML))
		p.raw(`</div>`)
		tagList(p, post.Tags)
		p.raw(`</article>`)

		if len(data.Related) > 0 {
			p.raw(`<aside class="related"><h2>More in `)
			p.text(post.CategoryLabel)
			p.raw(`</h2>`)
			postList(p, data.Related)
			p.raw(`</aside>`)
		}
	})
}

// ErrorPage renders a status page.
func ErrorPage(data ErrorPageData) templ.Component {
	return withLayout(data.Layout, func(ctx context.Context, p *page) {
		p.raw(`<section class="error"><h1>`)
		p.text(data.StatusLabel)
		p.raw(`</h1><p>`)
		p.text(data.Message)
		p.raw(`</p><p><a href="/">Back to the homepage</a></p></section>`)
	})
}

// LoginPage renders the admin password form.
func LoginPage(data LoginPageData) templ.Component {
	return withLayout(data.Layout, func(ctx context.Context, p *page) {
		p.raw(`<section class="login"><h1>Admin login</h1>`)
		if data.Disabled {
			p.raw(`<p class="notice">Admin access is not configured on this server.</p></section>`)
			return
		}
		if data.Failed {
			p.raw(`<p class="error" role="alert">Incorrect password.</p>`)
		}
		p.raw(`<form method="post" action="/admin/login"><label for="password">Password</label>`)
		p.raw(`<input id="password" name="password" type="password" autocomplete="current-password" required>`)
		p.raw(`<button type="submit">Log in</button></form></section>`)
	})
}

// AdminPage renders the operator dashboard.
func AdminPage(data AdminPageData) templ.Component {
	return withLayout(data.Layout, func(ctx context.Context, p *page) {
		p.raw(`<section class="admin"><h1>Posts</h1><p class="meta">Content tier: `)
		p.text(data.Tier)
		p.raw(` &middot; Contact mail: `)
		p.text(data.ContactMode)
		p.raw(`</p>`)

		if len(data.Posts) == 0 {
			p.raw(`<p class="empty">No posts yet.</p></section>`)
			return
		}

		p.raw(`<table><thead><tr><th>Title</th><th>Slug</th><th>Category</th><th>Published</th><th>Featured</th></tr></thead><tbody>`)
		for _, row := range data.Posts {
			p.raw(`<tr data-id="`)
			p.text(row.ID)
			p.raw(`"><td><a href="/blog/`)
			p.text(row.Slug)
			p.raw(`">`)
			p.text(row.Title)
			p.raw(`</a></td><td>`)
			p.text(row.Slug)
			p.raw(`</td><td>`)
			p.text(row.Category)
			p.raw(`</td><td>`)
			p.text(row.Published)
			p.raw(`</td><td>`)
			if row.Featured {
				p.raw(`yes`)
			}
			p.raw(`</td></tr>`)
		}
		p.raw(`</tbody></table></section>`)
	})
}

func postList(p *page, posts []PostSummary) {
	p.raw(`<ul class="post-list">`)
	for _, post := range posts {
		p.raw(`<li class="post-card"><h3><a href="`)
		p.text(post.URL)
		p.raw(`">`)
		p.text(post.Title)
		p.raw(`</a></h3><p class="meta"><time datetime="`)
		p.text(post.PublishedISO)
		p.raw(`">`)
		p.text(post.Published)
		p.raw(`</time> &middot; `)
		p.text(strconv.Itoa(post.ReadTime))
		p.raw(` min read &middot; <a href="`)
		p.text(post.CategoryURL)
		p.raw(`">`)
		p.text(post.CategoryLabel)
		p.raw(`</a></p>`)
		if post.Excerpt != "" {
			p.raw(`<p>`)
			p.text(post.Excerpt)
			p.raw(`</p>`)
		}
		p.raw(`</li>`)
	}
	p.raw(`</ul>`)
}

func tagList(p *page, tags []string) {
	if len(tags) == 0 {
		return
	}
	p.raw(`<ul class="tags">`)
	for _, tag := range tags {
		p.raw(`<li>#`)
		p.text(tag)
		p.raw(`</li>`)
	}
	p.raw(`</ul>`)
}
