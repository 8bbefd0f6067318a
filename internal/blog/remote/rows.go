package remote

import (
	"strings"
	"time"

	"portfolio/app/internal/blog"
)

// postRow mirrors a row of the blog_posts table.
type postRow struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	ReadTime    int       `json:"read_time"`
	Featured    bool      `json:"featured"`
	ImageURL    *string   `json:"image_url"`
}

func (r postRow) toPost() blog.Post {
	post := blog.Post{
		ID:          r.ID,
		Title:       r.Title,
		Slug:        r.Slug,
		Excerpt:     r.Excerpt,
		Content:     r.Content,
		Author:      r.Author,
		PublishedAt: r.PublishedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		Category:    blog.Category(r.Category),
		Tags:        r.Tags,
		ReadTime:    r.ReadTime,
		Featured:    r.Featured,
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if r.ImageURL != nil {
		post.ImageURL = *r.ImageURL
	}
	return post
}

func fromPost(post blog.Post) postRow {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	return postRow{
		ID:          strings.TrimSpace(post.ID),
		Title:       post.Title,
		Slug:        post.Slug,
		Excerpt:     post.Excerpt,
		Content:     post.Content,
		Author:      post.Author,
		PublishedAt: post.PublishedAt.UTC(),
		UpdatedAt:   post.UpdatedAt.UTC(),
		Category:    string(post.Category),
		Tags:        tags,
		ReadTime:    post.ReadTime,
		Featured:    post.Featured,
		ImageURL:    nullableString(post.ImageURL),
	}
}

func toPosts(rows []postRow) []blog.Post {
	posts := make([]blog.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toPost())
	}
	return posts
}

// patchColumns translates a partial update into column names.
func patchColumns(patch blog.PostPatch, updatedAt time.Time) map[string]any {
	columns := map[string]any{
		"updated_at": updatedAt.UTC(),
	}
	if patch.Title != nil {
		columns["title"] = *patch.Title
	}
	if patch.Slug != nil {
		columns["slug"] = *patch.Slug
	}
	if patch.Excerpt != nil {
		columns["excerpt"] = *patch.Excerpt
	}
	if patch.Content != nil {
		columns["content"] = *patch.Content
	}
	if patch.Author != nil {
		columns["author"] = *patch.Author
	}
	if patch.PublishedAt != nil {
		columns["published_at"] = patch.PublishedAt.UTC()
	}
	if patch.Category != nil {
		columns["category"] = string(*patch.Category)
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		columns["tags"] = tags
	}
	if patch.ReadTime != nil {
		columns["read_time"] = *patch.ReadTime
	}
	if patch.Featured != nil {
		columns["featured"] = *patch.Featured
	}
	if patch.ImageURL != nil {
		columns["image_url"] = nullableString(*patch.ImageURL)
	}
	return columns
}

func nullableString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
