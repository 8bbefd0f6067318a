package blog

import (
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"

	"portfolio/app/internal/validation"
)

// ErrNotFound indicates no post matched the lookup.
var ErrNotFound = eris.New("blog post not found")

// Post is the canonical in-app representation of a blog post.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,max=200"`
	Slug        string    `json:"slug" validate:"required,slug"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content" validate:"required"`
	Author      string    `json:"author" validate:"required"`
	PublishedAt time.Time `json:"publishedAt" validate:"required"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Category    Category  `json:"category" validate:"required,category"`
	Tags        []string  `json:"tags"`
	ReadTime    int       `json:"readTime" validate:"gt=0"`
	Featured    bool      `json:"featured"`
	ImageURL    string    `json:"imageUrl" validate:"omitempty,url"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validation.New()
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

var postMessages = validation.Messages{
	"title.required":       "Title is required",
	"slug.required":        "Slug is required",
	"slug.slug":            "Slug may only contain lowercase letters, numbers and hyphens",
	"content.required":     "Content is required",
	"author.required":      "Author is required",
	"publishedAt.required": "Published date is required",
	"category.required":    "Category is required",
	"category.category":    "Category must be one of the predefined categories",
	"readTime.gt":          "Read time must be a positive number of minutes",
	"imageUrl.url":         "Image URL must be a valid URL",
}

// Validate checks the post invariants and returns validation.Errors on failure.
func Validate(post Post) error {
	return validation.Translate(validate.Struct(post), postMessages)
}

// Clone returns a copy that shares no slices with post.
func (p Post) Clone() Post {
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p
}

// PostPatch carries a partial update. Nil fields are left untouched.
type PostPatch struct {
	Title       *string    `json:"title,omitempty"`
	Slug        *string    `json:"slug,omitempty"`
	Excerpt     *string    `json:"excerpt,omitempty"`
	Content     *string    `json:"content,omitempty"`
	Author      *string    `json:"author,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Category    *Category  `json:"category,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
	ReadTime    *int       `json:"readTime,omitempty"`
	Featured    *bool      `json:"featured,omitempty"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
}

// Apply copies every set field onto post.
func (p PostPatch) Apply(post *Post) {
	if post == nil {
		return
	}
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Slug != nil {
		post.Slug = *p.Slug
	}
	if p.Excerpt != nil {
		post.Excerpt = *p.Excerpt
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.Author != nil {
		post.Author = *p.Author
	}
	if p.PublishedAt != nil {
		post.PublishedAt = *p.PublishedAt
	}
	if p.Category != nil {
		post.Category = *p.Category
	}
	if p.Tags != nil {
		post.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.ReadTime != nil {
		post.ReadTime = *p.ReadTime
	}
	if p.Featured != nil {
		post.Featured = *p.Featured
	}
	if p.ImageURL != nil {
		post.ImageURL = *p.ImageURL
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p PostPatch) IsEmpty() bool {
	return p == PostPatch{}
}

// PatchFrom builds a patch that sets every editable field from post.
func PatchFrom(post Post) PostPatch {
	tags := append([]string(nil), post.Tags...)
	return PostPatch{
		Title:       &post.Title,
		Slug:        &post.Slug,
		Excerpt:     &post.Excerpt,
		Content:     &post.Content,
		Author:      &post.Author,
		PublishedAt: &post.PublishedAt,
		Category:    &post.Category,
		Tags:        &tags,
		ReadTime:    &post.ReadTime,
		Featured:    &post.Featured,
		ImageURL:    &post.ImageURL,
	}
}

// SortByPublishedDesc orders posts newest first, keeping ties in their original order.
func SortByPublishedDesc(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})
}

// Recent returns at most limit posts, newest first. posts is not modified.
func Recent(posts []Post, limit int) []Post {
	if limit <= 0 {
		return []Post{}
	}

	sorted := make([]Post, len(posts))
	copy(sorted, posts)
	SortByPublishedDesc(sorted)

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// FindBySlug performs a linear scan for slug.
func FindBySlug(posts []Post, slug string) (Post, bool) {
	trimmed := strings.TrimSpace(slug)
	for _, post := range posts {
		if post.Slug == trimmed {
			return post, true
		}
	}
	return Post{}, false
}

// Featured returns the featured posts, newest first.
func Featured(posts []Post) []Post {
	out := make([]Post, 0)
	for _, post := range posts {
		if post.Featured {
			out = append(out, post)
		}
	}
	SortByPublishedDesc(out)
	return out
}

// InCategory returns the posts in category, newest first.
func InCategory(posts []Post, category Category) []Post {
	out := make([]Post, 0)
	for _, post := range posts {
		if post.Category == category {
			out = append(out, post)
		}
	}
	SortByPublishedDesc(out)
	return out
}
