package blog

import (
	"regexp"
	"strings"
)

var (
	slugStrip   = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-+[a-z0-9]+)*$`)
)

// Slugify derives a URL slug from a title: lower-case it, drop anything that is
// not a letter, digit, whitespace or hyphen, then turn whitespace runs into hyphens.
// It does not check the result against existing slugs.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugSpaces.ReplaceAllString(strings.TrimSpace(slug), "-")
	return slug
}
