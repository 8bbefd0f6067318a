package blog

import "strings"

// Category identifies one of the fixed blog sections.
type Category string

const (
	CategoryWebDevelopment Category = "web-development"
	CategoryJavaScript     Category = "javascript"
	CategoryReact          Category = "react"
	CategoryCSS            Category = "css"
	CategoryCareer         Category = "career"
	CategoryTutorials      Category = "tutorials"
)

var categoryLabels = map[Category]string{
	CategoryWebDevelopment: "Web Development",
	CategoryJavaScript:     "JavaScript",
	CategoryReact:          "React",
	CategoryCSS:            "CSS",
	CategoryCareer:         "Career",
	CategoryTutorials:      "Tutorials",
}

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryWebDevelopment,
		CategoryJavaScript,
		CategoryReact,
		CategoryCSS,
		CategoryCareer,
		CategoryTutorials,
	}
}

// Valid reports whether c is one of the predefined categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human readable name, falling back to the identifier.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// ParseCategory normalises raw and reports whether it names a known category.
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	return c, c.Valid()
}
