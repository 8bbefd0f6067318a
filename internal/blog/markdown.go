package blog

import (
	"bytes"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
)

const (
	wordsPerMinute    = 200
	DefaultExcerptLen = 160
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderMarkdown converts post content to HTML. Raw HTML in the source is escaped.
func RenderMarkdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return "", eris.Wrap(err, "rendering markdown")
	}
	return buf.String(), nil
}

// EstimateReadTime returns the reading time in whole minutes, never less than one.
func EstimateReadTime(content string) int {
	words := countWords(content)
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

func countWords(content string) int {
	rendered, err := RenderMarkdown(content)
	if err != nil {
		return len(strings.Fields(content))
	}

	words := 0
	tokenizer := html.NewTokenizer(strings.NewReader(rendered))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return words
		case html.TextToken:
			words += len(strings.Fields(string(tokenizer.Text())))
		}
	}
}

// DeriveExcerpt returns the first paragraph of the rendered content, cut on a
// word boundary so it fits in maxLen runes.
func DeriveExcerpt(content string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultExcerptLen
	}

	rendered, err := RenderMarkdown(content)
	if err != nil {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return ""
	}

	text := strings.Join(strings.Fields(doc.Find("p").First().Text()), " ")
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	cut := string(runes[:maxLen])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
