package templates

// DefaultFooterNote is shown in the shared layout when a page does not supply custom text.
const DefaultFooterNote = "Posts are written in Markdown and published from the admin editor."

// Layout carries the values every page shares.
type Layout struct {
	Title        string
	Description  string
	SiteName     string
	CanonicalURL string
	FooterNote   string
	IsAdmin      bool
}

// PostSummary is a post as it appears in lists and on its own page.
type PostSummary struct {
	Title         string
	URL           string
	Excerpt       string
	CategoryLabel string
	CategoryURL   string
	Published     string
	PublishedISO  string
	ReadTime      int
	Featured      bool
	ImageURL      string
	Tags          []string
}

// HomePageData contains dynamic values rendered on the landing page.
type HomePageData struct {
	Layout
	Intro    string
	Featured []PostSummary
	Recent   []PostSummary
}

// CategoryLink is one entry of the category filter.
type CategoryLink struct {
	Label  string
	URL    string
	Active bool
}

// BlogIndexData bundles template data for the blog listing.
type BlogIndexData struct {
	Layout
	Heading    string
	Categories []CategoryLink
	Posts      []PostSummary
}

// PostPageData contains the dynamic values for a single post.
type PostPageData struct {
	Layout
	Post    PostSummary
	Author  string
	HTML    string
	Related []PostSummary
}

// ErrorPageData holds information for rendering an error view.
type ErrorPageData struct {
	Layout
	StatusLabel string
	Message     string
}

// LoginPageData drives the admin login form.
type LoginPageData struct {
	Layout
	Failed   bool
	Disabled bool
}

// AdminRow is one post in the admin table.
type AdminRow struct {
	ID        string
	Title     string
	Slug      string
	Category  string
	Published string
	Featured  bool
}

// AdminPageData drives the admin dashboard.
type AdminPageData struct {
	Layout
	Tier        string
	ContactMode string
	Posts       []AdminRow
}
