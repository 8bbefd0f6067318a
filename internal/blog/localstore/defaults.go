package localstore

import (
	"time"

	"portfolio/app/internal/blog"
)

// DefaultPosts returns the built-in seed content. Each call returns fresh copies.
func DefaultPosts() []blog.Post {
	return []blog.Post{
		{
			ID:      "1",
			Title:   "Building Responsive Layouts with CSS Grid",
			Slug:    "building-responsive-layouts-with-css-grid",
			Excerpt: "CSS Grid turns two-dimensional layout from a fight into a description. Here is how I build responsive page shells with it.",
			Content: "## Why Grid\n\n" +
				"Flexbox is great for one axis. Page layouts usually need two.\n\n" +
				"```css\n" +
				".layout {\n" +
				"  display: grid;\n" +
				"  grid-template-columns: repeat(auto-fit, minmax(16rem, 1fr));\n" +
				"  gap: 1.5rem;\n" +
				"}\n" +
				"```\n\n" +
				"`auto-fit` with `minmax` gives you a responsive grid without a single media query.\n\n" +
				"## Named areas\n\n" +
				"Named template areas keep the markup readable when the layout changes between breakpoints.\n",
			Author:      "Portfolio Author",
			PublishedAt: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
			Category:    blog.CategoryCSS,
			Tags:        []string{"css", "layout", "responsive"},
			ReadTime:    5,
			Featured:    true,
			ImageURL:    "https://images.unsplash.com/photo-1507721999472-8ed4421c4af2",
		},
		{
			ID:      "2",
			Title:   "Understanding React Hooks",
			Slug:    "understanding-react-hooks",
			Excerpt: "A practical tour of useState, useEffect and custom hooks, with the mistakes I made learning them.",
			Content: "## State without classes\n\n" +
				"Hooks let function components hold state and side effects.\n\n" +
				"```jsx\n" +
				"function Counter() {\n" +
				"  const [count, setCount] = useState(0);\n" +
				"  return <button onClick={() => setCount(count + 1)}>{count}</button>;\n" +
				"}\n" +
				"```\n\n" +
				"## Effects and cleanup\n\n" +
				"Every effect that subscribes to something should return a cleanup function.\n",
			Author:      "Portfolio Author",
			PublishedAt: time.Date(2024, 2, 3, 14, 30, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 2, 3, 14, 30, 0, 0, time.UTC),
			Category:    blog.CategoryReact,
			Tags:        []string{"react", "hooks", "javascript"},
			ReadTime:    7,
			Featured:    true,
			ImageURL:    "https://images.unsplash.com/photo-1633356122544-f134324a6cee",
		},
		{
			ID:      "3",
			Title:   "Modern JavaScript Features You Should Be Using",
			Slug:    "modern-javascript-features-you-should-be-using",
			Excerpt: "Optional chaining, nullish coalescing and top-level await quietly removed a lot of boilerplate from my code.",
			Content: "## Optional chaining\n\n" +
				"```js\n" +
				"const city = user?.address?.city ?? \"Unknown\";\n" +
				"```\n\n" +
				"## Array helpers\n\n" +
				"`Array.prototype.at` and `structuredClone` are small additions that make everyday code clearer.\n",
			Author:      "Portfolio Author",
			PublishedAt: time.Date(2024, 3, 10, 8, 15, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 3, 10, 8, 15, 0, 0, time.UTC),
			Category:    blog.CategoryJavaScript,
			Tags:        []string{"javascript", "es2023"},
			ReadTime:    4,
			ImageURL:    "https://images.unsplash.com/photo-1579468118864-1b9ea3c0db4a",
		},
		{
			ID:      "4",
			Title:   "From Side Projects to a Frontend Career",
			Slug:    "from-side-projects-to-a-frontend-career",
			Excerpt: "What shipping small projects in public taught me about getting hired as a frontend developer.",
			Content: "## Ship small things\n\n" +
				"A finished weekend project says more than an unfinished ambitious one.\n\n" +
				"## Write about it\n\n" +
				"Explaining what you built is how you find out whether you understood it.\n",
			Author:      "Portfolio Author",
			PublishedAt: time.Date(2024, 4, 22, 17, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 4, 22, 17, 0, 0, 0, time.UTC),
			Category:    blog.CategoryCareer,
			Tags:        []string{"career", "learning"},
			ReadTime:    3,
		},
	}
}
