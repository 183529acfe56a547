package buildsite

import "github.com/eringen/buildsite/content"

// The API serves the shared content types directly.
type (
	BlogPost       = content.BlogPost
	Job            = content.Job
	Application    = content.Application
	ContactMessage = content.ContactMessage
	Comment        = content.Comment
	Counts         = content.Counts
)

// BlogFilter narrows ListBlogs. Zero values match everything.
type BlogFilter struct {
	Category string
	Query    string
	Status   content.BlogStatus
	Limit    int
	Offset   int
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string { return content.FilterEmpty(vals) }
