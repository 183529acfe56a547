package editor

import "github.com/eringen/buildsite/content"

// DeriveSlug turns a title into a URL slug.
func DeriveSlug(title string) string { return content.Slugify(title) }

// SlugField tracks a slug that follows the title until edited by hand.
type SlugField struct {
	value  string
	manual bool
}

// NewSlugField starts from an existing slug. A non-empty slug, as on an
// existing post, counts as manual so retitling does not move the URL.
func NewSlugField(existing string) SlugField {
	return SlugField{value: existing, manual: existing != ""}
}

// TitleChanged re-derives the slug unless it was set manually.
func (s *SlugField) TitleChanged(title string) {
	if !s.manual {
		s.value = DeriveSlug(title)
	}
}

// SetManual stores a hand-edited slug and stops auto-derivation for the rest
// of the editing session, even when the slug is cleared.
func (s *SlugField) SetManual(slug string) {
	s.value = slug
	s.manual = true
}

func (s SlugField) Value() string { return s.value }

func (s SlugField) Manual() bool { return s.manual }
