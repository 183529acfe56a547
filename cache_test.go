package buildsite

import (
	"errors"
	"testing"
	"time"

	"github.com/eringen/buildsite/content"
)

func TestPostCacheServesPublishedOnly(t *testing.T) {
	s := setupTestStore(t)
	s.CreateBlog(blogDraft("Crane Safety", "Safety", content.BlogStatusPublished))
	s.CreateBlog(blogDraft("Tower Cranes", " safety ", content.BlogStatusPublished))
	s.CreateBlog(blogDraft("Estimating", "Business", content.BlogStatusPublished))
	s.CreateBlog(blogDraft("Hidden", "Secret", content.BlogStatusDraft))

	c := NewPostCache(s, time.Minute)
	posts, err := c.Published()
	if err != nil {
		t.Fatalf("Published failed: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("got %d posts, want 3", len(posts))
	}
	categories, _ := c.Categories()
	if len(categories) != 2 {
		t.Errorf("categories = %q, want two distinct", categories)
	}
	if _, err := c.Get("hidden"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(draft) err = %v, want ErrNotFound", err)
	}
	if p, err := c.Get("crane-safety"); err != nil || p.Title != "Crane Safety" {
		t.Errorf("Get(slug) = %+v, %v", p, err)
	}
}

func TestPostCacheInvalidate(t *testing.T) {
	s := setupTestStore(t)
	c := NewPostCache(s, time.Hour)

	posts, _ := c.Published()
	if len(posts) != 0 {
		t.Fatalf("got %d posts, want 0", len(posts))
	}

	s.CreateBlog(blogDraft("Crane Safety", "Safety", content.BlogStatusPublished))
	posts, _ = c.Published()
	if len(posts) != 0 {
		t.Fatalf("cache should serve the stale snapshot until invalidated")
	}

	c.Invalidate()
	posts, _ = c.Published()
	if len(posts) != 1 {
		t.Fatalf("got %d posts after Invalidate, want 1", len(posts))
	}
}

func TestPostCacheExpires(t *testing.T) {
	s := setupTestStore(t)
	c := NewPostCache(s, 50*time.Millisecond)
	c.Published()

	s.CreateBlog(blogDraft("Crane Safety", "Safety", content.BlogStatusPublished))
	time.Sleep(80 * time.Millisecond)

	posts, _ := c.Published()
	if len(posts) != 1 {
		t.Fatalf("got %d posts after TTL, want 1", len(posts))
	}
}
