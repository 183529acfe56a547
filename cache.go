package buildsite

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eringen/buildsite/content"
)

// PostCache is an in-memory cache of published blog posts with TTL. View
// counters in cached posts may lag by up to one TTL.
type PostCache struct {
	mu         sync.RWMutex
	posts      []BlogPost
	categories []string
	fetched    time.Time
	ttl        time.Duration
	store      *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.categories = nil
	c.mu.Unlock()
}

func (c *PostCache) load() error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListBlogs(BlogFilter{Status: content.BlogStatusPublished})
	if err != nil {
		return err
	}
	seen := make(map[string]struct{})
	categories := []string{}
	for _, p := range posts {
		key := normalizeCategory(p.Category)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	c.posts = posts
	c.categories = categories
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached posts and categories after ensuring the cache is
// fresh. It tries a read lock first and only takes the write lock to reload.
func (c *PostCache) ensureLoaded() ([]BlogPost, []string, error) {
	c.mu.RLock()
	if c.valid() {
		posts, categories := c.posts, c.categories
		c.mu.RUnlock()
		return posts, categories, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.posts, c.categories, nil
}

// Published returns every published post, most recent first. The slice is
// shared; callers must not modify it.
func (c *PostCache) Published() ([]BlogPost, error) {
	posts, _, err := c.ensureLoaded()
	return posts, err
}

// Categories returns the distinct categories of published posts.
func (c *PostCache) Categories() ([]string, error) {
	_, categories, err := c.ensureLoaded()
	return categories, err
}

// Get returns a published post by id or slug.
func (c *PostCache) Get(idOrSlug string) (BlogPost, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return BlogPost{}, err
	}
	for _, p := range posts {
		if p.ID == idOrSlug || p.Slug == idOrSlug {
			return p, nil
		}
	}
	return BlogPost{}, NotFoundError{Resource: "blog post"}
}

func normalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
