package buildsite

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/buildsite/content"
)

func (a *App) handleListBlogs(c echo.Context) error {
	f := BlogFilter{
		Category: c.QueryParam("category"),
		Query:    c.QueryParam("q"),
		Limit:    queryInt(c, "limit"),
		Offset:   queryInt(c, "offset"),
	}
	if a.isAdmin(c) {
		if s := content.BlogStatus(c.QueryParam("status")); s != "" {
			if !s.Valid() {
				return BadRequest(c, "Validation failed", map[string]string{"status": "unknown status"})
			}
			f.Status = s
		}
		posts, err := a.Store.ListBlogs(f)
		if err != nil {
			return Fail(c, err)
		}
		return OK(c, posts)
	}

	f.Status = content.BlogStatusPublished
	if f == (BlogFilter{Status: content.BlogStatusPublished}) {
		posts, err := a.Cache.Published()
		if err != nil {
			return Fail(c, err)
		}
		return OK(c, posts)
	}
	posts, err := a.Store.ListBlogs(f)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, posts)
}

func (a *App) handleBlogCategories(c echo.Context) error {
	categories, err := a.Cache.Categories()
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, categories)
}

// visibleBlog resolves id or slug to a post the caller may see. Admins read
// the store and see every status; everyone else reads the published cache.
func (a *App) visibleBlog(c echo.Context, idOrSlug string) (BlogPost, error) {
	if a.isAdmin(c) {
		return a.Store.GetBlog(idOrSlug)
	}
	return a.Cache.Get(idOrSlug)
}

func (a *App) handleGetBlog(c echo.Context) error {
	p, err := a.visibleBlog(c, c.Param("id"))
	if err != nil {
		return Fail(c, err)
	}
	if !a.isAdmin(c) {
		if err := a.Store.IncrementViews(p.ID); err != nil {
			c.Logger().Warnf("increment views %s: %v", p.ID, err)
		} else {
			p.Views++
		}
	}
	return OK(c, p)
}

func (a *App) handleRelatedBlogs(c echo.Context) error {
	related, err := a.Store.RelatedBlogs(c.Param("id"), relatedLimit)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, related)
}

func (a *App) handleCreateBlog(c echo.Context) error {
	var d content.BlogDraft
	if err := c.Bind(&d); err != nil {
		return BadRequest(c, "Invalid request body", nil)
	}
	if missing := d.Missing(); len(missing) > 0 {
		return Fail(c, missing)
	}
	p, err := a.Store.CreateBlog(d)
	if err != nil {
		return Fail(c, err)
	}
	a.Cache.Invalidate()
	return Created(c, p, "Blog post created")
}

func (a *App) handleUpdateBlog(c echo.Context) error {
	var d content.BlogDraft
	if err := c.Bind(&d); err != nil {
		return BadRequest(c, "Invalid request body", nil)
	}
	if missing := d.Missing(); len(missing) > 0 {
		return Fail(c, missing)
	}
	p, err := a.Store.UpdateBlog(c.Param("id"), d)
	if err != nil {
		return Fail(c, err)
	}
	a.Cache.Invalidate()
	return OK(c, p)
}

func (a *App) handleDeleteBlog(c echo.Context) error {
	p, err := a.Store.GetBlog(c.Param("id"))
	if err != nil {
		return Fail(c, err)
	}
	if err := a.Store.DeleteBlog(p.ID); err != nil {
		return Fail(c, err)
	}
	a.Cache.Invalidate()
	a.likeLimiter.Forget(p.ID)
	a.removeImage(p.FeaturedImage)
	return Done(c, "Blog post deleted")
}

func (a *App) handleListComments(c echo.Context) error {
	p, err := a.visibleBlog(c, c.Param("id"))
	if err != nil {
		return Fail(c, err)
	}
	comments, err := a.Store.ListComments(p.ID)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, comments)
}

func (a *App) handleAddComment(c echo.Context) error {
	p, err := a.visibleBlog(c, c.Param("id"))
	if err != nil {
		return Fail(c, err)
	}
	var d content.CommentDraft
	if err := c.Bind(&d); err != nil {
		return BadRequest(c, "Invalid request body", nil)
	}
	if missing := d.Missing(); len(missing) > 0 {
		return Fail(c, missing)
	}
	cm, err := a.Store.AddComment(p.ID, d)
	if err != nil {
		return Fail(c, err)
	}
	a.Cache.Invalidate()
	return Created(c, cm, "Comment added")
}

type likeResponse struct {
	Likes   int  `json:"likes"`
	Counted bool `json:"counted"`
}

// handleLike counts at most one like per client IP per post within the like
// window. Repeats answer with the current total.
func (a *App) handleLike(c echo.Context) error {
	p, err := a.visibleBlog(c, c.Param("id"))
	if err != nil {
		return Fail(c, err)
	}
	if !a.likeLimiter.Allow(c.RealIP(), p.ID) {
		likes, err := a.Store.Likes(p.ID)
		if err != nil {
			return Fail(c, err)
		}
		return OK(c, likeResponse{Likes: likes})
	}
	likes, err := a.Store.AddLike(p.ID)
	if err != nil {
		return Fail(c, err)
	}
	a.Cache.Invalidate()
	return OK(c, likeResponse{Likes: likes, Counted: true})
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.Published()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.Published()
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

const relatedLimit = 3

// queryInt parses a non-negative integer query parameter; anything else is 0.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.QueryParam(name)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
