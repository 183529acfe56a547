package console

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/eringen/buildsite/client"
	"github.com/eringen/buildsite/collection"
	"github.com/eringen/buildsite/content"
	"github.com/eringen/buildsite/listview"
	"github.com/eringen/buildsite/notify"
	"github.com/eringen/buildsite/poll"
)

// BlogPage is the public blog: published posts only.
type BlogPage struct {
	*List[content.BlogPost, content.BlogDraft]

	api PublicBlogAPI
	gw  notify.Gateway
}

func NewBlogPage(api PublicBlogAPI, gw notify.Gateway, opts ...collection.Option) *BlogPage {
	store := collection.New("blog posts", collection.Source[content.BlogPost, content.BlogDraft]{
		List: func(ctx context.Context) ([]content.BlogPost, error) {
			posts, err := api.List(ctx, client.BlogQuery{Status: content.BlogStatusPublished})
			if err != nil {
				return nil, err
			}
			out := posts[:0:0]
			for _, p := range posts {
				if p.Status == content.BlogStatusPublished {
					out = append(out, p)
				}
			}
			return out, nil
		},
	}, storeOptions(gw, opts)...)
	return &BlogPage{
		List: newList(store, listview.BlogFields, listview.BlogSearchFields, listview.BlogKeys,
			listview.SortState{Key: "date", Dir: listview.Descending}),
		api: api,
		gw:  gw,
	}
}

// Categories lists the categories of the loaded posts for the filter bar.
func (p *BlogPage) Categories() []string { return p.Distinct("category") }

// Featured returns the featured posts among the visible ones.
func (p *BlogPage) Featured() []content.BlogPost {
	var out []content.BlogPost
	for _, post := range p.Visible() {
		if post.Featured {
			out = append(out, post)
		}
	}
	return out
}

// Article is everything the detail page renders.
type Article struct {
	Post     content.BlogPost
	Related  []content.BlogPost
	Comments []content.Comment
}

// Open loads a post by id or slug with its related posts and comments.
// Related posts and comments are best effort.
func (p *BlogPage) Open(ctx context.Context, idOrSlug string) (Article, error) {
	post, err := p.api.Get(ctx, idOrSlug)
	if err != nil {
		notify.Outcome(p.gw, err, "")
		return Article{}, err
	}
	a := Article{Post: post}
	if a.Related, err = p.api.Related(ctx, post.ID); err != nil {
		slog.Warn("related posts unavailable", "post", post.ID, "err", err)
	}
	if a.Comments, err = p.api.Comments(ctx, post.ID); err != nil {
		slog.Warn("comments unavailable", "post", post.ID, "err", err)
	}
	return a, nil
}

// Comment validates and posts a reader comment.
func (p *BlogPage) Comment(ctx context.Context, postID string, d content.CommentDraft) (content.Comment, error) {
	if err := validate(d); err != nil {
		notify.Outcome(p.gw, err, "")
		return content.Comment{}, err
	}
	c, err := p.api.AddComment(ctx, postID, d)
	notify.Outcome(p.gw, err, "Thanks for your comment")
	return c, err
}

// Like records a like and returns the new total.
func (p *BlogPage) Like(ctx context.Context, postID string) (int, error) {
	n, err := p.api.Like(ctx, postID)
	if err != nil {
		notify.Outcome(p.gw, err, "")
	}
	return n, err
}

// CareersPage lists open positions and takes applications. While started,
// the listing refreshes on an interval.
type CareersPage struct {
	*List[content.Job, content.JobDraft]

	submit ApplicationSubmitter
	gw     notify.Gateway

	mu   sync.Mutex
	task *poll.Task
}

func NewCareersPage(jobs ActiveJobAPI, submit ApplicationSubmitter, gw notify.Gateway, opts ...collection.Option) *CareersPage {
	store := collection.New("jobs", collection.Source[content.Job, content.JobDraft]{
		List: jobs.Active,
	}, storeOptions(gw, opts)...)
	return &CareersPage{
		List: newList(store, listview.JobFields, listview.JobSearchFields, listview.JobKeys,
			listview.SortState{Key: "date", Dir: listview.Descending}),
		submit: submit,
		gw:     gw,
	}
}

// Start loads the jobs now and then every interval until ctx ends or Stop is
// called. Starting again replaces the previous loop.
func (c *CareersPage) Start(ctx context.Context, interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.task != nil {
		c.task.Stop()
	}
	c.task = poll.Every(ctx, interval, func(ctx context.Context) {
		// Failures are already announced by the store.
		_ = c.Store.Load(ctx)
	})
}

// Stop ends the refresh loop.
func (c *CareersPage) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.task != nil {
		c.task.Stop()
		c.task = nil
	}
}

// Apply submits an application for one of the listed jobs.
func (c *CareersPage) Apply(ctx context.Context, d content.ApplicationDraft) (content.Application, error) {
	if err := validate(d); err != nil {
		notify.Outcome(c.gw, err, "")
		return content.Application{}, err
	}
	app, err := c.submit.Submit(ctx, d)
	notify.Outcome(c.gw, err, "Application submitted. We will be in touch.")
	return app, err
}

// ContactPage sends the public contact form.
type ContactPage struct {
	api ContactSubmitter
	gw  notify.Gateway
}

func NewContactPage(api ContactSubmitter, gw notify.Gateway) *ContactPage {
	return &ContactPage{api: api, gw: gw}
}

func (c *ContactPage) Send(ctx context.Context, d content.ContactDraft) error {
	if err := validate(d); err != nil {
		notify.Outcome(c.gw, err, "")
		return err
	}
	_, err := c.api.Submit(ctx, d)
	notify.Outcome(c.gw, err, "Message sent. We will get back to you shortly.")
	return err
}
