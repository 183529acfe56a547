package console

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/eringen/buildsite/client"
	"github.com/eringen/buildsite/collection"
	"github.com/eringen/buildsite/content"
	"github.com/eringen/buildsite/editor"
	"github.com/eringen/buildsite/listview"
	"github.com/eringen/buildsite/notify"
)

func storeOptions(gw notify.Gateway, opts []collection.Option) []collection.Option {
	return append([]collection.Option{collection.WithGateway(gw)}, opts...)
}

// remove is the confirm-gated delete shared by every admin screen.
func remove[T content.Entity, D any](ctx context.Context, gw notify.Gateway, s *collection.Store[T, D], p notify.Prompt, id, done string, fn func(context.Context, string) error) error {
	err := notify.Guard(ctx, gw, p, func(ctx context.Context) error {
		return s.RemoveWith(ctx, id, fn)
	})
	notify.Outcome(gw, err, done)
	return err
}

// BlogAdmin manages blog posts.
type BlogAdmin struct {
	*List[content.BlogPost, content.BlogDraft]
	Editor *editor.Panel[content.BlogDraft]

	api BlogAPI
	gw  notify.Gateway

	mu   sync.Mutex
	slug editor.SlugField
}

func NewBlogAdmin(api BlogAPI, gw notify.Gateway, opts ...collection.Option) *BlogAdmin {
	store := collection.New("blog posts", collection.Source[content.BlogPost, content.BlogDraft]{
		List: func(ctx context.Context) ([]content.BlogPost, error) {
			return api.List(ctx, client.BlogQuery{})
		},
		Create: api.Create,
		Update: api.Update,
		Delete: api.Delete,
	}, storeOptions(gw, opts)...)
	a := &BlogAdmin{
		List: newList(store, listview.BlogFields, listview.BlogSearchFields, listview.BlogKeys,
			listview.SortState{Key: "date", Dir: listview.Descending}),
		api: api,
		gw:  gw,
	}
	a.Editor = &editor.Panel[content.BlogDraft]{
		Create: func(ctx context.Context, d content.BlogDraft) error {
			_, err := store.Create(ctx, d)
			return err
		},
		Update: func(ctx context.Context, id string, d content.BlogDraft) error {
			_, err := store.Update(ctx, id, d)
			return err
		},
	}
	return a
}

// New opens the editor on an empty post.
func (a *BlogAdmin) New() {
	a.mu.Lock()
	a.slug = editor.SlugField{}
	a.mu.Unlock()
	a.Editor.OpenCreate(content.NewBlogDraft())
}

// Edit opens the editor on post id.
func (a *BlogAdmin) Edit(id string) error {
	p, ok := a.Store.Get(id)
	if !ok {
		return &client.NotFoundError{Resource: "blog post"}
	}
	a.mu.Lock()
	a.slug = editor.NewSlugField(p.Slug)
	a.mu.Unlock()
	a.Editor.OpenEdit(id, p.DraftOf())
	return nil
}

// SetTitle updates the title and, until the slug is edited by hand, the slug.
func (a *BlogAdmin) SetTitle(title string) {
	a.mu.Lock()
	a.slug.TitleChanged(title)
	slug := a.slug.Value()
	a.mu.Unlock()
	a.Editor.Edit(func(d *content.BlogDraft) {
		d.Title = title
		d.Slug = slug
	})
}

// SetSlug records a hand-edited slug.
func (a *BlogAdmin) SetSlug(slug string) {
	a.mu.Lock()
	a.slug.SetManual(slug)
	a.mu.Unlock()
	a.Editor.Edit(func(d *content.BlogDraft) { d.Slug = slug })
}

// Save submits the open editor.
func (a *BlogAdmin) Save(ctx context.Context) error {
	creating := a.Editor.State() == editor.Creating
	err := a.Editor.Submit(ctx)
	msg := "Blog post updated"
	if creating {
		msg = "Blog post created"
	}
	notify.Outcome(a.gw, err, msg)
	return err
}

// AttachImage uploads a featured image and sets it on the open draft.
func (a *BlogAdmin) AttachImage(ctx context.Context, name string, r io.Reader) (string, error) {
	url, err := a.api.UploadImage(ctx, name, r)
	if err != nil {
		notify.Outcome(a.gw, err, "")
		return "", err
	}
	a.Editor.Edit(func(d *content.BlogDraft) { d.FeaturedImage = url })
	notify.Outcome(a.gw, nil, "Image uploaded")
	return url, nil
}

// SetStatus publishes, archives or unpublishes post id.
func (a *BlogAdmin) SetStatus(ctx context.Context, id string, status content.BlogStatus) error {
	p, ok := a.Store.Get(id)
	if !ok {
		return &client.NotFoundError{Resource: "blog post"}
	}
	if !status.Valid() {
		return &client.ValidationError{Message: fmt.Sprintf("unknown status %q", status)}
	}
	d := p.DraftOf()
	d.Status = status
	_, err := a.Store.Update(ctx, id, d)
	notify.Outcome(a.gw, err, "Blog post "+string(status))
	return err
}

func (a *BlogAdmin) Delete(ctx context.Context, id string) error {
	p := notify.Prompt{Title: "Delete blog post", Message: "This post and its comments will be removed permanently.", Confirm: "Delete"}
	if post, ok := a.Store.Get(id); ok {
		p.Message = fmt.Sprintf("%q and its comments will be removed permanently.", post.Title)
	}
	return remove(ctx, a.gw, a.Store, p, id, "Blog post deleted", a.api.Delete)
}

// JobAdmin manages job postings.
type JobAdmin struct {
	*List[content.Job, content.JobDraft]
	Editor *editor.Panel[content.JobDraft]

	api JobAPI
	gw  notify.Gateway
}

func NewJobAdmin(api JobAPI, gw notify.Gateway, opts ...collection.Option) *JobAdmin {
	store := collection.New("jobs", collection.Source[content.Job, content.JobDraft]{
		List:   api.List,
		Create: api.Create,
		Update: api.Update,
		Delete: api.Delete,
	}, storeOptions(gw, opts)...)
	a := &JobAdmin{
		List: newList(store, listview.JobFields, listview.JobSearchFields, listview.JobKeys,
			listview.SortState{Key: "date", Dir: listview.Descending}),
		api: api,
		gw:  gw,
	}
	a.Editor = &editor.Panel[content.JobDraft]{
		Create: func(ctx context.Context, d content.JobDraft) error {
			d.Requirements = content.FilterEmpty(d.Requirements)
			_, err := store.Create(ctx, d)
			return err
		},
		Update: func(ctx context.Context, id string, d content.JobDraft) error {
			d.Requirements = content.FilterEmpty(d.Requirements)
			_, err := store.Update(ctx, id, d)
			return err
		},
	}
	return a
}

func (a *JobAdmin) New() { a.Editor.OpenCreate(content.NewJobDraft()) }

func (a *JobAdmin) Edit(id string) error {
	j, ok := a.Store.Get(id)
	if !ok {
		return &client.NotFoundError{Resource: "job"}
	}
	d := j.DraftOf()
	if len(d.Requirements) == 0 {
		d.Requirements = []string{""}
	}
	a.Editor.OpenEdit(id, d)
	return nil
}

// AddRequirement appends an empty requirement row to the open draft.
func (a *JobAdmin) AddRequirement() {
	a.Editor.Edit(func(d *content.JobDraft) { d.Requirements = append(d.Requirements, "") })
}

// RemoveRequirement drops row i, keeping at least one row.
func (a *JobAdmin) RemoveRequirement(i int) {
	a.Editor.Edit(func(d *content.JobDraft) {
		if i < 0 || i >= len(d.Requirements) || len(d.Requirements) == 1 {
			return
		}
		d.Requirements = append(d.Requirements[:i:i], d.Requirements[i+1:]...)
	})
}

func (a *JobAdmin) Save(ctx context.Context) error {
	creating := a.Editor.State() == editor.Creating
	err := a.Editor.Submit(ctx)
	msg := "Job updated"
	if creating {
		msg = "Job created"
	}
	notify.Outcome(a.gw, err, msg)
	return err
}

// Toggle flips job id between active and draft.
func (a *JobAdmin) Toggle(ctx context.Context, id string) error {
	j, ok := a.Store.Get(id)
	if !ok {
		return &client.NotFoundError{Resource: "job"}
	}
	next := j.Status.Toggle()
	_, err := a.Store.Patch(ctx, id, func(ctx context.Context) (content.Job, error) {
		return a.api.SetStatus(ctx, id, next)
	})
	notify.Outcome(a.gw, err, "Job is now "+string(next))
	return err
}

// Delete removes job id. A job with applications is only removed together
// with them, after a prompt that says so.
func (a *JobAdmin) Delete(ctx context.Context, id string) error {
	p := notify.Prompt{Title: "Delete job", Message: "This job posting will be removed permanently.", Confirm: "Delete"}
	fn := a.api.Delete
	if j, ok := a.Store.Get(id); ok && j.ApplicationCount > 0 {
		p.Message = fmt.Sprintf("%q has %d application(s). Deleting it also deletes them.", j.Title, j.ApplicationCount)
		fn = a.api.DeleteWithApplications
	}
	return remove(ctx, a.gw, a.Store, p, id, "Job deleted", fn)
}

// ApplicationAdmin reviews job applications.
type ApplicationAdmin struct {
	*List[content.Application, content.ApplicationDraft]

	api       ApplicationAPI
	gw        notify.Gateway
	resumeURL func(filename string) string
}

// NewApplicationAdmin builds the screen. resumeURL maps a stored resume
// filename to its download URL; it may be nil.
func NewApplicationAdmin(api ApplicationAPI, gw notify.Gateway, resumeURL func(string) string, opts ...collection.Option) *ApplicationAdmin {
	store := collection.New("applications", collection.Source[content.Application, content.ApplicationDraft]{
		List:   api.List,
		Delete: api.Delete,
	}, storeOptions(gw, opts)...)
	return &ApplicationAdmin{
		List: newList(store, listview.ApplicationFields, listview.ApplicationSearchFields, listview.ApplicationKeys,
			listview.SortState{Key: "date", Dir: listview.Descending}),
		api:       api,
		gw:        gw,
		resumeURL: resumeURL,
	}
}

// SetStatus moves application id to status. Any valid status may follow any
// other.
func (a *ApplicationAdmin) SetStatus(ctx context.Context, id string, status content.ApplicationStatus) error {
	cur, ok := a.Store.Get(id)
	if !ok {
		return &client.NotFoundError{Resource: "application"}
	}
	if !cur.Status.CanTransition(status) {
		err := &client.ValidationError{Message: fmt.Sprintf("cannot move application to %q", status)}
		notify.Outcome(a.gw, err, "")
		return err
	}
	_, err := a.Store.Patch(ctx, id, func(ctx context.Context) (content.Application, error) {
		return a.api.SetStatus(ctx, id, status)
	})
	notify.Outcome(a.gw, err, "Application marked "+string(status))
	return err
}

func (a *ApplicationAdmin) Delete(ctx context.Context, id string) error {
	p := notify.Prompt{Title: "Delete application", Message: "This application and its resume will be removed permanently.", Confirm: "Delete"}
	if app, ok := a.Store.Get(id); ok {
		p.Message = fmt.Sprintf("The application from %s will be removed permanently.", app.Name)
	}
	return remove(ctx, a.gw, a.Store, p, id, "Application deleted", a.api.Delete)
}

// ResumeLink returns the download URL of the application's resume, or "".
func (a *ApplicationAdmin) ResumeLink(app content.Application) string {
	if app.Resume == nil || app.Resume.Filename == "" || a.resumeURL == nil {
		return ""
	}
	return a.resumeURL(app.Resume.Filename)
}

// CountByStatus tallies the snapshot per status.
func (a *ApplicationAdmin) CountByStatus() map[content.ApplicationStatus]int {
	out := make(map[content.ApplicationStatus]int, len(content.ApplicationStatuses))
	for _, app := range a.Store.Snapshot() {
		out[app.Status]++
	}
	return out
}

// ContactAdmin reads and clears contact form messages.
type ContactAdmin struct {
	*List[content.ContactMessage, content.ContactDraft]

	api ContactAPI
	gw  notify.Gateway
}

func NewContactAdmin(api ContactAPI, gw notify.Gateway, opts ...collection.Option) *ContactAdmin {
	store := collection.New("messages", collection.Source[content.ContactMessage, content.ContactDraft]{
		List:   api.List,
		Delete: api.Delete,
	}, storeOptions(gw, opts)...)
	return &ContactAdmin{
		List: newList(store, listview.ContactFields, listview.ContactSearchFields, listview.ContactKeys,
			listview.SortState{Key: "date", Dir: listview.Descending}),
		api: api,
		gw:  gw,
	}
}

// Open returns message id, marking it read on first view.
func (a *ContactAdmin) Open(ctx context.Context, id string) (content.ContactMessage, error) {
	m, ok := a.Store.Get(id)
	if !ok {
		return content.ContactMessage{}, &client.NotFoundError{Resource: "message"}
	}
	if m.Status == content.ContactStatusRead {
		return m, nil
	}
	if err := a.markRead(ctx, id); err != nil {
		notify.Outcome(a.gw, err, "")
		return m, err
	}
	m, _ = a.Store.Get(id)
	return m, nil
}

// MarkRead moves message id from new to read. A message that is already read
// is left alone.
func (a *ContactAdmin) MarkRead(ctx context.Context, id string) error {
	m, ok := a.Store.Get(id)
	if !ok {
		return &client.NotFoundError{Resource: "message"}
	}
	if m.Status == content.ContactStatusRead {
		return nil
	}
	err := a.markRead(ctx, id)
	notify.Outcome(a.gw, err, "Message marked as read")
	return err
}

func (a *ContactAdmin) markRead(ctx context.Context, id string) error {
	_, err := a.Store.Patch(ctx, id, func(ctx context.Context) (content.ContactMessage, error) {
		return a.api.MarkRead(ctx, id)
	})
	return err
}

// Unread counts messages still marked new.
func (a *ContactAdmin) Unread() int {
	n := 0
	for _, m := range a.Store.Snapshot() {
		if m.Status == content.ContactStatusNew {
			n++
		}
	}
	return n
}

func (a *ContactAdmin) Delete(ctx context.Context, id string) error {
	p := notify.Prompt{Title: "Delete message", Message: "This message will be removed permanently.", Confirm: "Delete"}
	return remove(ctx, a.gw, a.Store, p, id, "Message deleted", a.api.Delete)
}

// Dashboard shows aggregate counts.
type Dashboard struct {
	api CountsAPI
	gw  notify.Gateway

	mu     sync.Mutex
	counts content.Counts
	err    error
}

func NewDashboard(api CountsAPI, gw notify.Gateway) *Dashboard {
	return &Dashboard{api: api, gw: gw}
}

// Refresh fetches the counts. On failure the previous counts are kept.
func (d *Dashboard) Refresh(ctx context.Context) error {
	c, err := d.api.Counts(ctx)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.err = err
		if d.gw != nil {
			d.gw.Notify(notify.Message{Level: notify.Error, Text: "Could not load dashboard. Please try again."})
		}
		return err
	}
	d.counts, d.err = c, nil
	return nil
}

func (d *Dashboard) Counts() content.Counts {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts
}

func (d *Dashboard) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}
