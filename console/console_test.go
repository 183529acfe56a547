package console

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/buildsite/client"
	"github.com/eringen/buildsite/content"
	"github.com/eringen/buildsite/editor"
	"github.com/eringen/buildsite/notify"
)

type fakeApplications struct {
	apps    []content.Application
	deletes int
}

func (f *fakeApplications) List(context.Context) ([]content.Application, error) {
	return append([]content.Application(nil), f.apps...), nil
}

func (f *fakeApplications) Delete(_ context.Context, id string) error {
	f.deletes++
	for i, a := range f.apps {
		if a.ID == id {
			f.apps = append(f.apps[:i], f.apps[i+1:]...)
			return nil
		}
	}
	return &client.NotFoundError{Resource: "application"}
}

func (f *fakeApplications) SetStatus(_ context.Context, id string, s content.ApplicationStatus) (content.Application, error) {
	for i := range f.apps {
		if f.apps[i].ID == id {
			f.apps[i].Status = s
			return f.apps[i], nil
		}
	}
	return content.Application{}, &client.NotFoundError{Resource: "application"}
}

func TestDeclinedDeleteKeepsApplication(t *testing.T) {
	api := &fakeApplications{apps: []content.Application{{ID: "a1", Name: "Sam Carter", Status: content.ApplicationStatusNew}}}
	gw := &notify.Recorder{Answer: false}
	a := NewApplicationAdmin(api, gw, nil)
	ctx := context.Background()
	require.NoError(t, a.Mount(ctx))

	err := a.Delete(ctx, "a1")
	assert.ErrorIs(t, err, notify.ErrConfirmationDeclined)
	assert.Equal(t, 0, api.deletes)
	_, ok := a.Store.Get("a1")
	assert.True(t, ok)
	require.Len(t, gw.Prompts, 1)
	assert.Contains(t, gw.Prompts[0].Message, "Sam Carter")
	assert.Empty(t, gw.Messages)
}

func TestConfirmedDeleteRemovesApplication(t *testing.T) {
	api := &fakeApplications{apps: []content.Application{{ID: "a1"}, {ID: "a2"}}}
	gw := &notify.Recorder{Answer: true}
	a := NewApplicationAdmin(api, gw, nil)
	ctx := context.Background()
	require.NoError(t, a.Mount(ctx))

	require.NoError(t, a.Delete(ctx, "a1"))
	assert.Equal(t, 1, api.deletes)
	_, ok := a.Store.Get("a1")
	assert.False(t, ok)
	msg, _ := gw.Last()
	assert.Equal(t, notify.Success, msg.Level)
}

func TestApplicationStatusIsPermissive(t *testing.T) {
	api := &fakeApplications{apps: []content.Application{{ID: "a1", Status: content.ApplicationStatusHired}}}
	a := NewApplicationAdmin(api, &notify.Recorder{}, nil)
	ctx := context.Background()
	require.NoError(t, a.Mount(ctx))

	require.NoError(t, a.SetStatus(ctx, "a1", content.ApplicationStatusNew))
	got, _ := a.Store.Get("a1")
	assert.Equal(t, content.ApplicationStatusNew, got.Status)

	err := a.SetStatus(ctx, "a1", "archived")
	assert.Equal(t, client.KindValidation, client.KindOf(err))
	assert.Equal(t, 1, a.CountByStatus()[content.ApplicationStatusNew])
}

func TestResumeLink(t *testing.T) {
	a := NewApplicationAdmin(&fakeApplications{}, &notify.Recorder{}, client.New("http://api.test").ResumeURL)
	assert.Empty(t, a.ResumeLink(content.Application{}))
	link := a.ResumeLink(content.Application{Resume: &content.Resume{Filename: "f1.pdf", OriginalName: "../../cv.pdf"}})
	assert.Equal(t, "http://api.test/uploads/resumes/f1.pdf", link)
}

type fakeContacts struct {
	msgs  []content.ContactMessage
	marks int
	fail  error
}

func (f *fakeContacts) List(context.Context) ([]content.ContactMessage, error) {
	return append([]content.ContactMessage(nil), f.msgs...), nil
}

func (f *fakeContacts) Delete(context.Context, string) error { return nil }

func (f *fakeContacts) MarkRead(_ context.Context, id string) (content.ContactMessage, error) {
	f.marks++
	if f.fail != nil {
		return content.ContactMessage{}, f.fail
	}
	for i := range f.msgs {
		if f.msgs[i].ID == id {
			f.msgs[i].Status = content.ContactStatusRead
			return f.msgs[i], nil
		}
	}
	return content.ContactMessage{}, &client.NotFoundError{}
}

func TestContactStatusOnlyMovesForward(t *testing.T) {
	api := &fakeContacts{msgs: []content.ContactMessage{{ID: "m1", Status: content.ContactStatusNew}, {ID: "m2", Status: content.ContactStatusNew}}}
	a := NewContactAdmin(api, &notify.Recorder{})
	ctx := context.Background()
	require.NoError(t, a.Mount(ctx))
	assert.Equal(t, 2, a.Unread())

	require.NoError(t, a.MarkRead(ctx, "m1"))
	require.NoError(t, a.MarkRead(ctx, "m1"))
	assert.Equal(t, 1, api.marks)

	m, err := a.Open(ctx, "m2")
	require.NoError(t, err)
	assert.Equal(t, content.ContactStatusRead, m.Status)
	assert.Equal(t, 0, a.Unread())
	for _, m := range a.Store.Snapshot() {
		assert.True(t, content.ContactStatusNew.CanTransition(m.Status))
		assert.False(t, m.Status.CanTransition(content.ContactStatusNew))
	}
}

func TestContactOpenAnnouncesFailedMarkRead(t *testing.T) {
	api := &fakeContacts{msgs: []content.ContactMessage{{ID: "m1", Status: content.ContactStatusNew}}}
	gw := &notify.Recorder{}
	a := NewContactAdmin(api, gw)
	ctx := context.Background()
	require.NoError(t, a.Mount(ctx))

	api.fail = &client.NetworkError{Op: "PATCH /contact/m1/read", Status: 503}
	m, err := a.Open(ctx, "m1")
	require.Error(t, err)
	assert.Equal(t, content.ContactStatusNew, m.Status)
	require.Len(t, gw.Messages, 1)
	assert.Equal(t, notify.Error, gw.Messages[0].Level)
	assert.Equal(t, 1, a.Unread())
}

func TestBlogAdminClearedSlugStaysManual(t *testing.T) {
	a := NewBlogAdmin(&fakeBlogs{}, &notify.Recorder{})

	a.New()
	a.SetTitle("First title")
	assert.Equal(t, "first-title", a.Editor.Draft().Slug)

	a.SetSlug("")
	a.SetTitle("Second title")
	assert.Empty(t, a.Editor.Draft().Slug)

	a.New()
	a.SetTitle("Fresh post")
	assert.Equal(t, "fresh-post", a.Editor.Draft().Slug)
}

func TestNilGatewayDoesNotPanic(t *testing.T) {
	api := &fakeContacts{msgs: []content.ContactMessage{{ID: "m1", Status: content.ContactStatusNew}}}
	a := NewContactAdmin(api, nil)
	ctx := context.Background()
	require.NoError(t, a.Mount(ctx))

	assert.NotPanics(t, func() { require.NoError(t, a.MarkRead(ctx, "m1")) })
	assert.NotPanics(t, func() {
		assert.ErrorIs(t, a.Delete(ctx, "m1"), notify.ErrConfirmationDeclined)
	})
	_, ok := a.Store.Get("m1")
	assert.True(t, ok)

	blogs := NewBlogAdmin(&fakeBlogs{}, nil)
	blogs.New()
	assert.NotPanics(t, func() {
		url, err := blogs.AttachImage(ctx, "x.jpg", io.MultiReader())
		require.NoError(t, err)
		assert.Equal(t, url, blogs.Editor.Draft().FeaturedImage)
	})
}

type fakeJobs struct {
	mu       sync.Mutex
	jobs     []content.Job
	creates  int
	deletes  int
	cascades int
	actives  atomic.Int32
}

func (f *fakeJobs) List(context.Context) ([]content.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]content.Job(nil), f.jobs...), nil
}

func (f *fakeJobs) Active(ctx context.Context) ([]content.Job, error) {
	f.actives.Add(1)
	return f.List(ctx)
}

func (f *fakeJobs) Create(_ context.Context, d content.JobDraft) (content.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	j := content.Job{ID: "new", Title: d.Title, Requirements: d.Requirements, Status: d.Status}
	f.jobs = append(f.jobs, j)
	return j, nil
}

func (f *fakeJobs) Update(_ context.Context, id string, d content.JobDraft) (content.Job, error) {
	return content.Job{}, &client.ValidationError{Status: 400, Message: "title already used", Fields: map[string]string{"title": "already used"}}
}

func (f *fakeJobs) Delete(context.Context, string) error {
	f.deletes++
	return nil
}

func (f *fakeJobs) DeleteWithApplications(context.Context, string) error {
	f.cascades++
	return nil
}

func (f *fakeJobs) SetStatus(_ context.Context, id string, s content.JobStatus) (content.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			f.jobs[i].Status = s
			return f.jobs[i], nil
		}
	}
	return content.Job{}, &client.NotFoundError{}
}

func TestJobToggle(t *testing.T) {
	api := &fakeJobs{jobs: []content.Job{{ID: "j1", Status: content.JobStatusActive}}}
	a := NewJobAdmin(api, &notify.Recorder{})
	ctx := context.Background()
	require.NoError(t, a.Mount(ctx))

	require.NoError(t, a.Toggle(ctx, "j1"))
	got, _ := a.Store.Get("j1")
	assert.Equal(t, content.JobStatusDraft, got.Status)

	require.NoError(t, a.Toggle(ctx, "j1"))
	got, _ = a.Store.Get("j1")
	assert.Equal(t, content.JobStatusActive, got.Status)
}

func TestJobWithApplicationsDeletesByCascade(t *testing.T) {
	api := &fakeJobs{jobs: []content.Job{{ID: "j1", Title: "Estimator", ApplicationCount: 3}, {ID: "j2"}}}
	gw := &notify.Recorder{Answer: true}
	a := NewJobAdmin(api, gw)
	ctx := context.Background()
	require.NoError(t, a.Mount(ctx))

	require.NoError(t, a.Delete(ctx, "j1"))
	require.NoError(t, a.Delete(ctx, "j2"))
	assert.Equal(t, 1, api.cascades)
	assert.Equal(t, 1, api.deletes)
	assert.Contains(t, gw.Prompts[0].Message, "3 application(s)")
	assert.Empty(t, a.Store.Snapshot())
}

func TestJobEditorGatesAndPreservesDraft(t *testing.T) {
	api := &fakeJobs{jobs: []content.Job{{ID: "j1", Title: "Estimator", Department: "Commercial", Location: "York", Requirements: []string{"NEC3"}}}}
	gw := &notify.Recorder{}
	a := NewJobAdmin(api, gw)
	ctx := context.Background()
	require.NoError(t, a.Mount(ctx))

	a.New()
	a.Editor.Edit(func(d *content.JobDraft) { d.Title = "Planner" })
	require.Error(t, a.Save(ctx))
	assert.Equal(t, 0, api.creates)

	a.Editor.Edit(func(d *content.JobDraft) {
		d.Department = "Planning"
		d.Location = "Leeds"
		d.Requirements = []string{"", "Asta Powerproject"}
	})
	require.NoError(t, a.Save(ctx))
	assert.Equal(t, 1, api.creates)
	created, ok := a.Store.Get("new")
	require.True(t, ok)
	assert.Equal(t, []string{"Asta Powerproject"}, created.Requirements)

	require.NoError(t, a.Edit("j1"))
	a.Editor.Edit(func(d *content.JobDraft) { d.Title = "Senior Estimator" })
	err := a.Save(ctx)
	require.Error(t, err)
	assert.Equal(t, editor.Editing, a.Editor.State())
	assert.Equal(t, "Senior Estimator", a.Editor.Draft().Title)
	assert.Equal(t, "already used", a.Editor.FieldErrors()["title"])
	msg, _ := gw.Last()
	assert.Equal(t, notify.Error, msg.Level)
}

func TestRequirementRows(t *testing.T) {
	a := NewJobAdmin(&fakeJobs{}, &notify.Recorder{})
	a.New()
	a.AddRequirement()
	assert.Len(t, a.Editor.Draft().Requirements, 2)
	a.RemoveRequirement(0)
	a.RemoveRequirement(0)
	assert.Len(t, a.Editor.Draft().Requirements, 1)
}

type fakeBlogs struct {
	posts   []content.BlogPost
	creates int
}

func (f *fakeBlogs) List(_ context.Context, q client.BlogQuery) ([]content.BlogPost, error) {
	return append([]content.BlogPost(nil), f.posts...), nil
}

func (f *fakeBlogs) Create(_ context.Context, d content.BlogDraft) (content.BlogPost, error) {
	f.creates++
	p := content.BlogPost{ID: "b-new", Slug: d.Slug, Title: d.Title, Status: d.Status}
	f.posts = append(f.posts, p)
	return p, nil
}

func (f *fakeBlogs) Update(_ context.Context, id string, d content.BlogDraft) (content.BlogPost, error) {
	for i := range f.posts {
		if f.posts[i].ID == id {
			f.posts[i].Title, f.posts[i].Status = d.Title, d.Status
			return f.posts[i], nil
		}
	}
	return content.BlogPost{}, &client.NotFoundError{}
}

func (f *fakeBlogs) Delete(context.Context, string) error { return nil }

func (f *fakeBlogs) UploadImage(context.Context, string, io.Reader) (string, error) {
	return "/uploads/images/x.jpg", nil
}

func (f *fakeBlogs) Get(_ context.Context, idOrSlug string) (content.BlogPost, error) {
	for _, p := range f.posts {
		if p.ID == idOrSlug || p.Slug == idOrSlug {
			return p, nil
		}
	}
	return content.BlogPost{}, &client.NotFoundError{Resource: "blog post"}
}

func (f *fakeBlogs) Related(context.Context, string) ([]content.BlogPost, error) { return nil, nil }

func (f *fakeBlogs) Comments(context.Context, string) ([]content.Comment, error) {
	return []content.Comment{{ID: "c1", Rating: 5}}, nil
}

func (f *fakeBlogs) AddComment(_ context.Context, id string, d content.CommentDraft) (content.Comment, error) {
	return content.Comment{ID: "c2", BlogID: id, Name: d.Name, Rating: d.Rating, Text: d.Text}, nil
}

func (f *fakeBlogs) Like(context.Context, string) (int, error) { return 1, nil }

func TestBlogAdminSlugFollowsTitle(t *testing.T) {
	api := &fakeBlogs{}
	a := NewBlogAdmin(api, &notify.Recorder{})
	ctx := context.Background()

	a.New()
	a.SetTitle("Hello, World!  Foo")
	assert.Equal(t, "hello-world-foo", a.Editor.Draft().Slug)

	a.SetSlug("my-post")
	a.SetTitle("Another title")
	assert.Equal(t, "my-post", a.Editor.Draft().Slug)
	assert.Equal(t, "Another title", a.Editor.Draft().Title)

	require.Error(t, a.Save(ctx))
	assert.Equal(t, 0, api.creates)

	a.Editor.Edit(func(d *content.BlogDraft) {
		d.Excerpt, d.Content, d.Category = "e", "c", "Projects"
	})
	_, err := a.AttachImage(ctx, "site.png", nil)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/images/x.jpg", a.Editor.Draft().FeaturedImage)

	require.NoError(t, a.Save(ctx))
	p, ok := a.Store.Get("b-new")
	require.True(t, ok)
	assert.Equal(t, "my-post", p.Slug)
}

func TestBlogAdminPublish(t *testing.T) {
	api := &fakeBlogs{posts: []content.BlogPost{{ID: "b1", Title: "Draft", Status: content.BlogStatusDraft}}}
	a := NewBlogAdmin(api, &notify.Recorder{})
	ctx := context.Background()
	require.NoError(t, a.Mount(ctx))

	require.NoError(t, a.SetStatus(ctx, "b1", content.BlogStatusPublished))
	got, _ := a.Store.Get("b1")
	assert.Equal(t, content.BlogStatusPublished, got.Status)
}

func TestBlogPageShowsPublishedOnly(t *testing.T) {
	api := &fakeBlogs{posts: []content.BlogPost{
		{ID: "1", Title: "Crane safety checklist", Category: "Safety Standards", Status: content.BlogStatusPublished},
		{ID: "2", Title: "Crane hire costs", Category: "Safety Standards", Status: content.BlogStatusDraft},
		{ID: "3", Title: "Working at height", Category: "Safety Standards", Status: content.BlogStatusPublished},
		{ID: "4", Title: "Tower crane erection", Category: "Projects", Status: content.BlogStatusPublished, Slug: "tower-crane"},
	}}
	gw := &notify.Recorder{}
	p := NewBlogPage(api, gw)
	ctx := context.Background()
	require.NoError(t, p.Mount(ctx))

	p.Filter("category", "Safety Standards")
	p.Search("crane")
	got := p.Visible()
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.ElementsMatch(t, []string{"Safety Standards", "Projects"}, p.Categories())

	art, err := p.Open(ctx, "tower-crane")
	require.NoError(t, err)
	assert.Equal(t, "4", art.Post.ID)
	assert.Len(t, art.Comments, 1)

	_, err = p.Comment(ctx, "4", content.CommentDraft{Name: "Jo", Text: "Great", Rating: 9})
	assert.Equal(t, client.KindValidation, client.KindOf(err))

	c, err := p.Comment(ctx, "4", content.CommentDraft{Name: "Jo", Text: "Great", Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, "4", c.BlogID)
}

type fakeSubmitter struct{ calls int }

func (f *fakeSubmitter) Submit(_ context.Context, d content.ApplicationDraft) (content.Application, error) {
	f.calls++
	return content.Application{ID: "a1", JobID: d.JobID, Name: d.Name, Status: content.ApplicationStatusNew}, nil
}

func TestCareersPagePollsUntilStopped(t *testing.T) {
	jobs := &fakeJobs{jobs: []content.Job{{ID: "j1", Status: content.JobStatusActive}}}
	page := NewCareersPage(jobs, &fakeSubmitter{}, &notify.Recorder{})
	page.Start(context.Background(), 5*time.Millisecond)

	require.Eventually(t, func() bool { return jobs.actives.Load() >= 3 }, time.Second, time.Millisecond)
	page.Stop()
	n := jobs.actives.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, jobs.actives.Load())
	assert.Len(t, page.Store.Snapshot(), 1)
}

func TestCareersPageZeroIntervalLoadsOnce(t *testing.T) {
	jobs := &fakeJobs{jobs: []content.Job{{ID: "j1", Status: content.JobStatusActive}}}
	page := NewCareersPage(jobs, &fakeSubmitter{}, &notify.Recorder{})
	page.Start(context.Background(), 0)
	defer page.Stop()

	require.Eventually(t, func() bool { return jobs.actives.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), jobs.actives.Load())
}

func TestApplyValidatesBeforeSubmitting(t *testing.T) {
	sub := &fakeSubmitter{}
	gw := &notify.Recorder{}
	page := NewCareersPage(&fakeJobs{}, sub, gw)
	ctx := context.Background()

	_, err := page.Apply(ctx, content.ApplicationDraft{JobID: "j1", Name: "Sam"})
	require.Error(t, err)
	assert.Equal(t, 0, sub.calls)

	app, err := page.Apply(ctx, content.ApplicationDraft{JobID: "j1", Name: "Sam", Email: "sam@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "j1", app.JobID)
	msg, _ := gw.Last()
	assert.Equal(t, notify.Success, msg.Level)
}

type fakeContactSubmitter struct{ calls int }

func (f *fakeContactSubmitter) Submit(_ context.Context, d content.ContactDraft) (content.ContactMessage, error) {
	f.calls++
	return content.ContactMessage{ID: "m1", Name: d.Name, Status: content.ContactStatusNew}, nil
}

func TestContactPageSend(t *testing.T) {
	api := &fakeContactSubmitter{}
	page := NewContactPage(api, &notify.Recorder{})
	ctx := context.Background()

	assert.Error(t, page.Send(ctx, content.ContactDraft{Name: "Al"}))
	assert.Equal(t, 0, api.calls)
	assert.NoError(t, page.Send(ctx, content.ContactDraft{Name: "Al", Email: "al@example.com", Message: "Quote please"}))
	assert.Equal(t, 1, api.calls)
}

type countsFunc func(context.Context) (content.Counts, error)

func (f countsFunc) Counts(ctx context.Context) (content.Counts, error) { return f(ctx) }

func TestDashboardKeepsCountsOnFailure(t *testing.T) {
	fail := false
	api := countsFunc(func(context.Context) (content.Counts, error) {
		if fail {
			return content.Counts{}, &client.NetworkError{Op: "GET /dashboard/counts", Status: 502}
		}
		return content.Counts{Blogs: 4, UnreadContacts: 2}, nil
	})
	gw := &notify.Recorder{}
	d := NewDashboard(api, gw)
	ctx := context.Background()

	require.NoError(t, d.Refresh(ctx))
	fail = true
	require.Error(t, d.Refresh(ctx))
	assert.Equal(t, 4, d.Counts().Blogs)
	assert.Error(t, d.Err())
	msg, _ := gw.Last()
	assert.Equal(t, notify.Error, msg.Level)
}
