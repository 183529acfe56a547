package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/buildsite/client"
	"github.com/eringen/buildsite/content"
)

type calls struct {
	creates, updates int
	updateErr        error
}

func (c *calls) panel() *Panel[content.JobDraft] {
	return &Panel[content.JobDraft]{
		Create: func(ctx context.Context, d content.JobDraft) error {
			c.creates++
			return nil
		},
		Update: func(ctx context.Context, id string, d content.JobDraft) error {
			c.updates++
			return c.updateErr
		},
	}
}

func TestMissingFieldNeverReachesTransport(t *testing.T) {
	c := &calls{}
	p := c.panel()
	p.OpenCreate(content.NewJobDraft())
	p.Edit(func(d *content.JobDraft) {
		d.Title = "Site Engineer"
		d.Location = "Manchester"
		d.Requirements = []string{"CSCS card"}
	})

	err := p.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, client.KindValidation, client.KindOf(err))
	assert.Equal(t, 0, c.creates)
	assert.Equal(t, Creating, p.State())
	assert.Contains(t, p.FieldErrors(), "department")
	assert.Equal(t, "Site Engineer", p.Draft().Title)
}

func TestSubmitClosesOnSuccess(t *testing.T) {
	c := &calls{}
	p := c.panel()
	p.OpenCreate(content.JobDraft{Title: "a", Department: "b", Location: "c", Requirements: []string{"d"}})

	require.NoError(t, p.Submit(context.Background()))
	assert.Equal(t, 1, c.creates)
	assert.Equal(t, Closed, p.State())
	assert.NoError(t, p.Err())
}

func TestFailedUpdatePreservesDraft(t *testing.T) {
	c := &calls{updateErr: &client.ValidationError{Status: 400, Message: "title too long", Fields: map[string]string{"title": "too long"}}}
	p := c.panel()
	job := content.Job{ID: "j1", Title: "Old", Department: "Ops", Location: "Leeds", Requirements: []string{"x"}}
	p.OpenEdit(job.ID, job.DraftOf())
	p.Edit(func(d *content.JobDraft) { d.Title = "New title" })

	err := p.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, c.updates)
	assert.Equal(t, Editing, p.State())
	assert.Equal(t, "j1", p.ID())
	assert.Equal(t, "New title", p.Draft().Title)
	assert.Equal(t, "too long", p.FieldErrors()["title"])

	var ve *client.ValidationError
	assert.True(t, errors.As(p.Err(), &ve))

	c.updateErr = nil
	require.NoError(t, p.Submit(context.Background()))
	assert.Equal(t, Closed, p.State())
}

func TestSubmitWhenClosed(t *testing.T) {
	p := (&calls{}).panel()
	assert.ErrorIs(t, p.Submit(context.Background()), ErrNotOpen)
}

func TestEditIgnoredWhenClosed(t *testing.T) {
	p := (&calls{}).panel()
	p.Edit(func(d *content.JobDraft) { d.Title = "x" })
	assert.Empty(t, p.Draft().Title)
}

func TestSlugField(t *testing.T) {
	var s SlugField
	s.TitleChanged("Hello, World!")
	assert.Equal(t, "hello-world", s.Value())

	s.TitleChanged("Hello, World! Again")
	assert.Equal(t, "hello-world-again", s.Value())

	s.SetManual("custom")
	s.TitleChanged("Something else")
	assert.Equal(t, "custom", s.Value())
	assert.True(t, s.Manual())

	s.SetManual("")
	s.TitleChanged("Still manual")
	assert.Empty(t, s.Value())
	assert.True(t, s.Manual())
}

func TestExistingSlugIsManual(t *testing.T) {
	s := NewSlugField("launch-day")
	s.TitleChanged("Launch day, revised")
	assert.Equal(t, "launch-day", s.Value())
}

func TestDeriveSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Tower Crane Safety", "tower-crane-safety"},
		{"  --Leading & trailing--  ", "leading-trailing"},
		{"2024: A Year in Review", "2024-a-year-in-review"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveSlug(tt.in), tt.in)
	}
}
