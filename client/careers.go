package client

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"

	"github.com/eringen/buildsite/content"
)

// Jobs groups the job posting endpoints.
type Jobs struct{ c *Client }

func (c *Client) Jobs() Jobs { return Jobs{c} }

// List returns every posting regardless of status (admin).
func (j Jobs) List(ctx context.Context) ([]content.Job, error) {
	var out []content.Job
	err := j.c.doJSON(ctx, http.MethodGet, "/jobs", nil, &out)
	return out, err
}

// Active returns the postings visible on the public careers page.
func (j Jobs) Active(ctx context.Context) ([]content.Job, error) {
	var out []content.Job
	err := j.c.doJSON(ctx, http.MethodGet, "/jobs/active", nil, &out)
	return out, err
}

func (j Jobs) Create(ctx context.Context, d content.JobDraft) (content.Job, error) {
	var out content.Job
	err := j.c.doJSON(ctx, http.MethodPost, "/jobs", d, &out)
	return out, err
}

func (j Jobs) Update(ctx context.Context, id string, d content.JobDraft) (content.Job, error) {
	var out content.Job
	err := j.c.doJSON(ctx, http.MethodPut, "/jobs/"+escape(id), d, &out)
	return out, err
}

// Delete removes a posting. The server refuses while applications reference it.
func (j Jobs) Delete(ctx context.Context, id string) error {
	return j.c.doJSON(ctx, http.MethodDelete, "/jobs/"+escape(id), nil, nil)
}

// DeleteWithApplications removes a posting and every application for it.
func (j Jobs) DeleteWithApplications(ctx context.Context, id string) error {
	return j.c.doJSON(ctx, http.MethodDelete, "/jobs/"+escape(id)+"?cascade=true", nil, nil)
}

func (j Jobs) SetStatus(ctx context.Context, id string, status content.JobStatus) (content.Job, error) {
	var out content.Job
	err := j.c.doJSON(ctx, http.MethodPatch, "/jobs/"+escape(id)+"/status", map[string]content.JobStatus{"status": status}, &out)
	return out, err
}

// Applications groups the job application endpoints.
type Applications struct{ c *Client }

func (c *Client) Applications() Applications { return Applications{c} }

func (a Applications) List(ctx context.Context) ([]content.Application, error) {
	var out []content.Application
	err := a.c.doJSON(ctx, http.MethodGet, "/applications", nil, &out)
	return out, err
}

// Submit posts a public application as multipart form data.
func (a Applications) Submit(ctx context.Context, d content.ApplicationDraft) (content.Application, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := d.WriteMultipart(w); err != nil {
		return content.Application{}, err
	}
	if err := w.Close(); err != nil {
		return content.Application{}, err
	}
	var out content.Application
	err := a.c.do(ctx, http.MethodPost, "/applications", &buf, w.FormDataContentType(), &out)
	return out, err
}

func (a Applications) Delete(ctx context.Context, id string) error {
	return a.c.doJSON(ctx, http.MethodDelete, "/applications/"+escape(id), nil, nil)
}

func (a Applications) SetStatus(ctx context.Context, id string, status content.ApplicationStatus) (content.Application, error) {
	var out content.Application
	err := a.c.doJSON(ctx, http.MethodPatch, "/applications/"+escape(id)+"/status", map[string]content.ApplicationStatus{"status": status}, &out)
	return out, err
}

// Contacts groups the contact form endpoints.
type Contacts struct{ c *Client }

func (c *Client) Contacts() Contacts { return Contacts{c} }

func (m Contacts) List(ctx context.Context) ([]content.ContactMessage, error) {
	var out []content.ContactMessage
	err := m.c.doJSON(ctx, http.MethodGet, "/contact", nil, &out)
	return out, err
}

func (m Contacts) Submit(ctx context.Context, d content.ContactDraft) (content.ContactMessage, error) {
	var out content.ContactMessage
	err := m.c.doJSON(ctx, http.MethodPost, "/contact", d, &out)
	return out, err
}

func (m Contacts) Delete(ctx context.Context, id string) error {
	return m.c.doJSON(ctx, http.MethodDelete, "/contact/"+escape(id), nil, nil)
}

// MarkRead moves a message to the read state. It never moves back.
func (m Contacts) MarkRead(ctx context.Context, id string) (content.ContactMessage, error) {
	var out content.ContactMessage
	err := m.c.doJSON(ctx, http.MethodPatch, "/contact/"+escape(id)+"/read", nil, &out)
	return out, err
}

// Counts fetches the admin overview totals.
func (c *Client) Counts(ctx context.Context) (content.Counts, error) {
	var out content.Counts
	err := c.doJSON(ctx, http.MethodGet, "/dashboard/counts", nil, &out)
	return out, err
}
