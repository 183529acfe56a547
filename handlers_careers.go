package buildsite

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eringen/buildsite/content"
)

var resumeExtensions = map[string]bool{".pdf": true, ".doc": true, ".docx": true}

func (a *App) handleActiveJobs(c echo.Context) error {
	jobs, err := a.Store.ListJobs(true)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, jobs)
}

func (a *App) handleListJobs(c echo.Context) error {
	jobs, err := a.Store.ListJobs(false)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, jobs)
}

func (a *App) handleCreateJob(c echo.Context) error {
	var d content.JobDraft
	if err := c.Bind(&d); err != nil {
		return BadRequest(c, "Invalid request body", nil)
	}
	if missing := d.Missing(); len(missing) > 0 {
		return Fail(c, missing)
	}
	j, err := a.Store.CreateJob(d)
	if err != nil {
		return Fail(c, err)
	}
	return Created(c, j, "Job created")
}

func (a *App) handleUpdateJob(c echo.Context) error {
	var d content.JobDraft
	if err := c.Bind(&d); err != nil {
		return BadRequest(c, "Invalid request body", nil)
	}
	if missing := d.Missing(); len(missing) > 0 {
		return Fail(c, missing)
	}
	j, err := a.Store.UpdateJob(c.Param("id"), d)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, j)
}

type jobStatusRequest struct {
	Status content.JobStatus `json:"status"`
}

func (a *App) handleJobStatus(c echo.Context) error {
	var req jobStatusRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest(c, "Invalid request body", nil)
	}
	if !req.Status.Valid() {
		return BadRequest(c, "Validation failed", map[string]string{"status": fmt.Sprintf("unknown status %q", req.Status)})
	}
	j, err := a.Store.SetJobStatus(c.Param("id"), req.Status)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, j)
}

// handleDeleteJob refuses to delete a job with applications unless
// ?cascade=true, in which case the applications and their resumes go too.
func (a *App) handleDeleteJob(c echo.Context) error {
	cascade, _ := strconv.ParseBool(c.QueryParam("cascade"))
	resumes, err := a.Store.DeleteJob(c.Param("id"), cascade)
	if err != nil {
		return Fail(c, err)
	}
	for _, f := range resumes {
		a.removeResume(f)
	}
	if len(resumes) > 0 {
		c.Logger().Infof("deleted job %s with %d resume(s)", c.Param("id"), len(resumes))
	}
	return Done(c, "Job deleted")
}

// handleSubmitApplication accepts the public multipart application form. The
// resume is optional; when present it is stored under a generated name and
// the client's file name is kept for display only.
func (a *App) handleSubmitApplication(c echo.Context) error {
	d := content.ApplicationDraft{
		JobID:       strings.TrimSpace(c.FormValue("jobId")),
		Name:        c.FormValue("name"),
		Email:       c.FormValue("email"),
		Phone:       c.FormValue("phone"),
		CoverLetter: c.FormValue("coverLetter"),
	}
	if missing := d.Missing(); len(missing) > 0 {
		return Fail(c, missing)
	}

	var resume *content.Resume
	if fh, err := c.FormFile("resume"); err == nil {
		r, err := a.saveResume(fh)
		if err != nil {
			return Fail(c, err)
		}
		resume = r
	}

	app, err := a.Store.CreateApplication(d, resume)
	if err != nil {
		if resume != nil {
			a.removeResume(resume.Filename)
		}
		return Fail(c, err)
	}
	return Created(c, app, "Application submitted")
}

func (a *App) saveResume(fh *multipart.FileHeader) (*content.Resume, error) {
	original := filepath.Base(strings.ReplaceAll(fh.Filename, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(original))
	if !resumeExtensions[ext] {
		return nil, content.FieldErrors{{Field: "resume", Message: "must be a PDF or Word document"}}
	}
	if fh.Size > maxResumeSize {
		return nil, content.FieldErrors{{Field: "resume", Message: "must be 5MB or smaller"}}
	}
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	name := uuid.NewString() + ext
	dst, err := os.OpenFile(filepath.Join(a.resumesDir(), name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create resume: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return nil, fmt.Errorf("write resume: %w", err)
	}
	if err := dst.Close(); err != nil {
		return nil, fmt.Errorf("write resume: %w", err)
	}
	return &content.Resume{Filename: name, OriginalName: original}, nil
}

func (a *App) removeResume(filename string) {
	if filename == "" || filename != filepath.Base(filename) {
		return
	}
	_ = os.Remove(filepath.Join(a.resumesDir(), filename))
}

func (a *App) handleListApplications(c echo.Context) error {
	apps, err := a.Store.ListApplications()
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, apps)
}

type applicationStatusRequest struct {
	Status content.ApplicationStatus `json:"status"`
}

func (a *App) handleApplicationStatus(c echo.Context) error {
	var req applicationStatusRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest(c, "Invalid request body", nil)
	}
	if !req.Status.Valid() {
		return BadRequest(c, "Validation failed", map[string]string{"status": fmt.Sprintf("unknown status %q", req.Status)})
	}
	app, err := a.Store.SetApplicationStatus(c.Param("id"), req.Status)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, app)
}

func (a *App) handleDeleteApplication(c echo.Context) error {
	app, err := a.Store.DeleteApplication(c.Param("id"))
	if err != nil {
		return Fail(c, err)
	}
	if app.Resume != nil {
		a.removeResume(app.Resume.Filename)
	}
	return Done(c, "Application deleted")
}

// handleResumeDownload serves a stored resume by its generated name. Only
// names known to the store are served, under the applicant's original name.
func (a *App) handleResumeDownload(c echo.Context) error {
	name := c.Param("filename")
	if name == "" || name != filepath.Base(name) {
		return NotFound(c, "resume not found")
	}
	app, err := a.Store.ResumeOwner(name)
	if err != nil {
		return Fail(c, err)
	}
	return c.Attachment(filepath.Join(a.resumesDir(), name), app.Resume.OriginalName)
}

func (a *App) handleSubmitContact(c echo.Context) error {
	var d content.ContactDraft
	if err := c.Bind(&d); err != nil {
		return BadRequest(c, "Invalid request body", nil)
	}
	if missing := d.Missing(); len(missing) > 0 {
		return Fail(c, missing)
	}
	m, err := a.Store.CreateContact(d)
	if err != nil {
		return Fail(c, err)
	}
	return Created(c, m, "Message sent")
}

func (a *App) handleListContacts(c echo.Context) error {
	msgs, err := a.Store.ListContacts()
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, msgs)
}

func (a *App) handleContactRead(c echo.Context) error {
	m, err := a.Store.MarkContactRead(c.Param("id"))
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, m)
}

func (a *App) handleDeleteContact(c echo.Context) error {
	if err := a.Store.DeleteContact(c.Param("id")); err != nil {
		return Fail(c, err)
	}
	return Done(c, "Message deleted")
}

func (a *App) handleCounts(c echo.Context) error {
	counts, err := a.Store.Counts()
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, counts)
}
