package content

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"
)

// FieldError names a draft field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// FieldErrors is a set of field-level validation failures.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Map returns the errors keyed by field name.
func (fe FieldErrors) Map() map[string]string {
	m := make(map[string]string, len(fe))
	for _, e := range fe {
		m[e.Field] = e.Message
	}
	return m
}

// Draft is an editable, not yet persisted entity body.
type Draft interface {
	// Missing returns the required fields that are empty.
	Missing() FieldErrors
}

func required(errs FieldErrors, field, value string) FieldErrors {
	if strings.TrimSpace(value) == "" {
		errs = append(errs, FieldError{Field: field, Message: "is required"})
	}
	return errs
}

// BlogDraft is the writable part of a BlogPost.
type BlogDraft struct {
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Excerpt       string     `json:"excerpt"`
	Content       string     `json:"content"`
	Category      string     `json:"category"`
	Tags          []string   `json:"tags"`
	Author        string     `json:"author"`
	FeaturedImage string     `json:"featuredImage,omitempty"`
	Status        BlogStatus `json:"status"`
	Featured      bool       `json:"featured"`
}

func (d BlogDraft) Missing() FieldErrors {
	var errs FieldErrors
	errs = required(errs, "title", d.Title)
	errs = required(errs, "excerpt", d.Excerpt)
	errs = required(errs, "content", d.Content)
	errs = required(errs, "category", d.Category)
	if d.Status != "" && !d.Status.Valid() {
		errs = append(errs, FieldError{Field: "status", Message: fmt.Sprintf("unknown status %q", d.Status)})
	}
	return errs
}

// NewBlogDraft returns the empty template used when creating a post.
func NewBlogDraft() BlogDraft {
	return BlogDraft{Status: BlogStatusDraft, Tags: []string{}}
}

// DraftOf copies the editable fields of p.
func (p BlogPost) DraftOf() BlogDraft {
	return BlogDraft{
		Slug:          p.Slug,
		Title:         p.Title,
		Excerpt:       p.Excerpt,
		Content:       p.Content,
		Category:      p.Category,
		Tags:          append([]string(nil), p.Tags...),
		Author:        p.Author,
		FeaturedImage: p.FeaturedImage,
		Status:        p.Status,
		Featured:      p.Featured,
	}
}

// JobDraft is the writable part of a Job.
type JobDraft struct {
	Title        string    `json:"title"`
	Department   string    `json:"department"`
	Location     string    `json:"location"`
	Type         string    `json:"type"`
	Salary       string    `json:"salary"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	Status       JobStatus `json:"status"`
}

func (d JobDraft) Missing() FieldErrors {
	var errs FieldErrors
	errs = required(errs, "title", d.Title)
	errs = required(errs, "department", d.Department)
	errs = required(errs, "location", d.Location)
	if len(FilterEmpty(d.Requirements)) == 0 {
		errs = append(errs, FieldError{Field: "requirements", Message: "at least one requirement is required"})
	}
	if d.Status != "" && !d.Status.Valid() {
		errs = append(errs, FieldError{Field: "status", Message: fmt.Sprintf("unknown status %q", d.Status)})
	}
	return errs
}

// NewJobDraft returns the empty template used when creating a posting.
func NewJobDraft() JobDraft {
	return JobDraft{Type: "Full-time", Status: JobStatusActive, Requirements: []string{""}}
}

// DraftOf copies the editable fields of j.
func (j Job) DraftOf() JobDraft {
	return JobDraft{
		Title:        j.Title,
		Department:   j.Department,
		Location:     j.Location,
		Type:         j.Type,
		Salary:       j.Salary,
		Description:  j.Description,
		Requirements: append([]string(nil), j.Requirements...),
		Status:       j.Status,
	}
}

// ApplicationDraft is a public job application. Resume is optional.
type ApplicationDraft struct {
	JobID       string
	Name        string
	Email       string
	Phone       string
	CoverLetter string

	ResumeName string
	Resume     io.Reader
}

func (d ApplicationDraft) Missing() FieldErrors {
	var errs FieldErrors
	errs = required(errs, "jobId", d.JobID)
	errs = required(errs, "name", d.Name)
	errs = required(errs, "email", d.Email)
	if d.Resume != nil && strings.TrimSpace(d.ResumeName) == "" {
		errs = append(errs, FieldError{Field: "resume", Message: "file name is required"})
	}
	return errs
}

// WriteMultipart encodes the draft as multipart form fields. The resume, if
// any, is written under the "resume" file field.
func (d ApplicationDraft) WriteMultipart(w *multipart.Writer) error {
	fields := []struct{ name, value string }{
		{"jobId", d.JobID},
		{"name", d.Name},
		{"email", d.Email},
		{"phone", d.Phone},
		{"coverLetter", d.CoverLetter},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("write field %s: %w", f.name, err)
		}
	}
	if d.Resume == nil {
		return nil
	}
	part, err := w.CreateFormFile("resume", d.ResumeName)
	if err != nil {
		return fmt.Errorf("create resume part: %w", err)
	}
	if _, err := io.Copy(part, d.Resume); err != nil {
		return fmt.Errorf("copy resume: %w", err)
	}
	return nil
}

// ContactDraft is a public contact form submission.
type ContactDraft struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (d ContactDraft) Missing() FieldErrors {
	var errs FieldErrors
	errs = required(errs, "name", d.Name)
	errs = required(errs, "email", d.Email)
	errs = required(errs, "message", d.Message)
	return errs
}

// CommentDraft is a reader comment with a 1..5 rating.
type CommentDraft struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

func (d CommentDraft) Missing() FieldErrors {
	var errs FieldErrors
	errs = required(errs, "name", d.Name)
	errs = required(errs, "text", d.Text)
	if d.Rating < 1 || d.Rating > 5 {
		errs = append(errs, FieldError{Field: "rating", Message: "must be between 1 and 5"})
	}
	return errs
}
