package buildsite

import (
	"encoding/json"
	"strings"

	"github.com/eringen/buildsite/content"
)

const jobColumns = `j.id, j.title, j.department, j.location, j.type, j.salary, j.description, j.requirements,
    j.status, j.created_at, j.updated_at,
    (SELECT COUNT(*) FROM applications a WHERE a.job_id = j.id)`

func scanJob(row scanner) (Job, error) {
	var (
		j                              Job
		reqs, status, created, updated string
	)
	err := row.Scan(&j.ID, &j.Title, &j.Department, &j.Location, &j.Type, &j.Salary, &j.Description,
		&reqs, &status, &created, &updated, &j.ApplicationCount)
	if err != nil {
		return Job{}, err
	}
	if err := json.Unmarshal([]byte(reqs), &j.Requirements); err != nil || j.Requirements == nil {
		j.Requirements = []string{}
	}
	j.Status = content.JobStatus(status)
	j.CreatedAt = parseTime(created)
	j.UpdatedAt = parseTime(updated)
	return j, nil
}

// ListJobs returns jobs newest first. activeOnly limits the list to open
// positions for the public careers page.
func (s *Store) ListJobs(activeOnly bool) ([]Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs j`
	if activeOnly {
		query += ` WHERE j.status = 'active'`
	}
	query += ` ORDER BY j.created_at DESC`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	jobs := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *Store) GetJob(id string) (Job, error) {
	j, err := scanJob(s.db.QueryRow(`SELECT `+jobColumns+` FROM jobs j WHERE j.id = ?`, id))
	return j, notFound(err, "job")
}

func encodeRequirements(reqs []string) string {
	b, err := json.Marshal(FilterEmpty(reqs))
	if err != nil || string(b) == "null" {
		return "[]"
	}
	return string(b)
}

func (s *Store) CreateJob(d content.JobDraft) (Job, error) {
	status := d.Status
	if status == "" {
		status = content.JobStatusActive
	}
	id, now := newID(), formatTime(s.now())
	_, err := s.db.Exec(`INSERT INTO jobs (id, title, department, location, type, salary, description, requirements,
    status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, d.Title, d.Department, d.Location, d.Type, d.Salary, d.Description, encodeRequirements(d.Requirements),
		string(status), now, now)
	if err != nil {
		return Job{}, err
	}
	return s.GetJob(id)
}

func (s *Store) UpdateJob(id string, d content.JobDraft) (Job, error) {
	status := d.Status
	if status == "" {
		status = content.JobStatusActive
	}
	res, err := s.db.Exec(`UPDATE jobs SET title = ?, department = ?, location = ?, type = ?, salary = ?,
    description = ?, requirements = ?, status = ?, updated_at = ? WHERE id = ?`,
		d.Title, d.Department, d.Location, d.Type, d.Salary, d.Description, encodeRequirements(d.Requirements),
		string(status), formatTime(s.now()), id)
	if err != nil {
		return Job{}, err
	}
	if err := affected(res, "job"); err != nil {
		return Job{}, err
	}
	return s.GetJob(id)
}

func (s *Store) SetJobStatus(id string, status content.JobStatus) (Job, error) {
	res, err := s.db.Exec(`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`, string(status), formatTime(s.now()), id)
	if err != nil {
		return Job{}, err
	}
	if err := affected(res, "job"); err != nil {
		return Job{}, err
	}
	return s.GetJob(id)
}

// DeleteJob removes job id. A job that still has applications is only
// removed when cascade is set, in which case its applications go too and
// their resume filenames are returned for cleanup.
func (s *Store) DeleteJob(id string, cascade bool) ([]string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT resume_filename FROM applications WHERE job_id = ?`, id)
	if err != nil {
		return nil, err
	}
	var resumes []string
	count := 0
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			rows.Close()
			return nil, err
		}
		count++
		if f != "" {
			resumes = append(resumes, f)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if count > 0 && !cascade {
		return nil, HasApplicationsError{Count: count}
	}
	if _, err := tx.Exec(`DELETE FROM applications WHERE job_id = ?`, id); err != nil {
		return nil, err
	}
	res, err := tx.Exec(`DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if err := affected(res, "job"); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return resumes, nil
}

const applicationColumns = `a.id, a.job_id, COALESCE(j.title, ''), a.name, a.email, a.phone, a.cover_letter,
    a.resume_filename, a.resume_original, a.status, a.created_at`

func scanApplication(row scanner) (Application, error) {
	var (
		a                          Application
		filename, original, status string
		created                    string
	)
	err := row.Scan(&a.ID, &a.JobID, &a.JobTitle, &a.Name, &a.Email, &a.Phone, &a.CoverLetter,
		&filename, &original, &status, &created)
	if err != nil {
		return Application{}, err
	}
	if filename != "" {
		a.Resume = &content.Resume{Filename: filename, OriginalName: original}
	}
	a.Status = content.ApplicationStatus(status)
	a.CreatedAt = parseTime(created)
	return a, nil
}

// ListApplications returns every application, newest first, with the job title.
func (s *Store) ListApplications() ([]Application, error) {
	rows, err := s.db.Query(`SELECT ` + applicationColumns + `
    FROM applications a LEFT JOIN jobs j ON j.id = a.job_id ORDER BY a.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	apps := []Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (s *Store) GetApplication(id string) (Application, error) {
	a, err := scanApplication(s.db.QueryRow(`SELECT `+applicationColumns+`
    FROM applications a LEFT JOIN jobs j ON j.id = a.job_id WHERE a.id = ?`, id))
	return a, notFound(err, "application")
}

// CreateApplication stores a submission for an active job. The resume, if
// any, must already be saved under its server-issued filename.
func (s *Store) CreateApplication(d content.ApplicationDraft, resume *content.Resume) (Application, error) {
	job, err := s.GetJob(d.JobID)
	if err != nil {
		return Application{}, err
	}
	if job.Status != content.JobStatusActive {
		return Application{}, content.FieldErrors{{Field: "jobId", Message: "this position is no longer accepting applications"}}
	}
	var filename, original string
	if resume != nil {
		filename, original = resume.Filename, resume.OriginalName
	}
	id := newID()
	_, err = s.db.Exec(`INSERT INTO applications (id, job_id, name, email, phone, cover_letter, resume_filename,
    resume_original, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, job.ID, strings.TrimSpace(d.Name), strings.TrimSpace(d.Email), strings.TrimSpace(d.Phone), d.CoverLetter,
		filename, original, string(content.ApplicationStatusNew), formatTime(s.now()))
	if err != nil {
		return Application{}, err
	}
	return s.GetApplication(id)
}

func (s *Store) SetApplicationStatus(id string, status content.ApplicationStatus) (Application, error) {
	res, err := s.db.Exec(`UPDATE applications SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return Application{}, err
	}
	if err := affected(res, "application"); err != nil {
		return Application{}, err
	}
	return s.GetApplication(id)
}

// DeleteApplication removes application id and returns it so the caller can
// remove the resume file.
func (s *Store) DeleteApplication(id string) (Application, error) {
	a, err := s.GetApplication(id)
	if err != nil {
		return Application{}, err
	}
	res, err := s.db.Exec(`DELETE FROM applications WHERE id = ?`, id)
	if err != nil {
		return Application{}, err
	}
	return a, affected(res, "application")
}

// ResumeOwner returns the application holding the stored resume filename.
func (s *Store) ResumeOwner(filename string) (Application, error) {
	a, err := scanApplication(s.db.QueryRow(`SELECT `+applicationColumns+`
    FROM applications a LEFT JOIN jobs j ON j.id = a.job_id WHERE a.resume_filename = ?`, filename))
	return a, notFound(err, "resume")
}

const contactColumns = `id, name, email, phone, subject, message, status, created_at`

func scanContact(row scanner) (ContactMessage, error) {
	var (
		m               ContactMessage
		status, created string
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &status, &created); err != nil {
		return ContactMessage{}, err
	}
	m.Status = content.ContactStatus(status)
	m.CreatedAt = parseTime(created)
	return m, nil
}

func (s *Store) ListContacts() ([]ContactMessage, error) {
	rows, err := s.db.Query(`SELECT ` + contactColumns + ` FROM contacts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	msgs := []ContactMessage{}
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *Store) GetContact(id string) (ContactMessage, error) {
	m, err := scanContact(s.db.QueryRow(`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id))
	return m, notFound(err, "message")
}

func (s *Store) CreateContact(d content.ContactDraft) (ContactMessage, error) {
	id := newID()
	_, err := s.db.Exec(`INSERT INTO contacts (id, name, email, phone, subject, message, status, created_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, strings.TrimSpace(d.Name), strings.TrimSpace(d.Email), strings.TrimSpace(d.Phone),
		strings.TrimSpace(d.Subject), d.Message, string(content.ContactStatusNew), formatTime(s.now()))
	if err != nil {
		return ContactMessage{}, err
	}
	return s.GetContact(id)
}

// MarkContactRead moves message id to read. Read is terminal.
func (s *Store) MarkContactRead(id string) (ContactMessage, error) {
	res, err := s.db.Exec(`UPDATE contacts SET status = 'read' WHERE id = ?`, id)
	if err != nil {
		return ContactMessage{}, err
	}
	if err := affected(res, "message"); err != nil {
		return ContactMessage{}, err
	}
	return s.GetContact(id)
}

func (s *Store) DeleteContact(id string) error {
	res, err := s.db.Exec(`DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(res, "message")
}
