// Package content defines the entities shared by the buildsite API server and
// the admin console: blog posts, job postings, applications, contact messages
// and comments, together with their status sets and editable drafts.
package content

import "time"

// Entity is anything held in a collection snapshot.
type Entity interface {
	EntityID() string
}

// BlogPost is a blog article. Counters are maintained by the server only.
type BlogPost struct {
	ID            string     `json:"id"`
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
	Views         int        `json:"views"`
	Likes         int        `json:"likes"`
	CommentCount  int        `json:"commentCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	PublishedAt   *time.Time `json:"publishedAt"`
}

func (p BlogPost) EntityID() string { return p.ID }

// Link returns the public path of the post.
func (p BlogPost) Link() string { return "/blog/" + p.Slug }

// Job is a career posting.
type Job struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Department       string    `json:"department"`
	Location         string    `json:"location"`
	Type             string    `json:"type"`
	Salary           string    `json:"salary"`
	Description      string    `json:"description"`
	Requirements     []string  `json:"requirements"`
	Status           JobStatus `json:"status"`
	ApplicationCount int       `json:"applicationCount"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (j Job) EntityID() string { return j.ID }

// Resume points at an uploaded file. Filename is the server-issued storage key;
// OriginalName is only ever used for display and as the download name.
type Resume struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
}

// Application is a candidate's submission for a job.
type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"jobId"`
	JobTitle    string            `json:"jobTitle"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	CoverLetter string            `json:"coverLetter"`
	Resume      *Resume           `json:"resume,omitempty"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func (a Application) EntityID() string { return a.ID }

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

func (m ContactMessage) EntityID() string { return m.ID }

// Comment is a reader comment on a blog post.
type Comment struct {
	ID        string    `json:"id"`
	BlogID    string    `json:"blogId"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c Comment) EntityID() string { return c.ID }

// Counts aggregates totals for the admin overview.
type Counts struct {
	Blogs           int `json:"blogs"`
	PublishedBlogs  int `json:"publishedBlogs"`
	Jobs            int `json:"jobs"`
	ActiveJobs      int `json:"activeJobs"`
	Applications    int `json:"applications"`
	NewApplications int `json:"newApplications"`
	Contacts        int `json:"contacts"`
	UnreadContacts  int `json:"unreadContacts"`
}
