package content

// BlogStatus is the lifecycle state of a blog post.
type BlogStatus string

const (
	BlogStatusDraft     BlogStatus = "draft"
	BlogStatusPublished BlogStatus = "published"
	BlogStatusArchived  BlogStatus = "archived"
)

func (s BlogStatus) Valid() bool {
	switch s {
	case BlogStatusDraft, BlogStatusPublished, BlogStatusArchived:
		return true
	}
	return false
}

// JobStatus is the lifecycle state of a job posting.
type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusDraft  JobStatus = "draft"
	JobStatusClosed JobStatus = "closed"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusActive, JobStatusDraft, JobStatusClosed:
		return true
	}
	return false
}

// Toggle flips between active and draft. A closed posting reopens as active.
func (s JobStatus) Toggle() JobStatus {
	if s == JobStatusActive {
		return JobStatusDraft
	}
	return JobStatusActive
}

// ApplicationStatus is the review state of an application.
type ApplicationStatus string

const (
	ApplicationStatusNew       ApplicationStatus = "new"
	ApplicationStatusReviewed  ApplicationStatus = "reviewed"
	ApplicationStatusInterview ApplicationStatus = "interview"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusHired     ApplicationStatus = "hired"
)

// ApplicationStatuses lists the states in display order.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusNew,
	ApplicationStatusReviewed,
	ApplicationStatusInterview,
	ApplicationStatusRejected,
	ApplicationStatusHired,
}

func (s ApplicationStatus) Valid() bool {
	for _, v := range ApplicationStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CanTransition reports whether an application may move to next.
// Reviewers may move an application between any two states.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	return next.Valid()
}

// ContactStatus is the read state of a contact message.
type ContactStatus string

const (
	ContactStatusNew  ContactStatus = "new"
	ContactStatusRead ContactStatus = "read"
)

func (s ContactStatus) Valid() bool {
	return s == ContactStatusNew || s == ContactStatusRead
}

// CanTransition allows only new -> read. Staying in the same state is a no-op
// and permitted.
func (s ContactStatus) CanTransition(next ContactStatus) bool {
	if !next.Valid() {
		return false
	}
	return s == next || (s == ContactStatusNew && next == ContactStatusRead)
}
