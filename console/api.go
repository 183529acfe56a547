package console

import (
	"context"
	"io"

	"github.com/eringen/buildsite/client"
	"github.com/eringen/buildsite/content"
)

// The interfaces below are the slices of the REST client each screen uses.
// client.Blogs, client.Jobs, client.Applications and client.Contacts satisfy
// them.

type BlogAPI interface {
	List(ctx context.Context, q client.BlogQuery) ([]content.BlogPost, error)
	Create(ctx context.Context, d content.BlogDraft) (content.BlogPost, error)
	Update(ctx context.Context, id string, d content.BlogDraft) (content.BlogPost, error)
	Delete(ctx context.Context, id string) error
	UploadImage(ctx context.Context, name string, r io.Reader) (string, error)
}

type PublicBlogAPI interface {
	List(ctx context.Context, q client.BlogQuery) ([]content.BlogPost, error)
	Get(ctx context.Context, idOrSlug string) (content.BlogPost, error)
	Related(ctx context.Context, id string) ([]content.BlogPost, error)
	Comments(ctx context.Context, id string) ([]content.Comment, error)
	AddComment(ctx context.Context, id string, d content.CommentDraft) (content.Comment, error)
	Like(ctx context.Context, id string) (int, error)
}

type JobAPI interface {
	List(ctx context.Context) ([]content.Job, error)
	Create(ctx context.Context, d content.JobDraft) (content.Job, error)
	Update(ctx context.Context, id string, d content.JobDraft) (content.Job, error)
	Delete(ctx context.Context, id string) error
	DeleteWithApplications(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status content.JobStatus) (content.Job, error)
}

type ActiveJobAPI interface {
	Active(ctx context.Context) ([]content.Job, error)
}

type ApplicationAPI interface {
	List(ctx context.Context) ([]content.Application, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status content.ApplicationStatus) (content.Application, error)
}

type ApplicationSubmitter interface {
	Submit(ctx context.Context, d content.ApplicationDraft) (content.Application, error)
}

type ContactAPI interface {
	List(ctx context.Context) ([]content.ContactMessage, error)
	Delete(ctx context.Context, id string) error
	MarkRead(ctx context.Context, id string) (content.ContactMessage, error)
}

type ContactSubmitter interface {
	Submit(ctx context.Context, d content.ContactDraft) (content.ContactMessage, error)
}

type CountsAPI interface {
	Counts(ctx context.Context) (content.Counts, error)
}

var (
	_ BlogAPI              = client.Blogs{}
	_ PublicBlogAPI        = client.Blogs{}
	_ JobAPI               = client.Jobs{}
	_ ActiveJobAPI         = client.Jobs{}
	_ ApplicationAPI       = client.Applications{}
	_ ApplicationSubmitter = client.Applications{}
	_ ContactAPI           = client.Contacts{}
	_ ContactSubmitter     = client.Contacts{}
	_ CountsAPI            = (*client.Client)(nil)
)

// validate reports the missing fields of d as a ValidationError.
func validate(d content.Draft) error {
	if missing := d.Missing(); len(missing) > 0 {
		return &client.ValidationError{Message: "please fill in the required fields", Fields: missing.Map()}
	}
	return nil
}
