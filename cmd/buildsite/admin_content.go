package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eringen/buildsite/console"
	"github.com/eringen/buildsite/content"
)

var blogDraft struct {
	title, slug, excerpt, category, tags, author, status string
	body, bodyFile, image                                string
	featured                                             bool
}

var blogsCmd = &cobra.Command{
	Use:   "blogs",
	Short: "List blog posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		a := console.NewBlogAdmin(s.api.Blogs(), s.gw, s.storeOptions()...)
		if err := a.Mount(s.ctx); err != nil {
			return err
		}
		if err := applyList(a.List); err != nil {
			return err
		}
		w := s.table()
		fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tSTATUS\tVIEWS\tLIKES\tDATE")
		for _, p := range a.Visible() {
			date := p.CreatedAt
			if p.PublishedAt != nil {
				date = *p.PublishedAt
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n", p.ID, p.Title, p.Category, p.Status, p.Views, p.Likes, shortDate(date))
		}
		return w.Flush()
	},
}

var blogsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a blog post",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		a := console.NewBlogAdmin(s.api.Blogs(), s.gw, s.storeOptions()...)
		a.New()
		return saveBlog(cmd, s, a)
	},
}

var blogsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a blog post; only the flags given are changed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		a := console.NewBlogAdmin(s.api.Blogs(), s.gw, s.storeOptions()...)
		if err := a.Mount(s.ctx); err != nil {
			return err
		}
		if err := a.Edit(args[0]); err != nil {
			return err
		}
		return saveBlog(cmd, s, a)
	},
}

// saveBlog applies the changed draft flags to the open editor and submits it.
func saveBlog(cmd *cobra.Command, s *session, a *console.BlogAdmin) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		a.SetTitle(blogDraft.title)
	}
	if changed("slug") {
		a.SetSlug(blogDraft.slug)
	}
	if changed("image") {
		f, err := os.Open(blogDraft.image)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := a.AttachImage(s.ctx, filepath.Base(blogDraft.image), f); err != nil {
			return err
		}
	}
	body := blogDraft.body
	if changed("content-file") {
		b, err := os.ReadFile(blogDraft.bodyFile)
		if err != nil {
			return err
		}
		body = string(b)
	}
	a.Editor.Edit(func(d *content.BlogDraft) {
		if changed("excerpt") {
			d.Excerpt = blogDraft.excerpt
		}
		if changed("content") || changed("content-file") {
			d.Content = body
		}
		if changed("category") {
			d.Category = blogDraft.category
		}
		if changed("tags") {
			d.Tags = content.SplitTags(blogDraft.tags)
		}
		if changed("author") {
			d.Author = blogDraft.author
		}
		if changed("status") {
			d.Status = content.BlogStatus(blogDraft.status)
		}
		if changed("featured") {
			d.Featured = blogDraft.featured
		}
	})
	if err := a.Save(s.ctx); err != nil {
		if fe := a.Editor.FieldErrors(); len(fe) > 0 {
			for field, msg := range fe {
				fmt.Fprintf(s.out, "  %s: %s\n", field, msg)
			}
		}
		return err
	}
	return nil
}

func blogStatusCmd(use string, status content.BlogStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: fmt.Sprintf("Set a blog post to %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSession(cmd)
			defer s.cancel()
			a := console.NewBlogAdmin(s.api.Blogs(), s.gw, s.storeOptions()...)
			if err := a.Mount(s.ctx); err != nil {
				return err
			}
			return a.SetStatus(s.ctx, args[0], status)
		},
	}
}

var blogsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a blog post and its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		a := console.NewBlogAdmin(s.api.Blogs(), s.gw, s.storeOptions()...)
		if err := a.Mount(s.ctx); err != nil {
			return err
		}
		return a.Delete(s.ctx, args[0])
	},
}

var jobDraft struct {
	title, department, location, kind, salary, description, status string
	requirements                                                   []string
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List job postings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		a := console.NewJobAdmin(s.api.Jobs(), s.gw, s.storeOptions()...)
		if err := a.Mount(s.ctx); err != nil {
			return err
		}
		if err := applyList(a.List); err != nil {
			return err
		}
		w := s.table()
		fmt.Fprintln(w, "ID\tTITLE\tDEPARTMENT\tLOCATION\tSTATUS\tAPPLICATIONS")
		for _, j := range a.Visible() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", j.ID, j.Title, j.Department, j.Location, j.Status, j.ApplicationCount)
		}
		return w.Flush()
	},
}

var jobsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a job posting",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		a := console.NewJobAdmin(s.api.Jobs(), s.gw, s.storeOptions()...)
		a.New()
		return saveJob(cmd, s, a)
	},
}

var jobsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a job posting; only the flags given are changed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		a := console.NewJobAdmin(s.api.Jobs(), s.gw, s.storeOptions()...)
		if err := a.Mount(s.ctx); err != nil {
			return err
		}
		if err := a.Edit(args[0]); err != nil {
			return err
		}
		return saveJob(cmd, s, a)
	},
}

func saveJob(cmd *cobra.Command, s *session, a *console.JobAdmin) error {
	changed := cmd.Flags().Changed
	a.Editor.Edit(func(d *content.JobDraft) {
		if changed("title") {
			d.Title = jobDraft.title
		}
		if changed("department") {
			d.Department = jobDraft.department
		}
		if changed("location") {
			d.Location = jobDraft.location
		}
		if changed("type") {
			d.Type = jobDraft.kind
		}
		if changed("salary") {
			d.Salary = jobDraft.salary
		}
		if changed("description") {
			d.Description = jobDraft.description
		}
		if changed("status") {
			d.Status = content.JobStatus(jobDraft.status)
		}
		if changed("requirement") {
			d.Requirements = append([]string(nil), jobDraft.requirements...)
		}
	})
	if err := a.Save(s.ctx); err != nil {
		for field, msg := range a.Editor.FieldErrors() {
			fmt.Fprintf(s.out, "  %s: %s\n", field, msg)
		}
		return err
	}
	return nil
}

var jobsToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Switch a job posting between active and draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		a := console.NewJobAdmin(s.api.Jobs(), s.gw, s.storeOptions()...)
		if err := a.Mount(s.ctx); err != nil {
			return err
		}
		return a.Toggle(s.ctx, args[0])
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a job posting together with its applications",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		a := console.NewJobAdmin(s.api.Jobs(), s.gw, s.storeOptions()...)
		if err := a.Mount(s.ctx); err != nil {
			return err
		}
		return a.Delete(s.ctx, args[0])
	},
}

var applicationsCmd = &cobra.Command{
	Use:     "applications",
	Aliases: []string{"apps"},
	Short:   "List job applications",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		a := console.NewApplicationAdmin(s.api.Applications(), s.gw, s.api.ResumeURL, s.storeOptions()...)
		if err := a.Mount(s.ctx); err != nil {
			return err
		}
		if err := applyList(a.List); err != nil {
			return err
		}
		w := s.table()
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tJOB\tSTATUS\tDATE\tRESUME")
		for _, app := range a.Visible() {
			resume := a.ResumeLink(app)
			if resume == "" {
				resume = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", app.ID, app.Name, app.Email, app.JobTitle, app.Status, shortDate(app.CreatedAt), resume)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		counts := a.CountByStatus()
		parts := make([]string, 0, len(content.ApplicationStatuses))
		for _, st := range content.ApplicationStatuses {
			parts = append(parts, fmt.Sprintf("%s %d", st, counts[st]))
		}
		fmt.Fprintln(s.out, strings.Join(parts, " | "))
		return nil
	},
}

var applicationsStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Move an application to another review state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		a := console.NewApplicationAdmin(s.api.Applications(), s.gw, s.api.ResumeURL, s.storeOptions()...)
		if err := a.Mount(s.ctx); err != nil {
			return err
		}
		return a.SetStatus(s.ctx, args[0], content.ApplicationStatus(args[1]))
	},
}

var applicationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an application and its resume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		a := console.NewApplicationAdmin(s.api.Applications(), s.gw, s.api.ResumeURL, s.storeOptions()...)
		if err := a.Mount(s.ctx); err != nil {
			return err
		}
		return a.Delete(s.ctx, args[0])
	},
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List contact form messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		a := console.NewContactAdmin(s.api.Contacts(), s.gw, s.storeOptions()...)
		if err := a.Mount(s.ctx); err != nil {
			return err
		}
		if err := applyList(a.List); err != nil {
			return err
		}
		w := s.table()
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSUBJECT\tSTATUS\tDATE")
		for _, m := range a.Visible() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Email, m.Subject, m.Status, shortDate(m.CreatedAt))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%d unread\n", a.Unread())
		return nil
	},
}

var contactsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Show a message and mark it read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		a := console.NewContactAdmin(s.api.Contacts(), s.gw, s.storeOptions()...)
		if err := a.Mount(s.ctx); err != nil {
			return err
		}
		m, err := a.Open(s.ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "From:    %s <%s>\n", m.Name, m.Email)
		if m.Phone != "" {
			fmt.Fprintf(s.out, "Phone:   %s\n", m.Phone)
		}
		fmt.Fprintf(s.out, "Subject: %s\nDate:    %s\n\n%s\n", m.Subject, shortDate(m.CreatedAt), m.Message)
		return nil
	},
}

var contactsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		a := console.NewContactAdmin(s.api.Contacts(), s.gw, s.storeOptions()...)
		if err := a.Mount(s.ctx); err != nil {
			return err
		}
		return a.Delete(s.ctx, args[0])
	},
}

func init() {
	for _, c := range []*cobra.Command{blogsCmd, jobsCmd, applicationsCmd, contactsCmd} {
		addListFlags(c)
	}

	for _, c := range []*cobra.Command{blogsCreateCmd, blogsEditCmd} {
		f := c.Flags()
		f.StringVar(&blogDraft.title, "title", "", "Title; the slug follows it until --slug is given")
		f.StringVar(&blogDraft.slug, "slug", "", "URL slug")
		f.StringVar(&blogDraft.excerpt, "excerpt", "", "Short summary")
		f.StringVar(&blogDraft.body, "content", "", "Post body")
		f.StringVar(&blogDraft.bodyFile, "content-file", "", "Read the post body from a file")
		f.StringVar(&blogDraft.category, "category", "", "Category")
		f.StringVar(&blogDraft.tags, "tags", "", "Comma separated tags")
		f.StringVar(&blogDraft.author, "author", "", "Author name")
		f.StringVar(&blogDraft.image, "image", "", "Featured image file to upload")
		f.StringVar(&blogDraft.status, "status", "", "draft, published or archived")
		f.BoolVar(&blogDraft.featured, "featured", false, "Feature on the blog page")
	}
	blogsCmd.AddCommand(blogsCreateCmd, blogsEditCmd, blogsDeleteCmd,
		blogStatusCmd("publish", content.BlogStatusPublished),
		blogStatusCmd("unpublish", content.BlogStatusDraft),
		blogStatusCmd("archive", content.BlogStatusArchived))

	for _, c := range []*cobra.Command{jobsCreateCmd, jobsEditCmd} {
		f := c.Flags()
		f.StringVar(&jobDraft.title, "title", "", "Job title")
		f.StringVar(&jobDraft.department, "department", "", "Department")
		f.StringVar(&jobDraft.location, "location", "", "Location")
		f.StringVar(&jobDraft.kind, "type", "", "Employment type, e.g. Full-time")
		f.StringVar(&jobDraft.salary, "salary", "", "Salary range")
		f.StringVar(&jobDraft.description, "description", "", "Description")
		f.StringVar(&jobDraft.status, "status", "", "active, draft or closed")
		f.StringArrayVarP(&jobDraft.requirements, "requirement", "r", nil, "Requirement (repeatable)")
	}
	jobsCmd.AddCommand(jobsCreateCmd, jobsEditCmd, jobsToggleCmd, jobsDeleteCmd)

	applicationsCmd.AddCommand(applicationsStatusCmd, applicationsDeleteCmd)
	contactsCmd.AddCommand(contactsReadCmd, contactsDeleteCmd)

	adminCmd.AddCommand(blogsCmd, jobsCmd, applicationsCmd, contactsCmd)
}
