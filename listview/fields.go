package listview

import (
	"cmp"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/buildsite/content"
)

func text(a, b string) int { return strings.Compare(strings.ToLower(a), strings.ToLower(b)) }

func when(a, b time.Time) int { return a.Compare(b) }

// BlogFields exposes blog post fields to Filter.
func BlogFields(p content.BlogPost, field string) []string {
	switch field {
	case "title":
		return []string{p.Title}
	case "excerpt":
		return []string{p.Excerpt}
	case "content":
		return []string{p.Content}
	case "category":
		return []string{p.Category}
	case "tags":
		return p.Tags
	case "author":
		return []string{p.Author}
	case "status":
		return []string{string(p.Status)}
	case "featured":
		return []string{strconv.FormatBool(p.Featured)}
	case "slug":
		return []string{p.Slug}
	}
	return nil
}

// BlogSearchFields are the fields matched by the blog search box.
var BlogSearchFields = []string{"title", "excerpt", "tags"}

func blogDate(p content.BlogPost) time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

// BlogKeys are the sortable blog columns.
var BlogKeys = Keys[content.BlogPost]{
	{Name: "title", Kind: Text, Compare: func(a, b content.BlogPost) int { return text(a.Title, b.Title) }},
	{Name: "date", Kind: Date, Compare: func(a, b content.BlogPost) int { return when(blogDate(a), blogDate(b)) }},
	{Name: "views", Kind: Number, Compare: func(a, b content.BlogPost) int { return cmp.Compare(a.Views, b.Views) }},
	{Name: "likes", Kind: Number, Compare: func(a, b content.BlogPost) int { return cmp.Compare(a.Likes, b.Likes) }},
	{Name: "comments", Kind: Number, Compare: func(a, b content.BlogPost) int { return cmp.Compare(a.CommentCount, b.CommentCount) }},
}

// JobFields exposes job posting fields to Filter.
func JobFields(j content.Job, field string) []string {
	switch field {
	case "title":
		return []string{j.Title}
	case "department":
		return []string{j.Department}
	case "location":
		return []string{j.Location}
	case "type":
		return []string{j.Type}
	case "description":
		return []string{j.Description}
	case "requirements":
		return j.Requirements
	case "status":
		return []string{string(j.Status)}
	}
	return nil
}

var JobSearchFields = []string{"title", "department", "location", "description"}

var JobKeys = Keys[content.Job]{
	{Name: "title", Kind: Text, Compare: func(a, b content.Job) int { return text(a.Title, b.Title) }},
	{Name: "department", Kind: Text, Compare: func(a, b content.Job) int { return text(a.Department, b.Department) }},
	{Name: "date", Kind: Date, Compare: func(a, b content.Job) int { return when(a.CreatedAt, b.CreatedAt) }},
	{Name: "applications", Kind: Number, Compare: func(a, b content.Job) int { return cmp.Compare(a.ApplicationCount, b.ApplicationCount) }},
}

// ApplicationFields exposes application fields to Filter.
func ApplicationFields(a content.Application, field string) []string {
	switch field {
	case "name":
		return []string{a.Name}
	case "email":
		return []string{a.Email}
	case "phone":
		return []string{a.Phone}
	case "job":
		return []string{a.JobTitle}
	case "jobId":
		return []string{a.JobID}
	case "status":
		return []string{string(a.Status)}
	}
	return nil
}

var ApplicationSearchFields = []string{"name", "email", "job"}

var ApplicationKeys = Keys[content.Application]{
	{Name: "name", Kind: Text, Compare: func(a, b content.Application) int { return text(a.Name, b.Name) }},
	{Name: "job", Kind: Text, Compare: func(a, b content.Application) int { return text(a.JobTitle, b.JobTitle) }},
	{Name: "date", Kind: Date, Compare: func(a, b content.Application) int { return when(a.CreatedAt, b.CreatedAt) }},
}

// ContactFields exposes contact message fields to Filter.
func ContactFields(m content.ContactMessage, field string) []string {
	switch field {
	case "name":
		return []string{m.Name}
	case "email":
		return []string{m.Email}
	case "subject":
		return []string{m.Subject}
	case "message":
		return []string{m.Message}
	case "status":
		return []string{string(m.Status)}
	}
	return nil
}

var ContactSearchFields = []string{"name", "email", "subject", "message"}

var ContactKeys = Keys[content.ContactMessage]{
	{Name: "name", Kind: Text, Compare: func(a, b content.ContactMessage) int { return text(a.Name, b.Name) }},
	{Name: "subject", Kind: Text, Compare: func(a, b content.ContactMessage) int { return text(a.Subject, b.Subject) }},
	{Name: "date", Kind: Date, Compare: func(a, b content.ContactMessage) int { return when(a.CreatedAt, b.CreatedAt) }},
}
