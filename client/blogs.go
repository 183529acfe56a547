package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/eringen/buildsite/content"
)

// BlogQuery narrows a blog listing server-side. Zero values are omitted.
type BlogQuery struct {
	Category string
	Search   string
	Status   content.BlogStatus
	Limit    int
	Offset   int
}

func (q BlogQuery) encode() string {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// Blogs groups the blog endpoints.
type Blogs struct{ c *Client }

func (c *Client) Blogs() Blogs { return Blogs{c} }

func (b Blogs) List(ctx context.Context, q BlogQuery) ([]content.BlogPost, error) {
	var out []content.BlogPost
	err := b.c.doJSON(ctx, http.MethodGet, "/blogs"+q.encode(), nil, &out)
	return out, err
}

// Get fetches one post by id or slug.
func (b Blogs) Get(ctx context.Context, idOrSlug string) (content.BlogPost, error) {
	var out content.BlogPost
	err := b.c.doJSON(ctx, http.MethodGet, "/blogs/"+escape(idOrSlug), nil, &out)
	return out, err
}

func (b Blogs) Related(ctx context.Context, id string) ([]content.BlogPost, error) {
	var out []content.BlogPost
	err := b.c.doJSON(ctx, http.MethodGet, "/blogs/related/"+escape(id), nil, &out)
	return out, err
}

func (b Blogs) Create(ctx context.Context, d content.BlogDraft) (content.BlogPost, error) {
	var out content.BlogPost
	err := b.c.doJSON(ctx, http.MethodPost, "/blogs", d, &out)
	return out, err
}

func (b Blogs) Update(ctx context.Context, id string, d content.BlogDraft) (content.BlogPost, error) {
	var out content.BlogPost
	err := b.c.doJSON(ctx, http.MethodPut, "/blogs/"+escape(id), d, &out)
	return out, err
}

func (b Blogs) Delete(ctx context.Context, id string) error {
	return b.c.doJSON(ctx, http.MethodDelete, "/blogs/"+escape(id), nil, nil)
}

// UploadImage stores a featured image and returns its public URL.
func (b Blogs) UploadImage(ctx context.Context, name string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", name)
	if err != nil {
		return "", fmt.Errorf("create image part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("copy image: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := b.c.do(ctx, http.MethodPost, "/blogs/upload-image", &buf, w.FormDataContentType(), &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (b Blogs) Comments(ctx context.Context, id string) ([]content.Comment, error) {
	var out []content.Comment
	err := b.c.doJSON(ctx, http.MethodGet, "/blogs/"+escape(id)+"/comments", nil, &out)
	return out, err
}

func (b Blogs) AddComment(ctx context.Context, id string, d content.CommentDraft) (content.Comment, error) {
	var out content.Comment
	err := b.c.doJSON(ctx, http.MethodPost, "/blogs/"+escape(id)+"/comments", d, &out)
	return out, err
}

// Like increments the like counter and returns the new total.
func (b Blogs) Like(ctx context.Context, id string) (int, error) {
	var out struct {
		Likes int `json:"likes"`
	}
	err := b.c.doJSON(ctx, http.MethodPost, "/blogs/"+escape(id)+"/like", nil, &out)
	return out.Likes, err
}
