package buildsite

import (
	"database/sql"
	"strings"

	"github.com/eringen/buildsite/content"
)

const blogColumns = `id, slug, title, excerpt, content, category, tags, author, featured_image,
    status, featured, views, likes, comment_count, created_at, updated_at, published_at`

func scanBlog(row scanner) (BlogPost, error) {
	var (
		p                              BlogPost
		tags, status, created, updated string
		featured                       int
		published                      sql.NullString
	)
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Content, &p.Category, &tags, &p.Author,
		&p.FeaturedImage, &status, &featured, &p.Views, &p.Likes, &p.CommentCount, &created, &updated, &published)
	if err != nil {
		return BlogPost{}, err
	}
	p.Tags = ParseTags(tags)
	p.Status = content.BlogStatus(status)
	p.Featured = featured == 1
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	if published.Valid {
		t := parseTime(published.String)
		p.PublishedAt = &t
	}
	return p, nil
}

func collectBlogs(rows *sql.Rows) ([]BlogPost, error) {
	defer rows.Close()
	posts := []BlogPost{}
	for rows.Next() {
		p, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListBlogs returns posts matching f, most recently published first.
func (s *Store) ListBlogs(f BlogFilter) ([]BlogPost, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(c, "all") {
		where = append(where, "lower(category) = lower(?)")
		args = append(args, c)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		like := "%" + q + "%"
		where = append(where, "(lower(title) LIKE ? OR lower(excerpt) LIKE ? OR lower(tags) LIKE ?)")
		args = append(args, like, like, like)
	}
	query := `SELECT ` + blogColumns + ` FROM blogs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY COALESCE(published_at, created_at) DESC, created_at DESC`
	if f.Limit > 0 || f.Offset > 0 {
		limit := f.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, f.Offset)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return collectBlogs(rows)
}

// GetBlog returns a post by id or slug regardless of status.
func (s *Store) GetBlog(idOrSlug string) (BlogPost, error) {
	p, err := scanBlog(s.db.QueryRow(`SELECT `+blogColumns+` FROM blogs WHERE id = ? OR slug = ?`, idOrSlug, idOrSlug))
	return p, notFound(err, "blog post")
}

// RelatedBlogs returns up to limit published posts sharing the category or a
// tag with post id.
func (s *Store) RelatedBlogs(id string, limit int) ([]BlogPost, error) {
	cur, err := s.GetBlog(id)
	if err != nil {
		return nil, err
	}
	published, err := s.ListBlogs(BlogFilter{Status: content.BlogStatusPublished})
	if err != nil {
		return nil, err
	}
	tagSet := make(map[string]struct{}, len(cur.Tags))
	for _, t := range cur.Tags {
		tagSet[strings.ToLower(t)] = struct{}{}
	}
	related := []BlogPost{}
	for _, p := range published {
		if p.ID == cur.ID {
			continue
		}
		match := strings.EqualFold(p.Category, cur.Category)
		for _, t := range p.Tags {
			if _, ok := tagSet[strings.ToLower(t)]; ok {
				match = true
				break
			}
		}
		if match {
			related = append(related, p)
			if limit > 0 && len(related) == limit {
				break
			}
		}
	}
	return related, nil
}

func (s *Store) slugTaken(slug, exceptID string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM blogs WHERE slug = ? AND id != ?`, slug, exceptID).Scan(&n)
	return n > 0, err
}

// CreateBlog inserts a post. An empty slug is derived from the title.
func (s *Store) CreateBlog(d content.BlogDraft) (BlogPost, error) {
	slug := content.Slugify(d.Slug)
	if slug == "" {
		slug = content.Slugify(d.Title)
	}
	if slug == "" {
		return BlogPost{}, errSlugRequired
	}
	if taken, err := s.slugTaken(slug, ""); err != nil {
		return BlogPost{}, err
	} else if taken {
		return BlogPost{}, ErrSlugTaken
	}
	status := d.Status
	if status == "" {
		status = content.BlogStatusDraft
	}
	now := formatTime(s.now())
	var published any
	if status == content.BlogStatusPublished {
		published = now
	}
	id := newID()
	_, err := s.db.Exec(`INSERT INTO blogs (id, slug, title, excerpt, content, category, tags, author, featured_image,
    status, featured, created_at, updated_at, published_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, slug, d.Title, d.Excerpt, d.Content, d.Category, JoinTagColumn(d.Tags), d.Author, d.FeaturedImage,
		string(status), boolInt(d.Featured), now, now, published)
	if err != nil {
		return BlogPost{}, err
	}
	return s.GetBlog(id)
}

// UpdateBlog replaces the editable fields of post id. publishedAt is set the
// first time the post becomes published and kept afterwards.
func (s *Store) UpdateBlog(id string, d content.BlogDraft) (BlogPost, error) {
	cur, err := s.GetBlog(id)
	if err != nil {
		return BlogPost{}, err
	}
	slug := content.Slugify(d.Slug)
	if slug == "" {
		slug = cur.Slug
	}
	if taken, err := s.slugTaken(slug, cur.ID); err != nil {
		return BlogPost{}, err
	} else if taken {
		return BlogPost{}, ErrSlugTaken
	}
	status := d.Status
	if status == "" {
		status = cur.Status
	}
	now := s.now()
	var published any
	if cur.PublishedAt != nil {
		published = formatTime(*cur.PublishedAt)
	} else if status == content.BlogStatusPublished {
		published = formatTime(now)
	}
	_, err = s.db.Exec(`UPDATE blogs SET slug = ?, title = ?, excerpt = ?, content = ?, category = ?, tags = ?,
    author = ?, featured_image = ?, status = ?, featured = ?, updated_at = ?, published_at = ? WHERE id = ?`,
		slug, d.Title, d.Excerpt, d.Content, d.Category, JoinTagColumn(d.Tags), d.Author, d.FeaturedImage,
		string(status), boolInt(d.Featured), formatTime(now), published, cur.ID)
	if err != nil {
		return BlogPost{}, err
	}
	return s.GetBlog(cur.ID)
}

// DeleteBlog removes a post and its comments.
func (s *Store) DeleteBlog(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM comments WHERE blog_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM blogs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := affected(res, "blog post"); err != nil {
		return err
	}
	return tx.Commit()
}

// IncrementViews bumps the view counter of post id.
func (s *Store) IncrementViews(id string) error {
	res, err := s.db.Exec(`UPDATE blogs SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(res, "blog post")
}

// AddLike bumps the like counter of post id and returns the new total.
func (s *Store) AddLike(id string) (int, error) {
	var likes int
	err := s.db.QueryRow(`UPDATE blogs SET likes = likes + 1 WHERE id = ? RETURNING likes`, id).Scan(&likes)
	return likes, notFound(err, "blog post")
}

// Likes returns the like counter of post id.
func (s *Store) Likes(id string) (int, error) {
	var likes int
	err := s.db.QueryRow(`SELECT likes FROM blogs WHERE id = ?`, id).Scan(&likes)
	return likes, notFound(err, "blog post")
}

// ListComments returns the comments of post id, oldest first.
func (s *Store) ListComments(blogID string) ([]Comment, error) {
	rows, err := s.db.Query(`SELECT id, blog_id, name, email, rating, text, created_at
    FROM comments WHERE blog_id = ? ORDER BY created_at ASC`, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comments := []Comment{}
	for rows.Next() {
		var c Comment
		var created string
		if err := rows.Scan(&c.ID, &c.BlogID, &c.Name, &c.Email, &c.Rating, &c.Text, &created); err != nil {
			return nil, err
		}
		c.CreatedAt = parseTime(created)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// AddComment stores a comment and bumps the post's comment counter.
func (s *Store) AddComment(blogID string, d content.CommentDraft) (Comment, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Comment{}, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE blogs SET comment_count = comment_count + 1 WHERE id = ?`, blogID)
	if err != nil {
		return Comment{}, err
	}
	if err := affected(res, "blog post"); err != nil {
		return Comment{}, err
	}
	c := Comment{
		ID:        newID(),
		BlogID:    blogID,
		Name:      strings.TrimSpace(d.Name),
		Email:     strings.TrimSpace(d.Email),
		Rating:    d.Rating,
		Text:      strings.TrimSpace(d.Text),
		CreatedAt: s.now(),
	}
	if _, err := tx.Exec(`INSERT INTO comments (id, blog_id, name, email, rating, text, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.BlogID, c.Name, c.Email, c.Rating, c.Text, formatTime(c.CreatedAt)); err != nil {
		return Comment{}, err
	}
	if err := tx.Commit(); err != nil {
		return Comment{}, err
	}
	return c, nil
}

var errSlugRequired = content.FieldErrors{{Field: "slug", Message: "is required; add a title with letters or digits"}}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
