package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/buildsite/content"
)

func writeEnvelope(w http.ResponseWriter, code int, v map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClientAttachesBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	}))
	defer srv.Close()

	c := New(srv.URL, WithCredentials(StaticToken("secret")))
	_, err := c.Blogs().List(context.Background(), BlogQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", got)
}

func TestClientWithoutTokenSendsNoAuthorization(t *testing.T) {
	var present bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Jobs().Active(context.Background())
	require.NoError(t, err)
	assert.False(t, present)
}

func TestClientDecodesData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/blogs", r.URL.Path)
		assert.Equal(t, "Safety", r.URL.Query().Get("category"))
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": "b1", "slug": "crane-checks", "title": "Crane checks", "status": "published"},
			},
		})
	}))
	defer srv.Close()

	posts, err := New(srv.URL+"/api/").Blogs().List(context.Background(), BlogQuery{Category: "Safety"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "crane-checks", posts[0].Slug)
	assert.Equal(t, content.BlogStatusPublished, posts[0].Status)
}

func TestClientClassifiesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]any
		kind   Kind
	}{
		{"not found", http.StatusNotFound, map[string]any{"success": false, "message": "blog not found"}, KindNotFound},
		{"validation", http.StatusBadRequest, map[string]any{"success": false, "message": "invalid", "errors": map[string]string{"slug": "already taken"}}, KindValidation},
		{"conflict", http.StatusConflict, map[string]any{"success": false, "message": "job has applications"}, KindValidation},
		{"server", http.StatusInternalServerError, map[string]any{"success": false}, KindNetwork},
		{"soft failure", http.StatusOK, map[string]any{"success": false, "message": "nope"}, KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tt.status, tt.body)
			}))
			defer srv.Close()

			err := New(srv.URL).Blogs().Delete(context.Background(), "b1")
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestValidationErrorCarriesFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "validation failed",
			"errors":  map[string]string{"slug": "already taken"},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Blogs().Create(context.Background(), content.BlogDraft{Title: "x"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "already taken", ve.Fields["slug"])
}

func TestClientTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, WithTimeout(50*time.Millisecond)).Counts(context.Background())
	var ne *NetworkError
	require.True(t, errors.As(err, &ne))
	assert.True(t, ne.Timeout())
}

func TestNotFoundMatchesSentinel(t *testing.T) {
	err := error(&NotFoundError{Resource: "job"})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "job not found", err.Error())
}

func TestFileCredentials(t *testing.T) {
	creds := FileCredentials{Path: filepath.Join(t.TempDir(), "cfg", "token")}
	ctx := context.Background()

	tok, err := creds.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, creds.Save("abc"))
	tok, err = creds.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, creds.Clear())
	tok, err = creds.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestResumeURLEscapesFilename(t *testing.T) {
	c := New("https://example.com/api")
	assert.Equal(t, "https://example.com/api/uploads/resumes/a%20b.pdf", c.ResumeURL("a b.pdf"))
}
