package buildsite

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/buildsite/client"
)

const indexHTML = `<!doctype html><html><body><div id="root"></div></body></html>`

func writeBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(indexHTML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644))
	return dir
}

func hostServer(t *testing.T, dir string, api http.Handler) *httptest.Server {
	t.Helper()
	cfg := testConfig(t)
	cfg.BundleDir = dir
	srv := httptest.NewServer(NewHost(cfg, api))
	t.Cleanup(srv.Close)
	return srv
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestSPAFallsBackToIndex(t *testing.T) {
	srv := hostServer(t, writeBundle(t), nil)

	for _, p := range []string{"/", "/careers", "/blog/crane-safety", "/admin/jobs"} {
		resp := send(t, http.MethodGet, srv.URL+p, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, p)
		assert.Equal(t, indexHTML, readBody(t, resp), p)
		assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"), p)
	}
}

func TestSPAServesAssets(t *testing.T) {
	srv := hostServer(t, writeBundle(t), nil)

	resp := send(t, http.MethodGet, srv.URL+"/assets/app.js", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "console.log(1)", readBody(t, resp))
	assert.Contains(t, resp.Header.Get("Cache-Control"), "immutable")
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
}

func TestSPAMissingFileIsNotFound(t *testing.T) {
	srv := hostServer(t, writeBundle(t), nil)

	resp := send(t, http.MethodGet, srv.URL+"/assets/missing.js", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Page not found")
	assert.Contains(t, body, "Test Builders")
}

func TestSPABundleMissing(t *testing.T) {
	srv := hostServer(t, t.TempDir(), nil)

	resp := send(t, http.MethodGet, srv.URL+"/careers", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, readBody(t, resp), "Site not built")
}

func TestHostMountsAPI(t *testing.T) {
	a := New(testConfig(t), WithStore(setupTestStore(t)))
	require.NoError(t, a.Setup())
	t.Cleanup(func() { a.Close() })
	srv := hostServer(t, writeBundle(t), a.Echo)
	base := srv.URL + "/api"

	resp := send(t, http.MethodGet, base+"/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json"))

	admin := adminClient(t, base)
	jobs, err := admin.Jobs().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)

	resp = send(t, http.MethodGet, base+"/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	resp = send(t, http.MethodGet, srv.URL+"/contact", "", nil)
	assert.Equal(t, indexHTML, readBody(t, resp))

	_, err = client.New(base).Jobs().Active(context.Background())
	assert.NoError(t, err)
}

func TestMountPrefix(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/blogs/upload-image", nil)
	req.URL.Path = "/blogs/upload-image"
	assert.Equal(t, "/api", mountPrefix(e.NewContext(req, httptest.NewRecorder())))

	req = httptest.NewRequest(http.MethodPost, "/blogs/upload-image?x=1", nil)
	assert.Equal(t, "", mountPrefix(e.NewContext(req, httptest.NewRecorder())))
}
