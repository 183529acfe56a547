package buildsite

import (
	"net/url"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// mountPrefix returns the path prefix stripped by an outer mux, e.g. "/api"
// when the API is served under /api by the bundle host.
func mountPrefix(c echo.Context) string {
	req := c.Request()
	full := req.RequestURI
	if i := strings.IndexAny(full, "?#"); i >= 0 {
		full = full[:i]
	}
	if u, err := url.Parse(full); err == nil {
		full = u.Path
	}
	return strings.TrimSuffix(strings.TrimSuffix(full, req.URL.Path), "/")
}
