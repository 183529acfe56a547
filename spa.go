package buildsite

import (
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eringen/buildsite/views"
)

// NewHost returns the server for the built client bundle in cfg.BundleDir.
// When api is non-nil it is mounted under /api in the same process.
func NewHost(cfg SiteConfig, api http.Handler) *echo.Echo {
	cfg.setDefaults()
	site := views.Site{Name: cfg.Name}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = hostErrorHandler(e, site)

	e.Pre(middleware.NonWWWRedirect())
	e.Use(requestLogger())
	e.Use(middleware.Recover())

	if api != nil {
		e.Any("/api", echo.WrapHandler(http.StripPrefix("/api", api)))
		e.Any("/api/*", echo.WrapHandler(http.StripPrefix("/api", api)))
	}

	bundle := e.Group("")
	bundle.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: 5}))
	bundle.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'; connect-src 'self'",
		HSTSMaxAge:            31536000,
	}))
	bundle.GET("/*", SPAHandler(cfg.BundleDir, site))
	return e
}

// SPAHandler serves files from dir. Paths without a file extension that do
// not name a file fall back to index.html so client-side routes resolve;
// missing paths with an extension are 404s.
func SPAHandler(dir string, site views.Site) echo.HandlerFunc {
	return func(c echo.Context) error {
		clean := path.Clean("/" + c.Request().URL.Path)
		target := filepath.Join(dir, filepath.FromSlash(clean))

		if info, err := os.Stat(target); err == nil && !info.IsDir() {
			if strings.HasPrefix(clean, "/assets/") {
				c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			}
			return c.File(target)
		}
		if path.Ext(clean) != "" {
			return echo.ErrNotFound
		}

		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			return RenderStatus(c, http.StatusServiceUnavailable, views.BundleMissing(site, dir))
		}
		c.Response().Header().Set("Cache-Control", "no-cache")
		return c.File(index)
	}
}

func hostErrorHandler(e *echo.Echo, site views.Site) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}
		switch {
		case code == http.StatusNotFound:
			_ = RenderStatus(c, code, views.NotFound(site))
		case code >= 500:
			c.Logger().Errorf("server error: %v", err)
			_ = RenderStatus(c, code, views.ServerError(site))
		default:
			e.DefaultHTTPErrorHandler(err, c)
		}
	}
}
