// Package buildsite is the REST API behind the construction company website:
// blog posts with comments and likes, job postings, applications with resume
// uploads, and contact messages, served as JSON envelopes by Echo and stored
// in SQLite.
//
// The admin console and public pages talk to it through the client package.
package buildsite

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
)

// App is the central buildsite application. It wires together the store,
// cache, limiters, middleware, and routes.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache

	loginLimiter *LoginLimiter
	likeLimiter  *LikeLimiter
	customRoutes []func(*App)
	ownsStore    bool
	ready        bool
}

// New creates a new App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup validates the configuration, opens the store, and registers
// middleware and routes. Start calls it; tests and embedding servers call it
// directly before serving a.Echo.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("buildsite: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("buildsite: SessionSecret is required")
	}

	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("buildsite: init store: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}

	for _, dir := range []string{a.imagesDir(), a.resumesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("buildsite: create uploads dir: %w", err)
		}
	}

	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.likeLimiter = NewLikeLimiter(a.Config.LikeWindow)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start sets the app up and serves on Config.Addr until the server stops.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo
	admin := a.requireAdmin

	e.POST("/auth/login", a.handleLogin)
	e.POST("/auth/logout", a.handleLogout)

	e.GET("/blogs", a.handleListBlogs)
	e.GET("/blogs/categories", a.handleBlogCategories)
	e.GET("/blogs/related/:id", a.handleRelatedBlogs)
	e.GET("/blogs/:id", a.handleGetBlog)
	e.GET("/blogs/:id/comments", a.handleListComments)
	e.POST("/blogs/:id/comments", a.handleAddComment)
	e.POST("/blogs/:id/like", a.handleLike)
	e.POST("/blogs", a.handleCreateBlog, admin)
	e.POST("/blogs/upload-image", a.handleImageUpload, admin)
	e.PUT("/blogs/:id", a.handleUpdateBlog, admin)
	e.DELETE("/blogs/:id", a.handleDeleteBlog, admin)

	e.GET("/jobs/active", a.handleActiveJobs)
	e.GET("/jobs", a.handleListJobs, admin)
	e.POST("/jobs", a.handleCreateJob, admin)
	e.PUT("/jobs/:id", a.handleUpdateJob, admin)
	e.PATCH("/jobs/:id/status", a.handleJobStatus, admin)
	e.DELETE("/jobs/:id", a.handleDeleteJob, admin)

	e.POST("/applications", a.handleSubmitApplication)
	e.GET("/applications", a.handleListApplications, admin)
	e.PATCH("/applications/:id/status", a.handleApplicationStatus, admin)
	e.DELETE("/applications/:id", a.handleDeleteApplication, admin)

	e.POST("/contact", a.handleSubmitContact)
	e.GET("/contact", a.handleListContacts, admin)
	e.PATCH("/contact/:id/read", a.handleContactRead, admin)
	e.DELETE("/contact/:id", a.handleDeleteContact, admin)

	e.GET("/dashboard/counts", a.handleCounts, admin)

	e.Static("/uploads/images", a.imagesDir())
	e.GET("/uploads/resumes/:filename", a.handleResumeDownload, admin)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/health", func(c echo.Context) error { return Done(c, "ok") })
}

func (a *App) imagesDir() string  { return filepath.Join(a.Config.UploadsDir, "images") }
func (a *App) resumesDir() string { return filepath.Join(a.Config.UploadsDir, "resumes") }

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Close()
	}
	if a.Store != nil && a.ownsStore {
		return a.Store.Close()
	}
	return nil
}
