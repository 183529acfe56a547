package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/eringen/buildsite"
)

var (
	apiAddr   string
	dbPath    string
	servePort int
	serveDir  string
	serveAPI  bool
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the REST API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildsite.LoadConfig(envFiles()...)
		if apiAddr != "" {
			cfg.Addr = apiAddr
		}
		if dbPath != "" {
			cfg.DatabasePath = dbPath
		}
		app := buildsite.New(cfg)
		defer app.Close()
		if err := app.Setup(); err != nil {
			return err
		}
		slog.Info("api listening", "addr", cfg.Addr, "db", cfg.DatabasePath)
		return run(app.Echo, cfg.Addr)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the built client bundle",
	Long: `Serve the built client bundle with index.html fallback for client-side
routes. With --api the REST API is mounted under /api in the same process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildsite.LoadConfig(envFiles()...)
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}
		if serveDir != "" {
			cfg.BundleDir = serveDir
		}

		var api http.Handler
		if serveAPI {
			if dbPath != "" {
				cfg.DatabasePath = dbPath
			}
			app := buildsite.New(cfg)
			defer app.Close()
			if err := app.Setup(); err != nil {
				return err
			}
			api = app.Echo
		}

		addr := fmt.Sprintf(":%d", cfg.Port)
		slog.Info("serving bundle", "addr", addr, "dir", cfg.BundleDir, "api", serveAPI)
		return run(buildsite.NewHost(cfg, api), addr)
	},
}

// run serves e on addr until SIGINT or SIGTERM, then shuts down gracefully.
func run(e *echo.Echo, addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func init() {
	rootCmd.AddCommand(apiCmd, serveCmd)
	apiCmd.Flags().StringVar(&apiAddr, "addr", "", "Listen address (default $BUILDSITE_ADDR or :3001)")
	apiCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default $BUILDSITE_DB)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Listen port (default $PORT or 8080)")
	serveCmd.Flags().StringVar(&serveDir, "dir", "", "Bundle directory (default $BUNDLE_DIR or dist)")
	serveCmd.Flags().BoolVar(&serveAPI, "api", false, "Mount the REST API under /api")
	serveCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path when --api is set")
}
