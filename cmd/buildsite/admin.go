package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/buildsite"
	"github.com/eringen/buildsite/client"
	"github.com/eringen/buildsite/collection"
	"github.com/eringen/buildsite/console"
	"github.com/eringen/buildsite/content"
	"github.com/eringen/buildsite/notify"
)

var (
	apiURL    string
	tokenFile string
	assumeYes bool
	timeout   time.Duration

	listSearch string
	listSort   string
	listFilter []string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage site content through the REST API",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		rootCmd.PersistentPreRun(cmd, args)
		buildsite.LoadConfig(envFiles()...)
		if apiURL == "" {
			apiURL = buildsite.EnvOr("API_URL", "http://localhost:3001")
		}
		if tokenFile == "" {
			tokenFile = buildsite.EnvOr("API_TOKEN_FILE", defaultTokenFile())
		}
		return nil
	},
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".buildsite-token"
	}
	return filepath.Join(dir, "buildsite", "token")
}

// session bundles what every admin subcommand needs.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc
	api    *client.Client
	creds  client.FileCredentials
	gw     notify.Gateway
	out    io.Writer
}

func newSession(cmd *cobra.Command) *session {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	creds := client.FileCredentials{Path: tokenFile}
	var gw notify.Gateway = notify.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
	if assumeYes {
		gw = notify.Logger{Log: slog.Default(), Assume: true}
	}
	return &session{
		ctx:    ctx,
		cancel: cancel,
		api:    client.New(apiURL, client.WithCredentials(creds), client.WithLogger(slog.Default())),
		creds:  creds,
		gw:     gw,
		out:    cmd.OutOrStdout(),
	}
}

func (s *session) storeOptions() []collection.Option {
	return []collection.Option{collection.WithLogger(slog.Default())}
}

func (s *session) table() *tabwriter.Writer {
	return tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
}

// applyList applies the shared --search, --sort and --filter flags.
func applyList[T content.Entity, D any](l *console.List[T, D]) error {
	if listSearch != "" {
		l.Search(listSearch)
	}
	for _, f := range listFilter {
		field, value, ok := strings.Cut(f, "=")
		if !ok {
			return fmt.Errorf("filter %q: want field=value", f)
		}
		l.Filter(strings.TrimSpace(field), strings.TrimSpace(value))
	}
	if listSort != "" {
		for _, name := range strings.Split(listSort, ",") {
			l.SortBy(strings.TrimSpace(name))
		}
	}
	return nil
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive search")
	cmd.Flags().StringArrayVarP(&listFilter, "filter", "f", nil, "Equality filter field=value (repeatable)")
	cmd.Flags().StringVar(&listSort, "sort", "", "Sort key; repeat a key in a comma list to flip direction, e.g. title,title")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange the admin password for a stored bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			fmt.Fprint(s.out, "Password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && err != io.EOF {
				return err
			}
			password = strings.TrimSpace(line)
		}
		token, err := s.api.Login(s.ctx, password)
		if err != nil {
			return err
		}
		if err := s.creds.Save(token); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Logged in to %s\n", apiURL)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return client.FileCredentials{Path: tokenFile}.Clear()
	},
}

var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Show dashboard totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(cmd)
		defer s.cancel()
		d := console.NewDashboard(s.api, s.gw)
		if err := d.Refresh(s.ctx); err != nil {
			return err
		}
		c := d.Counts()
		w := s.table()
		fmt.Fprintf(w, "Blog posts\t%d\t(%d published)\n", c.Blogs, c.PublishedBlogs)
		fmt.Fprintf(w, "Jobs\t%d\t(%d active)\n", c.Jobs, c.ActiveJobs)
		fmt.Fprintf(w, "Applications\t%d\t(%d new)\n", c.Applications, c.NewApplications)
		fmt.Fprintf(w, "Messages\t%d\t(%d unread)\n", c.Contacts, c.UnreadContacts)
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (default $API_URL or http://localhost:3001)")
	adminCmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "Bearer token file (default $API_TOKEN_FILE)")
	adminCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to every confirmation")
	adminCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall command timeout")
	adminCmd.AddCommand(loginCmd, logoutCmd, countsCmd)
}

func shortDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}
