// Package cli is the reistream command tree
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/astroflix-site/reistream/internal/config"
	"github.com/astroflix-site/reistream/internal/storage"
	"github.com/astroflix-site/reistream/internal/updater"
	"github.com/astroflix-site/reistream/internal/util"
	"github.com/astroflix-site/reistream/pkg/reistream"
)

// updateCheckTimeout bounds the background release check so it never delays a command noticeably
const updateCheckTimeout = 3 * time.Second

// Options are the process-level inputs of the command tree
type Options struct {
	Out io.Writer
	Err io.Writer
	// Args replaces os.Args[1:] when non-nil
	Args []string
	// Environ replaces the process environment when non-nil
	Environ map[string]string
	// Store and HTTPClient override what the config would build
	Store      storage.Store
	HTTPClient *http.Client
	// Interactive enables prompts, pickers and spinners
	Interactive bool
}

type app struct {
	opts Options
	cfg  *config.Config

	debug  bool
	apiURL string

	httpClient *http.Client
	client     *reistream.Client
}

// Execute runs the command tree and returns the process exit code
func Execute(ctx context.Context, opts Options) int {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	a := &app{opts: opts}
	root := a.rootCmd()
	if opts.Args != nil {
		root.SetArgs(opts.Args)
	}

	err := root.ExecuteContext(ctx)
	if closeErr := a.close(); closeErr != nil {
		util.Warnf("Failed to close client: %v", closeErr)
	}
	if err != nil {
		_, _ = fmt.Fprintln(opts.Err, util.ErrorHandler(err))
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reistream",
		Short: "Browse and watch the Reistream catalog from your terminal",
		Long: `Reistream is a terminal client for the Reistream anime catalog.

Browse and search series, page through seasons, open an episode on one of
its servers, and keep a watchlist. Signed in, the watchlist lives on your
account; signed out, it is kept on this device.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure()
		},
	}
	root.SetOut(a.opts.Out)
	root.SetErr(a.opts.Err)

	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging and detailed errors")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "override the API base URL")

	root.AddCommand(
		a.browseCmd(),
		a.searchCmd(),
		a.showCmd(),
		a.episodeCmd(),
		a.watchCmd(),
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.profileCmd(),
		a.watchlistCmd(),
		a.updateCmd(),
		a.versionCmd(),
	)

	return root
}

// configure applies environment then flags; it runs before every command
func (a *app) configure() error {
	cfg, err := config.LoadFrom(a.opts.Environ)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Debug = true
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	a.cfg = cfg

	util.SetDebugMode(cfg.Debug)
	util.InitLoggerTo(a.opts.Err)
	util.Debug("Configuration loaded", "api", cfg.APIURL, "data_dir", cfg.DataDir)

	a.httpClient = a.opts.HTTPClient
	if a.httpClient == nil {
		a.httpClient = util.NewHTTPClient(cfg.HTTPTimeout)
	}
	return nil
}

// connect builds the application context on first use. Session hydration and the
// release check run concurrently; neither can fail the command.
func (a *app) connect(ctx context.Context) (*reistream.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	c, err := reistream.New(reistream.Options{
		APIURL:       a.cfg.APIURL,
		DatabasePath: a.cfg.DatabasePath(),
		Store:        a.opts.Store,
		HTTPClient:   a.httpClient,
	})
	if err != nil {
		return nil, err
	}
	a.client = c

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		c.Start(gctx)
		util.Debug("Session ready", "elapsed", time.Since(start), "signed_in", c.Session().IsAuthenticated())
		return nil
	})
	if !a.cfg.SkipUpdateCheck {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(gctx, updateCheckTimeout)
			defer cancel()
			updater.CheckQuietly(checkCtx, a.httpClient, a.cfg.ReleasesURL)
			return nil
		})
	}
	_ = g.Wait()

	return c, nil
}

func (a *app) close() error {
	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	return err
}

// fetch runs fn behind a spinner when attached to a terminal
func (a *app) fetch(title string, fn func() error) error {
	if !a.opts.Interactive {
		return fn()
	}
	var err error
	if spinErr := spinner.New().
		Title(title).
		Type(spinner.Dots).
		Action(func() {
			err = fn()
		}).
		Run(); spinErr != nil {
		return spinErr
	}
	return err
}

func (a *app) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(a.opts.Out, format, args...)
}

func (a *app) println(args ...interface{}) {
	_, _ = fmt.Fprintln(a.opts.Out, args...)
}
