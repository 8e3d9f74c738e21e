package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/pkg/browser"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/astroflix-site/reistream/internal/api"
	"github.com/astroflix-site/reistream/internal/catalog"
	"github.com/astroflix-site/reistream/internal/models"
	"github.com/astroflix-site/reistream/internal/util"
)

// openURL is swapped in tests
var openURL = browser.OpenURL

func (a *app) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "List every series in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			var list []models.Series
			if err := a.fetch("Loading catalog...", func() error {
				var ferr error
				list, ferr = c.API().AllSeries(cmd.Context())
				return ferr
			}); err != nil {
				return errors.Wrap(err, "failed to load catalog")
			}

			if len(list) == 0 {
				a.println(util.MutedStyle.Render("The catalog is empty"))
				return nil
			}
			renderSeriesList(a.opts.Out, models.SortSeriesByTitle(list), c.Watchlist().IsInWatchlist)
			return nil
		},
	}
}

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [title]",
		Short: "Search series by title",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" && a.opts.Interactive {
				if err := huh.NewInput().
					Title("Search").
					Placeholder("series title").
					Value(&query).
					Run(); err != nil {
					return err
				}
				query = strings.TrimSpace(query)
			}
			if query == "" {
				return errors.New("search needs a title")
			}

			c, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			var results []models.Series
			if err := a.fetch("Searching...", func() error {
				var ferr error
				results, ferr = c.API().SearchSeries(cmd.Context(), query)
				return ferr
			}); err != nil {
				return errors.Wrapf(err, "search for %q failed", query)
			}

			if len(results) == 0 {
				a.printf("No series found for %q\n", query)
				return nil
			}
			renderSeriesList(a.opts.Out, results, c.Watchlist().IsInWatchlist)
			return nil
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	var season, page int

	cmd := &cobra.Command{
		Use:   "show <series-id>",
		Short: "Show a series with one page of episodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			id := models.ContentID(args[0])
			var series *models.Series
			if err := a.fetch("Loading series...", func() error {
				var ferr error
				series, ferr = c.API().SeriesDetails(cmd.Context(), id)
				return ferr
			}); err != nil {
				if errors.Is(err, api.ErrNotFound) {
					return fmt.Errorf("series %s not found", id)
				}
				return errors.Wrap(err, "failed to load series")
			}

			seasons := catalog.Seasons(series.Episodes)
			if season == 0 {
				season = catalog.DefaultSeason(series.Episodes)
			} else if len(seasons) > 0 && !slices.Contains(seasons, season) {
				return fmt.Errorf("season %d not found; available: %s", season, joinInts(seasons))
			}

			total := catalog.TotalPages(len(catalog.SeasonEpisodes(series.Episodes, season)))
			if page < 1 {
				page = 1
			}
			if page > total {
				page = total
			}

			renderSeries(a.opts.Out, series, season, page, c.Watchlist().IsInWatchlist(series.ID))
			return nil
		},
	}

	cmd.Flags().IntVarP(&season, "season", "s", 0, "season to list (default: first season)")
	cmd.Flags().IntVarP(&page, "page", "p", 1, fmt.Sprintf("episode page, %d per page", catalog.EpisodesPerPage))

	return cmd
}

func (a *app) episodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "episode <episode-id>",
		Short: "Show an episode and its servers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ep, err := a.loadEpisode(cmd, models.ContentID(args[0]))
			if err != nil {
				return err
			}
			renderEpisode(a.opts.Out, ep)
			return nil
		},
	}
}

func (a *app) watchCmd() *cobra.Command {
	var serverName string
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "watch <episode-id>",
		Short: "Open an episode on one of its servers",
		Long: `Open an episode in the browser. The first server is used unless --server
names another one; on a terminal you can pick from the list instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ep, err := a.loadEpisode(cmd, models.ContentID(args[0]))
			if err != nil {
				return err
			}

			srv, err := a.chooseServer(ep, serverName)
			if err != nil {
				return err
			}

			if printOnly {
				a.println(srv.URL)
				return nil
			}
			a.printf("Opening %s on %s\n", ep.Title, srv.Name)
			if err := openURL(srv.URL); err != nil {
				return errors.Wrap(err, "failed to open browser")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverName, "server", "", "server name to use")
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the stream URL instead of opening it")

	return cmd
}

func (a *app) loadEpisode(cmd *cobra.Command, id models.ContentID) (*models.Episode, error) {
	c, err := a.connect(cmd.Context())
	if err != nil {
		return nil, err
	}

	var ep *models.Episode
	if err := a.fetch("Loading episode...", func() error {
		var ferr error
		ep, ferr = c.API().EpisodeDetails(cmd.Context(), id)
		return ferr
	}); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, fmt.Errorf("episode %s not found", id)
		}
		return nil, errors.Wrap(err, "failed to load episode")
	}
	return ep, nil
}

// chooseServer resolves the server by name, by picker, or falls back to the first
func (a *app) chooseServer(ep *models.Episode, name string) (*models.Server, error) {
	if len(ep.Servers) == 0 {
		return nil, fmt.Errorf("episode %s has no servers", ep.ID)
	}

	if name != "" {
		for i := range ep.Servers {
			if strings.EqualFold(ep.Servers[i].Name, name) {
				return &ep.Servers[i], nil
			}
		}
		return nil, fmt.Errorf("server %q not found for episode %s", name, ep.ID)
	}

	if a.opts.Interactive && len(ep.Servers) > 1 {
		idx, err := fuzzyfinder.Find(
			ep.Servers,
			func(i int) string {
				return ep.Servers[i].Name
			},
			fuzzyfinder.WithPromptString("Select the server: "),
		)
		if err != nil {
			return nil, errors.Wrap(err, "server selection cancelled")
		}
		return &ep.Servers[idx], nil
	}

	return catalog.DefaultServer(ep), nil
}

func joinInts(list []int) string {
	parts := make([]string, len(list))
	for i, n := range list {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
