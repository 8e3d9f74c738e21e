package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/astroflix-site/reistream/internal/api"
	"github.com/astroflix-site/reistream/internal/models"
	"github.com/astroflix-site/reistream/internal/util"
	"github.com/astroflix-site/reistream/pkg/reistream"
)

func (a *app) watchlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watchlist",
		Aliases: []string{"wl"},
		Short:   "List your watchlist",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			a.renderWatchlist(c)
			return nil
		},
	}

	cmd.AddCommand(
		a.watchlistAddCmd(),
		a.watchlistRemoveCmd(),
		a.watchlistRefreshCmd(),
	)

	return cmd
}

func (a *app) renderWatchlist(c *reistream.Client) {
	where := "This device's watchlist"
	if id := c.Session().Identity(); id != nil {
		where = id.Username + "'s watchlist"
	}
	a.println(util.TitleStyle.Render(where))

	entries := c.Watchlist().Entries()
	if len(entries) == 0 {
		a.println(util.MutedStyle.Render("Your watchlist is empty"))
		return
	}
	renderSeriesList(a.opts.Out, entries, nil)
}

func (a *app) watchlistAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <series-id>",
		Short: "Add a series to your watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			id := models.ContentID(args[0])
			if c.Watchlist().IsInWatchlist(id) {
				a.printf("%s is already in your watchlist\n", id)
				return nil
			}

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

			// the snapshot renders the list offline; episodes are refetched on demand
			snapshot := *series
			snapshot.Episodes = nil
			if err := c.Watchlist().Add(cmd.Context(), snapshot); err != nil {
				return err
			}
			a.printf("%s %s\n", util.SuccessStyle.Render("Added"), snapshot.Title)
			return nil
		},
	}
}

func (a *app) watchlistRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <series-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a series from your watchlist",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			id := models.ContentID(args[0])
			if !c.Watchlist().IsInWatchlist(id) {
				a.printf("%s is not in your watchlist\n", id)
				return nil
			}
			if err := c.Watchlist().Remove(cmd.Context(), id); err != nil {
				return err
			}
			a.printf("%s %s\n", util.SuccessStyle.Render("Removed"), id)
			return nil
		},
	}
}

func (a *app) watchlistRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload your watchlist from its source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			_ = a.fetch("Refreshing watchlist...", func() error {
				c.Watchlist().Refetch(cmd.Context())
				return nil
			})
			a.renderWatchlist(c)
			return nil
		},
	}
}
