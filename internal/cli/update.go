package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/astroflix-site/reistream/internal/updater"
	"github.com/astroflix-site/reistream/internal/util"
	"github.com/astroflix-site/reistream/internal/version"
)

func (a *app) updateCmd() *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check for a newer release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var release *updater.Release
			var newer bool
			if err := a.fetch("Checking for updates...", func() error {
				var ferr error
				release, newer, ferr = updater.Check(cmd.Context(), a.httpClient, a.cfg.ReleasesURL, version.Version)
				return ferr
			}); err != nil {
				return errors.Wrap(err, "failed to check for updates")
			}

			if !newer {
				a.println(util.SuccessStyle.Render("You are running the latest version!"), "("+version.Version+")")
				return nil
			}

			a.printf("New version available: %s (current: %s)\n", release.TagName, version.Version)
			if release.HTMLURL != "" {
				a.println(release.HTMLURL)
			}

			if !open && a.opts.Interactive {
				var err error
				if open, err = updater.PromptForRelease(release); err != nil {
					return err
				}
			}
			if open {
				if err := updater.OpenRelease(release); err != nil {
					return errors.Wrap(err, "failed to open release page")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "open the release page in the browser")

	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				a.println(version.Version)
				return
			}
			version.ShowVersion(a.opts.Out)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")

	return cmd
}
