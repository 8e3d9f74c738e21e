package cli

import (
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/astroflix-site/reistream/internal/api"
	"github.com/astroflix-site/reistream/internal/models"
	"github.com/astroflix-site/reistream/internal/session"
	"github.com/astroflix-site/reistream/internal/util"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in; your watchlist switches to your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (email == "" || password == "") && a.opts.Interactive {
				form := huh.NewForm(
					huh.NewGroup(
						huh.NewInput().Title("Email").Value(&email),
						huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
					),
				)
				if err := form.Run(); err != nil {
					return err
				}
			}
			email = strings.TrimSpace(email)
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}

			c, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			if err := a.fetch("Signing in...", func() error {
				return c.Session().Login(cmd.Context(), email, password)
			}); err != nil {
				return friendly("login failed", err)
			}

			renderIdentity(a.opts.Out, c.Session().Identity())
			a.printf("%d series in your watchlist\n", len(c.Watchlist().Entries()))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")

	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var req models.RegisterRequest
	var confirm string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (req.Username == "" || req.Email == "" || req.Password == "" || confirm == "") && a.opts.Interactive {
				form := huh.NewForm(
					huh.NewGroup(
						huh.NewInput().Title("Username").Value(&req.Username),
						huh.NewInput().Title("Email").Value(&req.Email),
						huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&req.Password),
						huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&confirm),
					),
				)
				if err := form.Run(); err != nil {
					return err
				}
			}
			req.Username = strings.TrimSpace(req.Username)
			req.Email = strings.TrimSpace(req.Email)

			if err := session.ValidateRegistration(req, confirm); err != nil {
				return err
			}

			c, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			if err := a.fetch("Creating account...", func() error {
				return c.Session().Register(cmd.Context(), req)
			}); err != nil {
				return friendly("registration failed", err)
			}

			a.println(util.SuccessStyle.Render("Account created."), "Sign in with `reistream login`.")
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "username (at least 6 characters)")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (at least 8 characters)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "repeat the password")

	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out; your watchlist switches back to this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			if !c.Session().IsAuthenticated() {
				a.println("Not signed in")
				return nil
			}
			if err := c.Session().Logout(cmd.Context()); err != nil {
				return err
			}
			a.println(util.SuccessStyle.Render("Signed out"))
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			renderIdentity(a.opts.Out, c.Session().Identity())
			return nil
		},
	}
}

func (a *app) profileCmd() *cobra.Command {
	var update models.ProfileUpdate

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change your username or email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			current := c.Session().Identity()
			if current == nil {
				return session.ErrNotAuthenticated
			}

			if update.Username == "" && update.Email == "" && a.opts.Interactive {
				update.Username, update.Email = current.Username, current.Email
				form := huh.NewForm(
					huh.NewGroup(
						huh.NewInput().Title("Username").Value(&update.Username),
						huh.NewInput().Title("Email").Value(&update.Email),
					),
				)
				if err := form.Run(); err != nil {
					return err
				}
			}
			if update.Username == "" {
				update.Username = current.Username
			}
			if update.Email == "" {
				update.Email = current.Email
			}

			if err := a.fetch("Saving profile...", func() error {
				return c.Session().UpdateProfile(cmd.Context(), update)
			}); err != nil {
				if errors.Is(err, session.ErrProfileIncomplete) {
					return err
				}
				return friendly("profile update failed", err)
			}

			renderIdentity(a.opts.Out, c.Session().Identity())
			return nil
		},
	}

	cmd.Flags().StringVar(&update.Username, "username", "", "new username")
	cmd.Flags().StringVar(&update.Email, "email", "", "new email")

	return cmd
}

// friendly surfaces the backend's message and keeps the full chain in the debug log
func friendly(prefix string, err error) error {
	util.Debug(prefix, "err", err)
	return errors.New(prefix + ": " + api.Message(err))
}
