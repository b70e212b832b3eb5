package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pageza/snaptop/client/internal/identity"
	"github.com/pageza/snaptop/client/internal/models"
	"github.com/pageza/snaptop/client/internal/server"
	"github.com/pageza/snaptop/client/internal/service"
)

const loginTimeout = 5 * time.Minute

func newLoginCommand(opts *rootOptions) *cobra.Command {
	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a third-party account",
	}
	login.AddCommand(
		&cobra.Command{
			Use:   "google",
			Short: "Sign in with Google in your browser",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(a *app) error { return loginGoogle(cmd, a) })
			},
		},
		&cobra.Command{
			Use:   "facebook",
			Short: "Sign in with Facebook using a device code",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(a *app) error { return loginFacebook(cmd, a) })
			},
		},
	)
	return login
}

func loginGoogle(cmd *cobra.Command, a *app) error {
	if a.cfg.GoogleClientID == "" {
		return errors.New("GOOGLE_CLIENT_ID is not set")
	}
	widget := identity.NewGoogleWidget(a.cfg.GoogleClientID, a.log)
	srv := server.NewCallbackServer(a.cfg.CallbackAddr, widget, a.log)
	if err := srv.Start(); err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Open %s in your browser to sign in with Google.\n", srv.LoginURL())
	return signIn(cmd, a, widget)
}

func loginFacebook(cmd *cobra.Command, a *app) error {
	loader := identity.NewLoader(identity.FacebookConfig{
		AppID:       a.cfg.FacebookAppID,
		ClientToken: a.cfg.FacebookClientToken,
		GraphURL:    a.cfg.FacebookGraphURL,
		APIVersion:  a.cfg.FacebookAPIVersion,
	}, nil, a.log)
	if err := loader.Load(cmd.Context()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	sdk := identity.NewFacebookSDK(loader, func(_ context.Context, p identity.DevicePrompt) error {
		_, err := fmt.Fprintf(out, "Visit %s and enter the code %s (valid for %s).\n",
			p.VerificationURI, p.UserCode, p.ExpiresIn)
		return err
	})
	return signIn(cmd, a, sdk)
}

func signIn(cmd *cobra.Command, a *app, provider identity.Provider) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
	defer cancel()

	resp, err := a.login.SignIn(ctx, identity.Source{Provider: provider})
	if err != nil {
		msg := service.SignInMessage(provider.Name(), err)
		if errors.Is(err, service.ErrProviderCancelled) {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}
		return errors.New(msg)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", describeUser(&resp.User))
	return nil
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if err := a.login.SignOut(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
				return nil
			})
		},
	}
}

func newWhoamiCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				user := a.sessions.User()
				if user == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s via %s\n", describeUser(user), user.Provider)
				return nil
			})
		},
	}
}

func describeUser(u *models.User) string {
	name := u.Name
	if name == "" {
		name = u.Initials()
	}
	if u.Email == "" {
		return name
	}
	return fmt.Sprintf("%s <%s>", name, u.Email)
}

func newHealthCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the recipe backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				h, err := a.backend.Health(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", h.Service, h.Status)
				return nil
			})
		},
	}
}
