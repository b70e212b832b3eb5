// Package cmd implements the snaptop command line.
package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	backendURL string
	logLevel   string
	ephemeral  bool
	logOutput  io.Writer
}

// NewRootCommand builds the snaptop command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{logOutput: os.Stderr}

	root := &cobra.Command{
		Use:   "snaptop",
		Short: "Snap Top - generate recipes from a description",
		Long: `Snap Top turns a description of what you want to cook into a full recipe
with ingredients, instructions and nutrition. Sign in with Google or Facebook to
keep your session between runs.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logOutput = cmd.ErrOrStderr()
		},
	}

	root.PersistentFlags().StringVar(&opts.backendURL, "backend-url", "", "recipe backend URL (overrides BACKEND_URL)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	root.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "keep the session in memory only")

	root.AddCommand(
		newGenerateCommand(opts),
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newHealthCommand(opts),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// withApp builds the app for the duration of fn
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(*app) error) error {
	a, err := newApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
