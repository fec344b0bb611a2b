package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/beatgrid/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tapping UI and beat API over HTTP",
		Long: `Serve the browser UI for tapping beats while audio plays.

Audio files are listed from the media directory and streamed with range
support. Every recorded beat goes through the same store as the add
command. The server stops on SIGINT or SIGTERM.

Example:
  beatgrid serve
  beatgrid serve --listen 0.0.0.0:8080 --media-dir ./audio`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (default: listen from settings)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	sess, err := opts.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	addr := opts.Listen
	if addr == "" {
		addr = sess.settings.Listen
	}

	srv := server.New(server.Options{
		Beats:           sess.store,
		MediaDir:        sess.settings.MediaDir,
		MediaExtensions: sess.settings.MediaExtensions,
		RatePerSecond:   sess.settings.RateLimit.PerSecond,
		RateBurst:       sess.settings.RateLimit.Burst,
		Logger:          sess.logger,
	})

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", addr)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	return nil
}
