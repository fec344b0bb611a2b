package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// ConfigPath is the settings file. Empty means config.DefaultFile if present.
	ConfigPath string

	// Path overrides applied on top of the settings file.
	ScenesPath  string
	BeatsPath   string
	MediaDir    string
	JournalPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the beatgrid CLI.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

func newRootCommand() (*cobra.Command, *RootOptions) {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "beatgrid",
		Short: "beatgrid - per-scene beat timestamps",
		Long: `Record and maintain per-scene beat timestamps used to cut video to music.

Beats live in a CSV table with one column per scene, in the order given by
the scene list file. Older row-per-scene tables are read transparently and
rewritten in the column layout on the next change.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), opts.Verbose))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "settings file (default ./beatgrid.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.ScenesPath, "scenes", "", "scene list file")
	cmd.PersistentFlags().StringVar(&opts.BeatsPath, "beats-file", "", "beat table CSV")
	cmd.PersistentFlags().StringVar(&opts.MediaDir, "media-dir", "", "directory of audio files to serve")
	cmd.PersistentFlags().StringVar(&opts.JournalPath, "journal", "", "SQLite operation journal")

	// Add subcommands
	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewSortCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd, opts
}

// Execute runs the CLI with args and returns the process exit code.
// Errors are reported on stderr, or on stdout as a JSON response when
// --format json is in effect.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd, opts := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	f := &OutputFormatter{Format: opts.Format, Writer: stderr, Verbose: opts.Verbose}
	if opts.Format == "json" {
		f.Writer = stdout
	}
	_ = f.Error(errorCode(err), err.Error(), nil)
	return GetExitCode(err)
}

// newLogger returns a slog logger backed by charmbracelet/log.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "beatgrid",
		ReportTimestamp: true,
	})
	return slog.New(handler)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
