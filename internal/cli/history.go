package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent changes from the journal",
		Long: `List recorded table changes, newest first.

Requires a journal, set with --journal or the journal settings key.

Example:
  beatgrid history --journal beatgrid.db --limit 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum entries to show (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	s, err := opts.loadSettings()
	if err != nil {
		return err
	}
	if s.Journal == "" {
		return NewExitError(ExitFailure, "no journal configured: pass --journal or set journal in settings")
	}

	j, err := openJournal(s)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.List(commandContext(cmd), opts.Limit)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read journal", err)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded changes.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tWHEN\tOP\tSCENES\tDETAIL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			e.Seq,
			e.RecordedAt.Local().Format(time.DateTime),
			e.Op,
			strings.Join(e.Scenes, ","),
			e.Detail,
		)
	}
	return tw.Flush()
}
