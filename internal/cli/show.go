package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/beatgrid/internal/beatstore"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the beat table",
		Long: `Print the beat table with one column per scene.

With --format json the output is {headers, rows}, the same shape the
HTTP API returns.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, cmd)
		},
	}

	return cmd
}

func runShow(opts *RootOptions, cmd *cobra.Command) error {
	sess, err := opts.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	view, err := sess.store.Read(commandContext(cmd))
	if err != nil {
		return storeFailure("failed to read beats", err)
	}

	f := opts.formatter(cmd)
	reportDiagnostics(f, view.Diagnostics)
	if opts.Format == "json" {
		return f.Success(view)
	}
	return writeTable(cmd.OutOrStdout(), view)
}

func writeTable(w io.Writer, view beatstore.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\t%s\n", strings.Join(view.Headers, "\t"))
	for i, row := range view.Rows {
		cells := make([]string, len(row))
		for j, c := range row {
			if c == "" {
				c = "-"
			}
			cells[j] = c
		}
		fmt.Fprintf(tw, "%d\t%s\n", i, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(view.Rows) == 0 {
		fmt.Fprintln(w, "(no beats recorded)")
	}
	return nil
}
