package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSortCommand creates the sort command.
func NewSortCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort each scene's beats and drop unusable cells",
		Long: `Sort every scene's beats in ascending time order.

Cells that are not numbers are dropped and the remaining values are
rewritten with three decimals, leaving no gaps.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(rootOpts, cmd)
		},
	}

	return cmd
}

func runSort(opts *RootOptions, cmd *cobra.Command) error {
	sess, err := opts.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.store.SortAndCompact(commandContext(cmd))
	if err != nil {
		return storeFailure("failed to sort beats", err)
	}

	f := opts.formatter(cmd)
	reportDiagnostics(f, res.Diagnostics)
	if opts.Format == "json" {
		return f.Success(res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sorted %d scenes: %d beats kept, %d cells dropped\n", res.Scenes, res.Kept, res.Dropped)
	return nil
}
