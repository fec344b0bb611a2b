package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <scene> <seconds>",
		Short: "Append one beat to a scene",
		Long: `Append one beat to the end of a scene's column.

The time is stored with three decimals. The reported beat row is the
position in the column before any later sort.

Example:
  beatgrid add 1-1 12.3456
  beatgrid add 2-3 0.5 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runAdd(opts *AddOptions, sceneName, rawTime string, cmd *cobra.Command) error {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(rawTime), 64)
	if err != nil {
		return NewExitError(ExitFailure, fmt.Sprintf("time %q is not a number", rawTime))
	}

	sess, err := opts.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.store.Append(commandContext(cmd), sceneName, seconds)
	if err != nil {
		return storeFailure("failed to add beat", err)
	}

	f := opts.formatter(cmd)
	reportDiagnostics(f, res.Diagnostics)
	if opts.Format == "json" {
		return f.Success(res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s beat %d at %s (column %d)\n", res.Scene, res.Index, res.Time, res.Column)
	return nil
}
