package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(prompt string) (bool, error)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Interactive bool

	// Confirm overrides the interactive prompt (for testing).
	// If nil, a huh confirm form is shown.
	Confirm ConfirmFunc
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return newDeleteCommand(&DeleteOptions{RootOptions: rootOpts})
}

func newDeleteCommand(opts *DeleteOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <scene>...",
		Short: "Clear every beat of one or more scenes",
		Long: `Clear every beat of the given scenes.

The scenes stay in the table as empty columns. Names that are not in the
scene list are reported and skipped; if none match nothing is written and
the command fails.

Example:
  beatgrid delete 1-1
  beatgrid delete 2-1 2-2 --interactive`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "ask before deleting")

	return cmd
}

func runDelete(opts *DeleteOptions, scenes []string, cmd *cobra.Command) error {
	if opts.Interactive {
		confirm := opts.Confirm
		if confirm == nil {
			confirm = confirmWithForm
		}
		ok, err := confirm(fmt.Sprintf("Delete all beats of %s?", strings.Join(scenes, ", ")))
		if err != nil {
			return WrapExitError(ExitFailure, "confirmation failed", err)
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted, nothing deleted.")
			return nil
		}
	}

	sess, err := opts.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.store.DeleteColumns(commandContext(cmd), scenes)
	if err != nil {
		return storeFailure("failed to delete scenes", err)
	}

	f := opts.formatter(cmd)
	reportDiagnostics(f, res.Diagnostics)
	if opts.Format == "json" {
		return f.Success(res)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Deleted beats of: %s\n", strings.Join(res.Removed, ", "))
	if len(res.Unmatched) > 0 {
		fmt.Fprintf(out, "Not in scene list: %s\n", strings.Join(res.Unmatched, ", "))
	}
	return nil
}

func confirmWithForm(prompt string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
