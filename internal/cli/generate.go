package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/beatgrid/internal/beattable"
	"github.com/roach88/beatgrid/internal/journal"
	"github.com/roach88/beatgrid/internal/scene"
	"github.com/roach88/beatgrid/internal/tempo"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Output      string
	BeatsPerBar int
	WriteScenes bool
}

// GeneratedScene is the per-scene summary printed by generate.
type GeneratedScene struct {
	Scene string `json:"scene"`
	Beats int    `json:"beats"`
}

// GenerateResult is the generate command's output.
type GenerateResult struct {
	Output      string           `json:"output"`
	BeatsPerBar int              `json:"beats_per_bar"`
	ScenesFile  string           `json:"scenes_file,omitempty"`
	Scenes      []GeneratedScene `json:"scenes"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <plan.csv>",
		Short: "Seed the beat table from a tempo plan",
		Long: `Generate evenly spaced beats for every scene in a tempo plan.

The plan is a CSV with the columns scene, start_sec, end_sec and bpm.
Beats start at start_sec and stop before end_sec. With --beats 4 the
spacing is 60/bpm seconds; with --beats 8 it is 30/bpm.

The output table replaces any existing file. Its columns follow the plan
order; pass --write-scenes to write that order to the scene list as well.

Example:
  beatgrid generate plan.csv
  beatgrid generate plan.csv -o beats.csv --beats 8 --write-scenes`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output CSV (default: beats_csv from settings)")
	cmd.Flags().IntVar(&opts.BeatsPerBar, "beats", 0, "beats per bar, 4 or 8 (default: beats_per_bar from settings)")
	cmd.Flags().BoolVar(&opts.WriteScenes, "write-scenes", false, "also write the plan's scene order to the scene list")

	return cmd
}

func runGenerate(opts *GenerateOptions, planPath string, cmd *cobra.Command) error {
	s, err := opts.loadSettings()
	if err != nil {
		return err
	}

	beatsPerBar := opts.BeatsPerBar
	if beatsPerBar == 0 {
		beatsPerBar = s.BeatsPerBar
	}
	if !tempo.ValidBeatsPerBar(beatsPerBar) {
		return NewExitError(ExitFailure, fmt.Sprintf("--beats must be %d or %d, got %d", tempo.QuarterBeats, tempo.EighthBeats, beatsPerBar))
	}

	output := opts.Output
	if output == "" {
		output = s.BeatsCSV
	}

	plan, err := tempo.LoadPlan(planPath)
	if err != nil {
		if errors.Is(err, tempo.ErrPlanNotFound) {
			return WrapExitError(ExitFailure, "tempo plan not found", err)
		}
		return WrapExitError(ExitFailure, "failed to read tempo plan", err)
	}

	columns := tempo.Build(plan, beatsPerBar)
	reg, table := tempo.SeedTable(columns)
	if err := beattable.WriteFile(output, table); err != nil {
		return WrapExitError(ExitFailure, "failed to write beat table", err)
	}

	result := GenerateResult{
		Output:      output,
		BeatsPerBar: beatsPerBar,
		Scenes:      make([]GeneratedScene, len(columns)),
	}
	for i, c := range columns {
		result.Scenes[i] = GeneratedScene{Scene: c.Scene, Beats: len(c.Beats)}
	}

	if opts.WriteScenes {
		if err := scene.WriteFile(s.SceneList, reg); err != nil {
			return WrapExitError(ExitFailure, "failed to write scene list", err)
		}
		result.ScenesFile = s.SceneList
	}

	if err := recordGenerate(cmd, s.Journal, reg.Names(), result); err != nil {
		return err
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(result)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s: %d scenes, %d beats per bar\n", result.Output, len(result.Scenes), result.BeatsPerBar)
	for _, sc := range result.Scenes {
		fmt.Fprintf(out, "  %s: %d beats\n", sc.Scene, sc.Beats)
	}
	if result.ScenesFile != "" {
		fmt.Fprintf(out, "Wrote scene list %s\n", result.ScenesFile)
	}
	return nil
}

// recordGenerate journals the seed when a journal is configured. Journal
// write failures are logged; the table is already on disk.
func recordGenerate(cmd *cobra.Command, path string, scenes []string, result GenerateResult) error {
	if path == "" {
		return nil
	}
	j, err := journal.Open(path)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to open journal", err)
	}
	defer j.Close()

	_, err = j.Record(commandContext(cmd), journal.Entry{
		Op:     journal.OpGenerate,
		Scenes: scenes,
		Detail: fmt.Sprintf("beats_per_bar=%d output=%s", result.BeatsPerBar, result.Output),
	})
	if err != nil {
		slog.Error("journal write failed", "op", journal.OpGenerate, "error", err)
	}
	return nil
}
