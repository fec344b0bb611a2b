package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/roach88/beatgrid/internal/testutil"
)

// workspace is a temp directory with a settings file pointing at a scene
// list, a beat table and a journal next to it.
type workspace struct {
	dir      string
	settings string
	scenes   string
	beats    string
	journal  string
}

func newWorkspace(t *testing.T, scenes, beats string) *workspace {
	t.Helper()
	dir := t.TempDir()
	w := &workspace{
		dir:      dir,
		settings: filepath.Join(dir, "beatgrid.yaml"),
		scenes:   filepath.Join(dir, "scene_list.txt"),
		beats:    filepath.Join(dir, "beats.csv"),
		journal:  filepath.Join(dir, "journal.db"),
	}
	testutil.WriteFile(t, dir, "beatgrid.yaml", "scene_list: scene_list.txt\nbeats_csv: beats.csv\njournal: journal.db\n")
	if scenes != "" {
		testutil.WriteFile(t, dir, "scene_list.txt", scenes)
	}
	if beats != "" {
		testutil.WriteFile(t, dir, "beats.csv", beats)
	}
	return w
}

func (w *workspace) rootOpts(format string) *RootOptions {
	return &RootOptions{Format: format, ConfigPath: w.settings}
}

func (w *workspace) readBeats(t *testing.T) string {
	t.Helper()
	return testutil.ReadFile(t, w.beats)
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
