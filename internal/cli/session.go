package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/beatgrid/internal/beatstore"
	"github.com/roach88/beatgrid/internal/config"
	"github.com/roach88/beatgrid/internal/journal"
	"github.com/roach88/beatgrid/internal/notify"
)

// session is the resolved settings plus the collaborators one command uses.
type session struct {
	settings config.Settings
	journal  *journal.Journal
	store    *beatstore.Store
	logger   *slog.Logger
}

// loadSettings reads the settings file and applies flag overrides.
func (o *RootOptions) loadSettings() (config.Settings, error) {
	path, explicit := o.ConfigPath, o.ConfigPath != ""
	if !explicit {
		path = config.DefaultFile
	}
	s, err := config.Load(path, explicit)
	if err != nil {
		return config.Settings{}, WrapExitError(ExitFailure, "failed to load settings", err)
	}

	if o.ScenesPath != "" {
		s.SceneList = o.ScenesPath
	}
	if o.BeatsPath != "" {
		s.BeatsCSV = o.BeatsPath
	}
	if o.MediaDir != "" {
		s.MediaDir = o.MediaDir
	}
	if o.JournalPath != "" {
		s.Journal = o.JournalPath
	}
	return s, nil
}

// openJournal opens the configured journal, or returns nil when none is set.
func openJournal(s config.Settings) (*journal.Journal, error) {
	if s.Journal == "" {
		return nil, nil
	}
	j, err := journal.Open(s.Journal)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to open journal", err)
	}
	return j, nil
}

// openSession builds the store with its optional journal and OSC notifier.
func (o *RootOptions) openSession() (*session, error) {
	s, err := o.loadSettings()
	if err != nil {
		return nil, err
	}

	sess := &session{settings: s, logger: slog.Default()}
	storeOpts := beatstore.Options{
		ScenesPath: s.SceneList,
		BeatsPath:  s.BeatsCSV,
		Logger:     sess.logger,
	}

	j, err := openJournal(s)
	if err != nil {
		return nil, err
	}
	if j != nil {
		sess.journal = j
		storeOpts.Journal = j
	}

	if s.OSC.Enabled() {
		n := notify.NewOSC(s.OSC.Host, s.OSC.Port)
		storeOpts.Notifier = n
		sess.logger.Debug("osc notifications enabled", "target", n.Target())
	}

	sess.store = beatstore.New(storeOpts)
	return sess, nil
}

func (s *session) Close() {
	if s.journal == nil {
		return
	}
	if err := s.journal.Close(); err != nil {
		s.logger.Error("error closing journal", "error", err)
	}
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// storeFailure wraps a store error for the exit code path.
func storeFailure(message string, err error) error {
	return WrapExitError(ExitFailure, message, err)
}

// reportDiagnostics logs what the lenient table decode skipped.
func reportDiagnostics(f *OutputFormatter, d beatstore.Diagnostics) {
	f.VerboseLog("table layout: %s", d.Layout)
	if len(d.IgnoredColumns) > 0 {
		f.VerboseLog("ignored columns not in scene list: %v", d.IgnoredColumns)
	}
	if d.IgnoredRows > 0 {
		f.VerboseLog("ignored %d legacy rows for unknown scenes", d.IgnoredRows)
	}
}
