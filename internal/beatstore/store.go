package beatstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/roach88/beatgrid/internal/beattable"
	"github.com/roach88/beatgrid/internal/journal"
	"github.com/roach88/beatgrid/internal/scene"
	"github.com/roach88/beatgrid/internal/tempo"
)

// Recorder persists an operation history entry.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) (journal.Entry, error)
}

// Notifier is told about changes after they are persisted.
type Notifier interface {
	BeatAppended(scene string, index int, value string) error
	ScenesCleared(scenes []string) error
	TableSorted(scenes int) error
}

// Options configures a Store.
type Options struct {
	ScenesPath string
	BeatsPath  string

	// Journal and Notifier are optional.
	Journal  Recorder
	Notifier Notifier

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Store serializes read-mutate-write cycles on one beat table file.
type Store struct {
	mu sync.Mutex

	scenesPath string
	beatsPath  string
	journal    Recorder
	notifier   Notifier
	logger     *slog.Logger
}

// New creates a Store. No file is touched until the first operation.
func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		scenesPath: opts.ScenesPath,
		beatsPath:  opts.BeatsPath,
		journal:    opts.Journal,
		notifier:   opts.Notifier,
		logger:     logger,
	}
}

// Diagnostics reports what the lenient decode of the current file dropped.
type Diagnostics struct {
	Layout         string   `json:"layout"`
	IgnoredColumns []string `json:"ignored_columns,omitempty"`
	IgnoredRows    int      `json:"ignored_rows,omitempty"`
}

// AppendResult describes a recorded beat.
type AppendResult struct {
	Scene  string `json:"scene"`
	Time   string `json:"time"`
	Index  int    `json:"beat_row"`
	Column int    `json:"scene_col"`

	Diagnostics Diagnostics `json:"-"`
}

// DeleteResult lists which requested scenes were cleared.
type DeleteResult struct {
	Removed   []string `json:"removed"`
	Unmatched []string `json:"unmatched"`

	Diagnostics Diagnostics `json:"diagnostics"`
}

// SortResult counts what sort-and-compact kept and dropped.
type SortResult struct {
	Scenes  int `json:"scenes"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`

	Diagnostics Diagnostics `json:"diagnostics"`
}

// View is the padded, column-major projection of the table.
type View struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`

	Diagnostics Diagnostics `json:"-"`
}

// snapshot is the decoded state one operation works on.
type snapshot struct {
	reg   *scene.Registry
	table *beattable.Table
	diag  Diagnostics
}

// Scenes returns the scene list in column order.
func (s *Store) Scenes(ctx context.Context) ([]string, error) {
	reg, err := s.loadRegistry()
	if err != nil {
		return nil, err
	}
	return reg.Names(), nil
}

// Read returns the table padded to a common row length. It does not write.
func (s *Store) Read(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return View{}, err
	}
	rows := snap.table.Rows()
	return View{
		Headers:     snap.reg.Names(),
		Rows:        rows,
		Diagnostics: snap.diag,
	}, nil
}

// Append formats seconds to three decimals and adds it at the end of
// sceneName's column. The returned index is the column length before the
// append; it is positional and changes when the table is sorted.
func (s *Store) Append(ctx context.Context, sceneName string, seconds float64) (AppendResult, error) {
	name := scene.Normalize(sceneName)
	if name == "" {
		return AppendResult{}, newInvalidInput("scene must not be empty")
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return AppendResult{}, newInvalidInput("time must be a finite number")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return AppendResult{}, err
	}
	if !snap.reg.Contains(name) {
		return AppendResult{}, newInvalidScene(name)
	}

	value := tempo.Format(seconds)
	index := snap.table.Append(name, value)
	if err := s.persist(snap.table); err != nil {
		return AppendResult{}, err
	}

	res := AppendResult{
		Scene:       name,
		Time:        value,
		Index:       index,
		Column:      snap.reg.Index(name),
		Diagnostics: snap.diag,
	}
	s.logger.Info("beat appended", "scene", name, "time", value, "index", index)

	s.record(ctx, journal.Entry{
		Op:     journal.OpAppend,
		Scenes: []string{name},
		Detail: fmt.Sprintf("index=%d time=%s", index, value),
	})
	if s.notifier != nil {
		s.announce(s.notifier.BeatAppended(name, index, value))
	}
	return res, nil
}

// DeleteColumns empties the columns of every requested scene that is
// registered. Names that are not registered are reported in Unmatched.
func (s *Store) DeleteColumns(ctx context.Context, scenes []string) (DeleteResult, error) {
	requested := make([]string, 0, len(scenes))
	for _, n := range scenes {
		if n = scene.Normalize(n); n != "" {
			requested = append(requested, n)
		}
	}
	if len(requested) == 0 {
		return DeleteResult{}, newInvalidInput("at least one scene is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return DeleteResult{}, err
	}

	res := DeleteResult{Removed: []string{}, Unmatched: []string{}, Diagnostics: snap.diag}
	seen := make(map[string]bool, len(requested))
	for _, n := range requested {
		if seen[n] {
			continue
		}
		seen[n] = true
		if snap.reg.Contains(n) {
			res.Removed = append(res.Removed, n)
		} else {
			res.Unmatched = append(res.Unmatched, n)
		}
	}
	if len(res.Removed) == 0 {
		return DeleteResult{}, newNoMatchingScene(requested)
	}

	for _, n := range res.Removed {
		snap.table.Clear(n)
	}
	if err := s.persist(snap.table); err != nil {
		return DeleteResult{}, err
	}

	s.logger.Info("scene columns cleared", "removed", res.Removed, "unmatched", res.Unmatched)

	s.record(ctx, journal.Entry{
		Op:     journal.OpDelete,
		Scenes: res.Removed,
		Detail: unmatchedDetail(res.Unmatched),
	})
	if s.notifier != nil {
		s.announce(s.notifier.ScenesCleared(res.Removed))
	}
	return res, nil
}

// SortAndCompact rewrites every column in ascending numeric order with no
// gaps. Values that do not parse as finite numbers are dropped and counted.
func (s *Store) SortAndCompact(ctx context.Context) (SortResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return SortResult{}, err
	}

	res := SortResult{Scenes: snap.reg.Len(), Diagnostics: snap.diag}
	for _, name := range snap.reg.Names() {
		values, dropped := sortColumn(snap.table.Column(name))
		if dropped > 0 {
			s.logger.Debug("dropped malformed cells", "scene", name, "count", dropped)
		}
		res.Dropped += dropped
		res.Kept += len(values)
		snap.table.Set(name, values)
	}

	if err := s.persist(snap.table); err != nil {
		return SortResult{}, err
	}

	if res.Dropped > 0 {
		s.logger.Warn("sort dropped malformed cells", "dropped", res.Dropped)
	}
	s.logger.Info("table sorted", "scenes", res.Scenes, "kept", res.Kept)

	s.record(ctx, journal.Entry{
		Op:     journal.OpSort,
		Scenes: snap.reg.Names(),
		Detail: fmt.Sprintf("kept=%d dropped=%d", res.Kept, res.Dropped),
	})
	if s.notifier != nil {
		s.announce(s.notifier.TableSorted(res.Scenes))
	}
	return res, nil
}

// sortColumn parses, sorts and reformats values, returning how many failed
// to parse.
func sortColumn(values []string) ([]string, int) {
	nums := make([]float64, 0, len(values))
	dropped := 0
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			dropped++
			continue
		}
		nums = append(nums, f)
	}
	sort.Float64s(nums)
	return tempo.FormatAll(nums), dropped
}

func (s *Store) loadRegistry() (*scene.Registry, error) {
	reg, err := scene.Load(s.scenesPath)
	if err != nil {
		if errors.Is(err, scene.ErrNotFound) || errors.Is(err, scene.ErrEmpty) {
			return nil, newConfigMissing(s.scenesPath, err)
		}
		return nil, err
	}
	return reg, nil
}

func (s *Store) load() (snapshot, error) {
	reg, err := s.loadRegistry()
	if err != nil {
		return snapshot{}, err
	}

	t, stats, err := beattable.ReadFile(s.beatsPath, reg)
	if err != nil {
		return snapshot{}, err
	}

	diag := Diagnostics{
		Layout:         stats.Layout.String(),
		IgnoredColumns: stats.IgnoredColumns,
		IgnoredRows:    stats.IgnoredRows,
	}
	if len(diag.IgnoredColumns) > 0 || diag.IgnoredRows > 0 {
		s.logger.Warn("beat table has entries outside the scene list",
			"path", s.beatsPath,
			"ignored_columns", diag.IgnoredColumns,
			"ignored_rows", diag.IgnoredRows,
		)
	}
	if stats.Layout == beattable.LayoutRowMajor {
		s.logger.Debug("decoded legacy row-major layout", "path", s.beatsPath)
	}
	return snapshot{reg: reg, table: t, diag: diag}, nil
}

func (s *Store) persist(t *beattable.Table) error {
	if err := beattable.WriteFile(s.beatsPath, t); err != nil {
		return err
	}
	s.logger.Debug("beat table written", "path", s.beatsPath, "rows", t.Depth())
	return nil
}

func (s *Store) record(ctx context.Context, e journal.Entry) {
	if s.journal == nil {
		return
	}
	if _, err := s.journal.Record(ctx, e); err != nil {
		s.logger.Warn("journal write failed", "op", e.Op, "error", err)
	}
}

func (s *Store) announce(err error) {
	if err != nil {
		s.logger.Warn("notification failed", "error", err)
	}
}

func unmatchedDetail(unmatched []string) string {
	if len(unmatched) == 0 {
		return ""
	}
	return "unmatched=" + strings.Join(unmatched, ",")
}
