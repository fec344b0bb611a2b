// Package config loads beatgrid settings from an optional YAML file and
// validates them against an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// DefaultFile is looked up in the working directory when no --config is given.
const DefaultFile = "beatgrid.yaml"

var (
	// ErrNotFound is returned when an explicitly requested settings file is missing.
	ErrNotFound = errors.New("settings file not found")

	// ErrInvalid is returned when settings fail to parse or validate.
	ErrInvalid = errors.New("invalid settings")
)

// OSC is the optional Open Sound Control target. Port 0 disables it.
type OSC struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// Enabled reports whether notifications should be sent.
func (o OSC) Enabled() bool { return o.Port > 0 }

// RateLimit bounds how fast beats may be recorded over HTTP. A PerSecond of
// zero turns limiting off.
type RateLimit struct {
	PerSecond float64 `yaml:"per_second" json:"per_second"`
	Burst     int     `yaml:"burst" json:"burst"`
}

// Settings is the resolved configuration.
type Settings struct {
	SceneList       string    `yaml:"scene_list" json:"scene_list"`
	BeatsCSV        string    `yaml:"beats_csv" json:"beats_csv"`
	MediaDir        string    `yaml:"media_dir" json:"media_dir"`
	MediaExtensions []string  `yaml:"media_extensions" json:"media_extensions"`
	Listen          string    `yaml:"listen" json:"listen"`
	Journal         string    `yaml:"journal" json:"journal"`
	BeatsPerBar     int       `yaml:"beats_per_bar" json:"beats_per_bar"`
	OSC             OSC       `yaml:"osc" json:"osc"`
	RateLimit       RateLimit `yaml:"rate_limit" json:"rate_limit"`
}

// Default returns the built-in settings, relative to the working directory.
func Default() Settings {
	return Settings{
		SceneList:       "scene_list.txt",
		BeatsCSV:        "beat_timestamps.csv",
		MediaDir:        ".",
		MediaExtensions: []string{".wav"},
		Listen:          "127.0.0.1:5000",
		BeatsPerBar:     4,
		OSC:             OSC{Host: "127.0.0.1"},
		RateLimit:       RateLimit{PerSecond: 20, Burst: 40},
	}
}

// Load reads settings from path on top of Default(). When explicit is false
// a missing file is not an error. Relative paths in the file are resolved
// against the file's directory.
func Load(path string, explicit bool) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if explicit {
				return Settings{}, fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			return s, s.Validate()
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}

	s.resolve(filepath.Dir(path))
	s.MediaExtensions = normalizeExtensions(s.MediaExtensions)
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks s against the CUE schema.
func (s Settings) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile settings schema: %w", err)
	}

	if s.MediaExtensions == nil {
		s.MediaExtensions = []string{}
	}
	v := ctx.Encode(s)
	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Settings")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.TrimSpace(cueerrors.Details(err, nil)))
	}
	return nil
}

func (s *Settings) resolve(base string) {
	for _, p := range []*string{&s.SceneList, &s.BeatsCSV, &s.MediaDir, &s.Journal} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// normalizeExtensions lower-cases extensions and adds the leading dot.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
