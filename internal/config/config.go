// Package config loads the optional .swc.yaml settings file
package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/schemewasm/swc/frontend/check"
	"github.com/schemewasm/swc/frontend/env"
	"github.com/schemewasm/swc/frontend/ilerr"
	"github.com/schemewasm/swc/parser"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no path is given
const DefaultFile = ".swc.yaml"

type Config struct {
	LogLevel              string   `yaml:"log_level"`
	LogSections           []string `yaml:"log_sections"`
	RejectDuplicateFields bool     `yaml:"reject_duplicate_fields"`
	Parallel              bool     `yaml:"parallel"`
	// Prelude maps variable names to the surface syntax of their types.
	// Programs are checked in an environment holding these bindings.
	// Types containing " : ", such as records, must be quoted, or YAML reads them as mappings.
	Prelude map[string]string `yaml:"prelude"`
}

func Default() Config {
	return Config{
		LogLevel:    "error",
		LogSections: []string{"check", "recelim"},
		Parallel:    true,
	}
}

// Load reads the config at path. An empty path means DefaultFile, which may be missing,
// in which case Default is returned.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.WithMessagef(err, "config: %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML config contents on top of Default, rejecting unknown keys
func Parse(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "parse (prelude types containing ' : ' must be quoted)")
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Level is the parsed LogLevel
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, errors.Wrapf(err, "invalid log_level %q", c.LogLevel)
	}
	return l, nil
}

func (c Config) CheckOptions() check.Options {
	return check.Options{
		RejectDuplicateFields: c.RejectDuplicateFields,
		Parallel:              c.Parallel,
	}
}

// Env parses the prelude into the environment programs are checked in
func (c Config) Env() (*env.Env, error) {
	names := lo.Keys(c.Prelude)
	slices.Sort(names)
	bindings := make([]env.Binding, 0, len(names))
	for _, name := range names {
		t, err := parser.ParseType(c.Prelude[name])
		if err != nil {
			return nil, errors.Errorf("prelude binding %s: %s", name, ilerr.FormatWithCode(err))
		}
		bindings = append(bindings, env.Binding{Name: name, Type: t})
	}
	return env.Of(bindings...), nil
}
