package cmd

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/schemewasm/swc/frontend/check"
	"github.com/schemewasm/swc/internal/config"
	"github.com/schemewasm/swc/internal/log"
	"github.com/schemewasm/swc/swc"
	"github.com/spf13/cobra"
)

var cmdLogger = log.DefaultLogger.With("section", "cmd")

var (
	configPath *string
	logLevel   *string
	dump       *bool
)

// AddCommonFlags registers the flags every subcommand understands on root
func AddCommonFlags(root *cobra.Command) {
	configPath = root.PersistentFlags().StringP("config", "c", "", "config file (default "+config.DefaultFile+" if present)")
	logLevel = root.PersistentFlags().StringP("log-level", "l", "", "log level, overriding the config file")
	dump = root.PersistentFlags().Bool("dump", false, "dump typed trees to stderr")
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// setup loads the config and applies its logging settings
func setup() (config.Config, error) {
	path := ""
	if configPath != nil {
		path = *configPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != nil && *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := cfg.Level()
	if err != nil {
		return config.Config{}, err
	}
	log.SetLevel(level)
	log.SetSections(cfg.LogSections)
	return cfg, nil
}

func loadUnit(cmd *cobra.Command, target string, eliminate bool) (*swc.Unit, error) {
	cfg, err := setup()
	if err != nil {
		return nil, err
	}
	scope, err := cfg.Env()
	if err != nil {
		return nil, fmt.Errorf("could not load prelude: %w", err)
	}

	target, err = filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute path of target: %w", err)
	}
	dirFS, ok := os.DirFS(filepath.Dir(target)).(fs.ReadFileFS)
	if !ok {
		return nil, fmt.Errorf("cannot read files in %s", filepath.Dir(target))
	}

	unit, err := swc.Load(cmd.Context(), dirFS, filepath.Base(target), swc.LoadSettings{
		Checker:          check.NewChecker(cfg.CheckOptions(), log.DefaultLogger),
		Env:              scope,
		EliminateRecords: eliminate,
	})
	if err != nil {
		return nil, fmt.Errorf("could not load %s (this is a bug and not a type error): %w", target, err)
	}
	if unit.Errors().HasError() {
		return nil, fmt.Errorf("errors found during type checking:\n%s", unit.DisplayErrors())
	}
	cmdLogger.Debug("loaded unit", "file", target, "forms", len(unit.Forms()))
	return unit, nil
}

func dumpTo(w io.Writer, v any) {
	if dump != nil && *dump {
		dumper.Fdump(w, v)
	}
}
