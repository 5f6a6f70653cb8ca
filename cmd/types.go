package cmd

import (
	"fmt"
	"go/token"
	"os"

	"github.com/schemewasm/swc/frontend/ilerr"
	"github.com/schemewasm/swc/frontend/recelim"
	"github.com/schemewasm/swc/parser"
	"github.com/spf13/cobra"
)

var TypesCmd = &cobra.Command{
	Use:          "types file",
	Short:        "Print each type of a file of type syntax next to its record-free form",
	RunE:         runTypes,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

func runTypes(cmd *cobra.Command, args []string) error {
	if _, err := setup(); err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("could not read %s: %w", args[0], err)
	}
	fset := token.NewFileSet()
	ts, parseErr := parser.ParseTypes(fset, args[0], string(data))
	if parseErr != nil {
		return fmt.Errorf("could not parse types:\n%s", ilerr.FormatWithPosition(parseErr, fset))
	}
	dumpTo(cmd.ErrOrStderr(), ts)
	for _, t := range ts {
		elim, err := recelim.EliminateType(t)
		if err != nil {
			return fmt.Errorf("type %s: %w", t, err)
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s => %s\n", t, elim); err != nil {
			return err
		}
	}
	return nil
}
