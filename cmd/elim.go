package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ElimCmd = &cobra.Command{
	Use:          "elim file.scm",
	Short:        "Type check a program, then compile its records into tuples",
	RunE:         runElim,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var verify *bool

func init() {
	verify = ElimCmd.Flags().Bool("verify", false, "re-check the output and compare it with the eliminated program")
}

func runElim(cmd *cobra.Command, args []string) error {
	unit, err := loadUnit(cmd, args[0], true)
	if err != nil {
		return err
	}
	dumpTo(cmd.ErrOrStderr(), unit.Eliminated())
	if _, err := fmt.Fprint(cmd.OutOrStdout(), unit.DisplayEliminated()); err != nil {
		return err
	}
	if *verify {
		if err := unit.Verify(cmd.Context()); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		cmdLogger.Info("verified eliminated output", "forms", len(unit.Eliminated()))
	}
	return nil
}
