package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check file.scm",
	Short:        "Type check every top-level form of a program and print its type",
	RunE:         runCheck,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

func runCheck(cmd *cobra.Command, args []string) error {
	unit, err := loadUnit(cmd, args[0], false)
	if err != nil {
		return err
	}
	dumpTo(cmd.ErrOrStderr(), unit.Checked())
	_, err = fmt.Fprint(cmd.OutOrStdout(), unit.DisplayTypes())
	return err
}
