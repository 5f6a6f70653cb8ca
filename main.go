package main

import (
	"os"

	"github.com/schemewasm/swc/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "swc [subcommand]",
	Short:        "swc\n type checker and record elimination for a small typed Scheme",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	cmd.AddCommonFlags(rootCmd)
	rootCmd.AddCommand(cmd.CheckCmd)
	rootCmd.AddCommand(cmd.ElimCmd)
	rootCmd.AddCommand(cmd.TypesCmd)
}
