package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/arrowlint/internal"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the available lint rules",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range internal.RuleNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}
