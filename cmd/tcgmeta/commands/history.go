package commands

import (
	"os"

	"tcgmeta/cmd/tcgmeta/globals"
	"tcgmeta/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history <tournament> <player>",
	Short: "Lists the opponents a player faced in every round, the player is named \"First Last [CC]\".",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		value := globals.Get(cmd.Context())

		history, err := value.Service.History(cmd.Context(), args[0], args[1])
		if err != nil {
			serviceutil.Fatal("failed to get player history", err)
		}
		historyTable(os.Stdout, history)
	},
}
