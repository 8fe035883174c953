package commands

import (
	"os"

	"tcgmeta/cmd/tcgmeta/globals"
	"tcgmeta/lib/report"
	"tcgmeta/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var showRejected bool

func init() {
	rankCmd.Flags().BoolVar(&showRejected, "rejected", false, "Also list the players whose decklist was rejected.")
	rootCmd.AddCommand(rankCmd)
}

var rankCmd = &cobra.Command{
	Use:   "rank [tournament...]",
	Short: "Ranks archetypes by their expected points against the metagame.",
	Run: func(cmd *cobra.Command, args []string) {
		value := globals.Get(cmd.Context())

		result, err := value.Service.Analyze(cmd.Context(), tournaments(value, args), value.Config.ShareTournaments)
		if err != nil {
			serviceutil.Fatal("failed to analyze tournaments", err)
		}
		report.Rankings(os.Stdout, result.Rankings)
		if showRejected && len(result.Rejections) > 0 {
			rejectionsTable(os.Stdout, result.Rejections)
		}
	},
}
