package commands

import (
	"os"

	"tcgmeta/cmd/tcgmeta/globals"
	"tcgmeta/lib/report"
	"tcgmeta/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(unclassifiedCmd)
}

var unclassifiedCmd = &cobra.Command{
	Use:   "unclassified [tournament...]",
	Short: "Lists the players whose decklist matches no rule.",
	Run: func(cmd *cobra.Command, args []string) {
		value := globals.Get(cmd.Context())

		players, err := value.Service.Unclassified(cmd.Context(), tournaments(value, args)...)
		if err != nil {
			serviceutil.Fatal("failed to classify players", err)
		}

		t := report.NewTable(os.Stdout)
		t.AppendHeader(table.Row{"Player", "Decklist"})
		for _, p := range players {
			t.AppendRow(table.Row{p.Name, p.DecklistURL})
		}
		t.Render()
	},
}
