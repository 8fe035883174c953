package commands

import (
	"fmt"
	"os"

	"tcgmeta/cmd/tcgmeta/globals"
	"tcgmeta/lib/report"
	"tcgmeta/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify <decklist-url>",
	Short: "Prints the archetype of a single decklist.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		value := globals.Get(cmd.Context())

		deck, tags, err := value.Service.Classify(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to read decklist", err)
		}

		t := report.NewTable(os.Stdout)
		t.SetTitle("%s", tags.Key())
		t.AppendHeader(table.Row{"Card", "Quantity"})
		for _, c := range deck {
			t.AppendRow(table.Row{c.Name, c.Quantity})
		}
		t.AppendFooter(table.Row{"Total", fmt.Sprint(deck.Total())})
		t.Render()
	},
}
