package commands

import (
	"io"

	"tcgmeta/lib/report"
	"tcgmeta/lib/tournament"
	"tcgmeta/services/analysis"

	"github.com/jedib0t/go-pretty/v6/table"
)

func historyTable(out io.Writer, history analysis.History) {
	t := report.NewTable(out)
	t.SetTitle("%s (%s)", history.Player.Name, history.Player.Archetype.Key())
	t.AppendHeader(table.Row{"Round", "Opponent", "Archetype", "Result"})
	for _, m := range history.Matches {
		opponentArchetype := "?"
		if m.OpponentArchetype != nil {
			opponentArchetype = m.OpponentArchetype.Key()
		}
		t.AppendRow(table.Row{m.Round, m.Opponent, opponentArchetype, resultText(m.Result)})
	}
	t.Render()
}

func rejectionsTable(out io.Writer, rejections []analysis.Rejection) {
	t := report.NewTable(out)
	t.AppendHeader(table.Row{"Player", "Decklist", "Error"})
	for _, r := range rejections {
		t.AppendRow(table.Row{r.Player, r.URL, r.Err.Error()})
	}
	t.Render()
}

// resultText is the result from the player's side.
func resultText(r tournament.Result) string {
	switch r {
	case tournament.P1Win:
		return "W"
	case tournament.P2Win:
		return "L"
	case tournament.Tie:
		return "T"
	}
	return r.String()
}
