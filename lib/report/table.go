package report

import (
	"fmt"
	"io"

	"tcgmeta/lib/metagame"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func NewTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

// Rankings renders the archetype | score | count table.
func Rankings(out io.Writer, rankings []metagame.Ranking) {
	t := NewTable(out)
	t.AppendHeader(table.Row{"Archetype", "Score", "Count"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	for _, r := range rankings {
		t.AppendRow(table.Row{r.Archetype, fmt.Sprintf("%.2f", r.Score), r.Count})
	}
	t.Render()
}
