package report

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"tcgmeta/lib/matchup"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const DefaultMinMatches = 1

type HeatmapOptions struct {
	Title string
	// Keys orders the axes, defaults to the matrix keys
	Keys []string
	// cells with at most MinMatches matches are left blank
	MinMatches int
	Width      string
	Height     string
}

// Cell is one non-blank square of the heatmap.
type Cell struct {
	Row     string
	Col     string
	Record  matchup.Record
	WinRate float64
	Text    string
}

// FormatPercent renders a rate in [0, 1] as a percentage with at most one
// decimal, "62.5%", "50%".
func FormatPercent(rate float64) string {
	return strconv.FormatFloat(math.Round(rate*1000)/10, 'f', -1, 64) + "%"
}

// Cells returns the cells of the heatmap row by row.
func Cells(m matchup.Matrix, keys []string, minMatches int) []Cell {
	var cells []Cell
	for _, row := range keys {
		for _, col := range keys {
			r := m.Get(row, col)
			if r.Total() <= minMatches {
				continue
			}
			rate, _ := r.WinRate()
			cells = append(cells, Cell{
				Row:     row,
				Col:     col,
				Record:  r,
				WinRate: rate,
				Text:    FormatPercent(rate),
			})
		}
	}
	return cells
}

// Heatmap renders an html page with the win rate of every row archetype
// against every column archetype.
func Heatmap(out io.Writer, m matchup.Matrix, options HeatmapOptions) error {
	keys := options.Keys
	if len(keys) == 0 {
		keys = m.Keys()
	}
	if options.Width == "" {
		options.Width = "1400px"
	}
	if options.Height == "" {
		options.Height = "1000px"
	}

	// the y axis grows upwards, the first row goes on top
	rows := slices.Clone(keys)
	slices.Reverse(rows)
	index := make(map[string]int, len(rows))
	for i, k := range rows {
		index[k] = i
	}
	colIndex := make(map[string]int, len(keys))
	for i, k := range keys {
		colIndex[k] = i
	}

	var data []opts.HeatMapData
	for _, c := range Cells(m, keys, options.MinMatches) {
		value := math.Round(c.WinRate*1000) / 10
		data = append(data, opts.HeatMapData{
			Name:  fmt.Sprintf("%s VS %s<br/>%s<br/>%s", c.Row, c.Col, c.Text, c.Record),
			Value: [3]interface{}{colIndex[c.Col], index[c.Row], value},
		})
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: options.Title,
			Width:     options.Width,
			Height:    options.Height,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: options.Title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Formatter: opts.FuncOpts(`function (p) { return p.name; }`),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Data:      keys,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
			AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      rows,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
			AxisLabel: &opts.AxisLabel{Interval: "0"},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        100,
			InRange: &opts.VisualMapInRange{
				Color: []string{"#d73027", "#ffffbf", "#1a9850"},
			},
		}),
	)
	hm.SetXAxis(keys).AddSeries("win rate", data,
		charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Formatter: opts.FuncStripCommentsOpts(`function (p) { return p.value[2] + '%'; }`),
		}),
	)

	err := hm.Render(out)
	if err != nil {
		return fmt.Errorf("failed to render heatmap: %w", err)
	}
	return nil
}
