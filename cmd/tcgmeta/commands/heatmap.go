package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"tcgmeta/cmd/tcgmeta/globals"
	"tcgmeta/lib/report"
	"tcgmeta/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	heatmapOut        string
	heatmapMinMatches int
)

func init() {
	heatmapCmd.Flags().StringVar(&heatmapOut, "out", "", "The html file to write, defaults to heatmap.output of the config.")
	heatmapCmd.Flags().IntVar(&heatmapMinMatches, "min-matches", 0, "Leave cells with at most this many matches blank, defaults to heatmap.min_matches of the config.")
	rootCmd.AddCommand(heatmapCmd)
}

var heatmapCmd = &cobra.Command{
	Use:   "heatmap [tournament...] [--out matchups.html] [--min-matches 1]",
	Short: "Renders the win rate of every archetype against every other one as an html heatmap.",
	Run: func(cmd *cobra.Command, args []string) {
		value := globals.Get(cmd.Context())
		ids := tournaments(value, args)

		out := value.Config.Heatmap.Output
		if heatmapOut != "" {
			out = heatmapOut
		}
		minMatches := value.Config.Heatmap.MinMatches
		if cmd.Flags().Changed("min-matches") {
			minMatches = heatmapMinMatches
		}

		result, err := value.Service.Analyze(cmd.Context(), ids, value.Config.ShareTournaments)
		if err != nil {
			serviceutil.Fatal("failed to analyze tournaments", err)
		}

		// ranked archetypes first
		keys := make([]string, len(result.Rankings))
		for i, r := range result.Rankings {
			keys[i] = r.Archetype
		}
		names := make([]string, len(ids))
		for i, id := range ids {
			names[i] = value.Config.TournamentName(id)
		}

		f, err := os.Create(out)
		if err != nil {
			serviceutil.Fatal("failed to create heatmap file", err)
		}

		err = report.Heatmap(f, result.Matrix, report.HeatmapOptions{
			Title:      fmt.Sprintf("Matchups: %s", strings.Join(names, ", ")),
			Keys:       keys,
			MinMatches: minMatches,
		})
		if err != nil {
			f.Close()
			serviceutil.Fatal("failed to render heatmap", err)
		}
		err = f.Close()
		if err != nil {
			serviceutil.Fatal("failed to write heatmap file", err)
		}
		slog.Info("wrote heatmap", "path", out, "archetypes", len(keys), "matches", result.Matrix.Matches())
	},
}
