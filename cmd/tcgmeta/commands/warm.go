package commands

import (
	"fmt"
	"log/slog"

	"tcgmeta/cmd/tcgmeta/globals"
	"tcgmeta/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(warmCmd)
}

var warmCmd = &cobra.Command{
	Use:   "warm [tournament...]",
	Short: "Downloads the roster, decklists and rounds of tournaments into the cache.",
	Run: func(cmd *cobra.Command, args []string) {
		value := globals.Get(cmd.Context())
		ids := tournaments(value, args)

		result, err := value.Service.Warm(cmd.Context(), ids...)
		if err != nil {
			serviceutil.Fatal("failed to warm cache", err)
		}
		for _, failure := range result.Failures {
			slog.Error("partition failed", "partition", failure.Partition, "url", failure.URL, "skipped", failure.Skipped, "err", failure.Err)
		}
		if len(result.Failures) > 0 {
			serviceutil.Fatal("some decklists were not downloaded", fmt.Errorf("%d partitions failed", len(result.Failures)))
		}
		slog.Info("cache is warm", "tournaments", len(ids), "decklists", result.Fetched)
	},
}
