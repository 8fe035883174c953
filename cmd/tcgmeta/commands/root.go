package commands

import (
	"context"
	"fmt"
	"os"

	"tcgmeta/cmd/tcgmeta/config"
	"tcgmeta/cmd/tcgmeta/globals"
	"tcgmeta/lib/telemetry"
	"tcgmeta/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "tcgmeta.json5", "The json5 config file, <name>.local.json5 next to it overrides it.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every download and retry.")
}

var rootCmd = &cobra.Command{
	Use:   "tcgmeta",
	Short: "tcgmeta classifies the decklists of rk9 tournaments and ranks archetypes by their matchups.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)

		c, err := config.Load(configPath)
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}
		service, err := c.Service(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to setup analysis", err)
		}
		cmd.SetContext(globals.Set(cmd.Context(), &globals.Value{
			Config:  c,
			Service: service,
		}))
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// tournaments falls back to the configured tournaments when no argument is
// given.
func tournaments(value *globals.Value, args []string) []string {
	if len(args) > 0 {
		return args
	}
	ids := value.Config.TournamentIDs()
	if len(ids) == 0 {
		serviceutil.Fatal("no tournament", fmt.Errorf("pass tournament ids or set tournaments in %s", configPath))
	}
	return ids
}
