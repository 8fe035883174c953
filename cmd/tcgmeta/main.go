package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"tcgmeta/cmd/tcgmeta/commands"
	"tcgmeta/lib/telemetry"
	"tcgmeta/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "tcgmeta")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to setup telemetry", "err", err)
	}
	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := tel.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	}
	serviceutil.OnExit(shutdown)
	defer shutdown()

	commands.ExecuteContext(ctx)
}
