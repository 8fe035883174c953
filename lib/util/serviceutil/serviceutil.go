package serviceutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Returns a context that will live until Ctrl+C is pressed
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		slog.Warn("interrupted, stopping...")
		cancel()
	}()

	return ctx
}

var (
	exitMutex sync.Mutex
	exitHooks []func()
)

var exit = os.Exit

// OnExit registers a hook that Fatal runs before the process exits,
// deferred calls are skipped by os.Exit.
func OnExit(hook func()) {
	exitMutex.Lock()
	defer exitMutex.Unlock()
	exitHooks = append(exitHooks, hook)
}

func Fatal(message string, err error) {
	slog.Error(message, "err", err.Error())

	exitMutex.Lock()
	hooks := exitHooks
	exitHooks = nil
	exitMutex.Unlock()
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
	exit(1)
}
