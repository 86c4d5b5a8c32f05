// Package signalhandler ties SIGINT/SIGTERM to context cancellation so
// in-flight batches can finish cleanly.
package signalhandler

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WithInterrupt returns a context that is cancelled on the first SIGINT or
// SIGTERM. A second signal exits the process immediately.
func WithInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
			signal.Stop(sigChan)
			return
		}
		<-sigChan
		os.Exit(1)
	}()

	return ctx, cancel
}
