// Package main provides the webpilot command: an LLM agent that operates a
// visible web browser on the user's behalf.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/webpilot/pkg/logging"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "0.1.0"

var osExit = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCommand().ExecuteContext(ctx)
	if shutdownErr := logging.Shutdown(); shutdownErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to flush logs: %v\n", shutdownErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		osExit(1)
	}
}
