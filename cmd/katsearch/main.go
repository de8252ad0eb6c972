package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
)

// exitInterrupted is the status of a scan stopped with Ctrl-C.
const exitInterrupted = 130

func main() {
	// UTF-8 fallback keeps non-ASCII names readable on minimal terminals
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	env := &cliEnv{}
	err := NewCmdRoot(env).ExecuteContext(ctx)
	stop()
	if closeErr := env.close(); closeErr != nil && err == nil {
		fmt.Fprintf(os.Stderr, "katsearch: saving session: %v\n", closeErr)
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errInterrupted):
		return exitInterrupted
	default:
		fmt.Fprintf(os.Stderr, "katsearch: %v\n", err)
		return 1
	}
}
