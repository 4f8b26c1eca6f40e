// Package main is the entry point for the quill CLI application.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/danielolaszy/quill/cmd"
	"github.com/danielolaszy/quill/internal/logging"
	"github.com/danielolaszy/quill/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	shutdown, err := telemetry.Init()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			logging.Warn("failed to flush traces", "error", err)
		}
	}()

	if err := cmd.Execute(ctx); err != nil {
		logging.Debug("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
