// Package main provides the entry point for the marclink CLI tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/agentstation/marclink/cmd/marclink/cmd"
	"github.com/agentstation/marclink/pkg/logging"
)

func main() {
	// Optional .env bootstrap; absence is not an error.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx); err != nil {
		logging.Default().Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
