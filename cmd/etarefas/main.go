// Package main is the entry point for the etarefas CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	// Load .env from the working directory before config is read.
	_ "github.com/joho/godotenv/autoload"

	"etarefas/internal/backend/tarefasapi"
	"etarefas/internal/cli"
	"etarefas/internal/commands"
	"etarefas/internal/config"
	"etarefas/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Create service factory
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return tarefasapi.New(ctx, cfg)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	return dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
