// Package main provides the standalone report agent binary. It consumes
// job reports from Redpanda and stores them in Postgres.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jobdoctor/src/config"
	"jobdoctor/src/logger"
	"jobdoctor/src/persist"
	"jobdoctor/src/pipeline"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Verify we're in distributed mode
	if !cfg.Distributed() {
		fmt.Fprintln(os.Stderr, "ERROR: REDPANDA_BROKERS environment variable is required for the report agent")
		fmt.Fprintln(os.Stderr, "Example: export REDPANDA_BROKERS=localhost:19092 POSTGRES_DSN=postgres://localhost/jobdoctor")
		os.Exit(1)
	}

	// The agent always logs; "silent" falls back to the console.
	format := cfg.LogFormat
	if format == "silent" {
		format = "text"
	}
	log := logger.New(format, "jobdoctor/report-agent")

	log.Info("Starting jobdoctor report agent")
	log.Info("Redpanda brokers: %v", cfg.RedpandaBrokers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := pipeline.Open(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	agent := persist.NewAgent(backend.Broker, backend.Store, log)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Shutdown signal received, stopping agent...")
		cancel()
	}()

	log.Info("Report agent started, storing job reports...")
	if err := agent.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Agent error: %v\n", err)
		os.Exit(1)
	}

	log.Info("Report agent stopped")
}
