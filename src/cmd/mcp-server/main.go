// Package main provides the MCP server entry point for jobdoctor.
// The server speaks the Model Context Protocol on stdin/stdout, so an
// assistant can audit Jenkins jobs through the audit_jobs tool.
package main

import (
	"context"
	"fmt"
	"os"

	"jobdoctor/src/config"
	"jobdoctor/src/logger"
	"jobdoctor/src/mcp"
	"jobdoctor/src/pipeline"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol.
	log := logger.NewSilentLogger()

	backend, err := pipeline.Open(context.Background(), cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	server := mcp.NewServer(backend.Broker, backend.Store, log, cfg.Parallelism)
	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		backend.Close()
		os.Exit(1)
	}
}
