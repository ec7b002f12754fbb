/*
Simpleperf is a lightweight TCP throughput measurement tool in the spirit of
iperf. It streams filler data between two endpoints for a configurable
duration or byte count and reports transfer size and bandwidth per
connection.

The program operates in two modes:

1. Server Mode: Accepts connections and reports received throughput per
client connection

2. Client Mode: Opens one or more parallel connections, streams filler data
and reports sent throughput, with optional periodic interim reports
*/
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sultanavtajev/simpleperf/internal/client"
	"github.com/sultanavtajev/simpleperf/internal/config"
	"github.com/sultanavtajev/simpleperf/internal/logging"
	"github.com/sultanavtajev/simpleperf/internal/server"
)

func main() {
	// Setup structured logging first
	logging.SetupLogger()

	// Parse command line arguments
	cfg, err := config.ParseFlags()
	if err != nil {
		slog.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	// Log configuration
	logging.LogConfig(cfg)

	// Set up signal handling for graceful shutdown
	setupSignalHandling()

	// Run in appropriate mode
	if cfg.IsServer {
		if err := server.Run(cfg); err != nil {
			logging.LogError(err, "server")
			os.Exit(1)
		}
	} else {
		if err := client.Run(cfg); err != nil {
			logging.LogError(err, "client")
			os.Exit(1)
		}
	}
}

// setupSignalHandling sets up handlers for OS signals to ensure clean shutdown
func setupSignalHandling() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		slog.Info("Received shutdown signal", "signal", sig)

		// Let any record mid-write reach the terminal
		time.Sleep(100 * time.Millisecond)

		os.Exit(0)
	}()
}
