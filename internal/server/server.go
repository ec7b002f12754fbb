package server

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/sultanavtajev/simpleperf/internal/config"
	"github.com/sultanavtajev/simpleperf/internal/errors"
	"github.com/sultanavtajev/simpleperf/internal/logging"
	"github.com/sultanavtajev/simpleperf/internal/network"
	"github.com/sultanavtajev/simpleperf/internal/stats"
	"github.com/sultanavtajev/simpleperf/internal/transfer"
)

// Run starts the server with the given configuration. It accepts connections
// until the process is terminated; every accepted connection gets its own
// receive handler goroutine, so a slow or failing peer never affects the
// accept loop or other handlers.
func Run(cfg *config.Config) error {
	address := net.JoinHostPort(cfg.BindAddress, strconv.Itoa(cfg.Port))

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.NewNetworkError("listen", address, err)
	}
	defer listener.Close()

	printBanner(os.Stdout, cfg.Port)
	slog.Info("Server ready to accept connections", "address", address)

	printer := stats.NewPrinter(os.Stdout)

	for {
		conn, err := listener.Accept()
		if err != nil {
			slog.Error("Failed to accept connection", "error", err)
			continue
		}

		go handleConnection(conn, cfg, printer)
	}
}

// handleConnection runs one connection's receive loop and prints its final
// statistics record. Errors are confined to this connection.
func handleConnection(conn net.Conn, cfg *config.Config, printer *stats.Printer) {
	defer conn.Close()

	remoteAddr := conn.RemoteAddr().String()
	slog.Info("Client connected", "remote_addr", remoteAddr, "local_addr", conn.LocalAddr().String())

	if err := network.Tune(conn); err != nil {
		slog.Warn("Failed to tune TCP connection", "error", err)
	}

	result, err := transfer.Receive(conn, cfg.BufferSize)
	if err != nil {
		logging.LogError(err, "server")
		return
	}

	printer.PrintRecord(stats.RoleServer, remoteAddr,
		fmt.Sprintf("0.0 - %.1f", result.Seconds()),
		stats.FormatTransfer(result.Bytes, cfg.Format),
		stats.FormatBandwidth(result.Bytes, result.Seconds(), 1))

	slog.Info("Client finished", "remote_addr", remoteAddr, "bytes_received", result.Bytes)
}

func printBanner(out *os.File, port int) {
	line := fmt.Sprintf("| A simpleperf server is listening on port %d |", port)
	border := strings.Repeat("-", len(line))
	fmt.Fprintf(out, "%s\n%s\n%s\n", border, line, border)
}
