package client

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"go.uber.org/ratelimit"

	"github.com/sultanavtajev/simpleperf/internal/config"
	"github.com/sultanavtajev/simpleperf/internal/errors"
	"github.com/sultanavtajev/simpleperf/internal/logging"
	"github.com/sultanavtajev/simpleperf/internal/network"
	"github.com/sultanavtajev/simpleperf/internal/protocol"
	"github.com/sultanavtajev/simpleperf/internal/stats"
	"github.com/sultanavtajev/simpleperf/internal/transfer"
)

// Run starts the client with the given configuration and blocks until every
// parallel transfer has completed and been reported.
func Run(cfg *config.Config) error {
	return run(cfg, stats.NewPrinter(os.Stdout))
}

type outcome struct {
	result transfer.Result
	err    error
}

func run(cfg *config.Config, printer *stats.Printer) error {
	address := net.JoinHostPort(cfg.ServerAddress, strconv.Itoa(cfg.Port))

	// Connection setup is sequential; only the transfers run in parallel.
	conns := make([]net.Conn, 0, cfg.Parallel)
	for i := 0; i < cfg.Parallel; i++ {
		conn, err := net.Dial("tcp", address)
		if err != nil {
			for _, c := range conns {
				c.Close()
			}
			return errors.NewNetworkError("dial", address, err)
		}

		if err := network.Tune(conn); err != nil {
			slog.Warn("Failed to tune TCP connection", "error", err)
		}

		slog.Info("Connecting to server",
			"local_addr", conn.LocalAddr().String(),
			"server", address)
		conns = append(conns, conn)
	}

	counters := make([]*stats.Counter, len(conns))
	for i := range counters {
		counters[i] = stats.NewCounter()
	}

	limiter := newLimiter(cfg)
	start := time.Now()

	// Interim reports follow the first connection's counter only, not an
	// aggregate over all parallel streams. The reporter is abandoned at
	// completion, never joined.
	if cfg.Interval > 0 {
		reporter := stats.NewReporter(conns[0].LocalAddr().String(), start,
			counters[0], cfg.Format, cfg.Interval, cfg.Duration, printer)
		go reporter.Run()
	}

	results := make([]chan outcome, len(conns))
	for i, conn := range conns {
		ch := make(chan outcome, 1)
		results[i] = ch

		go func(conn net.Conn, counter *stats.Counter) {
			result, err := transfer.Send(conn, cfg.BufferSize, cfg.Duration,
				cfg.NumBytes, counter, limiter)
			ch <- outcome{result: result, err: err}
		}(conn, counters[i])
	}

	// Join sequentially over the connection list so final records appear in
	// the order the connections were opened, not completion order.
	var firstErr error
	for i, conn := range conns {
		o := <-results[i]
		if o.err != nil {
			logging.LogError(o.err, "client")
			conn.Close()
			if firstErr == nil {
				firstErr = o.err
			}
			continue
		}

		printer.PrintRecord(stats.RoleClient, conn.LocalAddr().String(),
			fmt.Sprintf("0.0 - %.1f", o.result.Seconds()),
			stats.FormatTransfer(o.result.Bytes, cfg.Format),
			stats.FormatBandwidth(o.result.Bytes, o.result.Seconds(), 1))

		if err := finishTransfer(conn); err != nil {
			logging.LogError(err, "client")
			if firstErr == nil {
				firstErr = err
			}
		}
		conn.Close()
	}

	return firstErr
}

// finishTransfer performs the termination handshake on one connection.
func finishTransfer(conn net.Conn) error {
	if err := protocol.SendFarewell(conn); err != nil {
		return err
	}
	return protocol.AwaitAck(conn)
}

// newLimiter builds the pacing limiter shared by all send workers. The rate
// cap applies to the job as a whole, expressed in whole buffer writes per
// second.
func newLimiter(cfg *config.Config) ratelimit.Limiter {
	if cfg.RateMbps <= 0 {
		return ratelimit.NewUnlimited()
	}

	perSecond := cfg.RateMbps * config.FactorMB / 8 / cfg.BufferSize
	if perSecond < 1 {
		perSecond = 1
	}
	return ratelimit.New(perSecond)
}
