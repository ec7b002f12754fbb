package logging

import (
	"log/slog"
	"os"

	"github.com/sultanavtajev/simpleperf/internal/config"
	"github.com/sultanavtajev/simpleperf/internal/errors"
)

// SetupLogger initializes structured logging on stderr. Statistics tables are
// written to stdout, so operational logs must stay off that stream.
func SetupLogger() {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: false,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	slog.SetDefault(slog.New(handler))
}

// LogConfig logs the current configuration
func LogConfig(cfg *config.Config) {
	if cfg.IsServer {
		slog.Info("Server configuration",
			"bind_address", cfg.BindAddress,
			"port", cfg.Port,
			"buffer_size", cfg.BufferSize,
			"format", cfg.Format)
		return
	}

	slog.Info("Client configuration",
		"server_address", cfg.ServerAddress,
		"port", cfg.Port,
		"buffer_size", cfg.BufferSize,
		"format", cfg.Format,
		"duration_seconds", int(cfg.Duration.Seconds()),
		"interval_seconds", int(cfg.Interval.Seconds()),
		"parallel", cfg.Parallel,
		"byte_target", cfg.NumBytes,
		"rate_mbps", cfg.RateMbps)
}

// LogError logs an error with appropriate context
func LogError(err error, context string) {
	switch e := err.(type) {
	case *errors.NetworkError:
		slog.Error("Network error",
			"context", context,
			"operation", e.Op,
			"address", e.Addr,
			"error_type", "network")
	case *errors.ProtocolError:
		slog.Error("Protocol error",
			"context", context,
			"operation", e.Op,
			"message", e.Message,
			"error_type", "protocol")
	case *errors.ValidationError:
		slog.Error("Validation error",
			"context", context,
			"field", e.Field,
			"message", e.Message,
			"error_type", "validation")
	default:
		slog.Error("Unhandled error",
			"context", context,
			"error", err,
			"error_type", "unknown")
	}
}
