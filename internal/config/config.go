package config

import (
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sultanavtajev/simpleperf/internal/errors"
)

// Constants for default values
const (
	DefaultPort       = 8088
	DefaultBindAddr   = "127.0.0.1"
	DefaultServerAddr = "127.0.0.1"
	DefaultBufferSize = 1024
	DefaultDuration   = 25 * time.Second
	DefaultFormat     = "MB"

	// Parallel connection limits
	MinParallel = 1
	MaxParallel = 5

	// Valid port range is exclusive on both ends
	MinPort = 1024
	MaxPort = 65535

	// Network constants
	TCPBufferSize = 1024 * 1024 // 1MB
)

// Byte count factors for the display formats
const (
	FactorB  = 1
	FactorKB = 1000
	FactorMB = 1000000
)

// Config holds all configuration parameters for the application
type Config struct {
	// Server mode settings
	IsServer    bool
	BindAddress string

	// Client mode settings
	ServerAddress string
	Duration      time.Duration
	Interval      time.Duration
	Parallel      int
	NumBytes      int64 // 0 means duration-bound transfer
	RateMbps      int   // 0 means unpaced

	// Common parameters
	Port       int
	BufferSize int
	Format     string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port <= MinPort || c.Port >= MaxPort {
		return errors.NewValidationError("port", c.Port,
			fmt.Sprintf("port must be in range %d-%d", MinPort+1, MaxPort-1))
	}
	if c.BufferSize <= 0 {
		return errors.NewValidationError("buffer", c.BufferSize, "buffer size must be positive")
	}
	switch c.Format {
	case "B", "KB", "MB":
	default:
		return errors.NewValidationError("format", c.Format, "format must be B, KB or MB")
	}

	if c.IsServer {
		if net.ParseIP(c.BindAddress) == nil {
			return errors.NewValidationError("bind", c.BindAddress, "invalid server IP address")
		}
		if c.NumBytes > 0 {
			return errors.NewValidationError("num", c.NumBytes, "the num flag is not supported in server mode")
		}
		return nil
	}

	if net.ParseIP(c.ServerAddress) == nil {
		return errors.NewValidationError("serverip", c.ServerAddress, "invalid server IP address")
	}
	if c.Duration <= 0 {
		return errors.NewValidationError("time", c.Duration, "duration must be greater than 0")
	}
	if c.Interval < 0 {
		return errors.NewValidationError("interval", c.Interval, "interval cannot be negative")
	}
	if c.Parallel < MinParallel || c.Parallel > MaxParallel {
		return errors.NewValidationError("parallel", c.Parallel,
			fmt.Sprintf("parallel connections must be in range %d-%d", MinParallel, MaxParallel))
	}
	if c.NumBytes < 0 {
		return errors.NewValidationError("num", c.NumBytes, "byte count must be greater than 0")
	}
	if c.RateMbps < 0 {
		return errors.NewValidationError("rate", c.RateMbps, "rate cannot be negative")
	}

	return nil
}

// ParseByteCount converts a byte count with a B, KB or MB suffix
// (case-insensitive) into an absolute number of bytes.
func ParseByteCount(s string) (int64, error) {
	var factor int64
	var digits string

	switch lower := strings.ToLower(s); {
	case strings.HasSuffix(lower, "kb"):
		factor = FactorKB
		digits = s[:len(s)-2]
	case strings.HasSuffix(lower, "mb"):
		factor = FactorMB
		digits = s[:len(s)-2]
	case strings.HasSuffix(lower, "b"):
		factor = FactorB
		digits = s[:len(s)-1]
	default:
		return 0, errors.NewValidationError("num", s, "byte count must end in B, KB or MB")
	}

	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, errors.NewValidationError("num", s, "invalid integer in byte count")
	}
	if value <= 0 {
		return 0, errors.NewValidationError("num", s, "byte count must be greater than 0")
	}

	return value * factor, nil
}

// ParseFlags parses command line arguments and returns a Config
func ParseFlags() (*Config, error) {
	// Server flags
	isServer := flag.Bool("server", false, "Run in server mode")
	bindAddr := flag.String("bind", DefaultBindAddr, "IP address to bind to (server mode)")

	// Client flags
	isClient := flag.Bool("client", false, "Run in client mode")
	serverAddr := flag.String("serverip", DefaultServerAddr, "IP address of the server (client mode)")
	duration := flag.Int("time", int(DefaultDuration.Seconds()), "Duration in seconds for which data is sent")
	interval := flag.Int("interval", 0, "Print interim statistics every N seconds")
	parallel := flag.Int("parallel", 1, "Number of parallel connections (1-5)")
	num := flag.String("num", "", "Number of bytes to transfer, e.g. 5000B, 10KB, 100MB")
	rate := flag.Int("rate", 0, "Limit send rate in Mbit/s (0 = unpaced)")

	// Common flags
	port := flag.Int("port", DefaultPort, "Server port number")
	format := flag.String("format", DefaultFormat, "Format of the result summary: B, KB or MB")
	bufferSize := flag.Int("buffer", DefaultBufferSize, "Buffer size in bytes")

	flag.Parse()

	if !*isServer && !*isClient {
		return nil, errors.NewValidationError("mode", "", "you must run either in server or client mode")
	}
	if *isServer && *isClient {
		return nil, errors.NewValidationError("mode", "server+client", "you must run either in server or client mode, not both")
	}

	var numBytes int64
	if *num != "" {
		var err error
		numBytes, err = ParseByteCount(*num)
		if err != nil {
			return nil, err
		}
	}

	config := &Config{
		IsServer:      *isServer,
		BindAddress:   *bindAddr,
		ServerAddress: *serverAddr,
		Duration:      time.Duration(*duration) * time.Second,
		Interval:      time.Duration(*interval) * time.Second,
		Parallel:      *parallel,
		NumBytes:      numBytes,
		RateMbps:      *rate,
		Port:          *port,
		BufferSize:    *bufferSize,
		Format:        *format,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// String returns a string representation of the config for logging
func (c *Config) String() string {
	mode := "Client"
	if c.IsServer {
		mode = "Server"
	}

	return fmt.Sprintf("Config{Mode: %s, Port: %d, BufferSize: %d, Format: %s, Parallel: %d}",
		mode, c.Port, c.BufferSize, c.Format, c.Parallel)
}
