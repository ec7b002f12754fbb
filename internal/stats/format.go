package stats

import (
	"fmt"

	"github.com/sultanavtajev/simpleperf/internal/config"
)

// FormatSize converts a raw byte count into the requested display format and
// returns the scaled value with its label. The format is validated at
// configuration time; anything unrecognized falls back to plain bytes.
func FormatSize(bytes int64, format string) (float64, string) {
	switch format {
	case "KB":
		return float64(bytes) / config.FactorKB, "KB"
	case "MB":
		return float64(bytes) / config.FactorMB, "MB"
	default:
		return float64(bytes) / config.FactorB, "B"
	}
}

// FormatTransfer renders a byte count as a one-decimal transfer label,
// e.g. "11.9 MB".
func FormatTransfer(bytes int64, format string) string {
	value, label := FormatSize(bytes, format)
	return fmt.Sprintf("%.1f %s", value, label)
}

// FormatBandwidth renders the transfer rate in megabits per second with the
// given number of decimals. Final summaries use one decimal, interim reports
// two. A non-positive elapsed time yields "N/A" instead of dividing by zero.
func FormatBandwidth(bytes int64, seconds float64, decimals int) string {
	if seconds <= 0 {
		return "N/A"
	}
	rate := float64(bytes) * 8 / (config.FactorMB * seconds)
	return fmt.Sprintf("%.*f Mbps", decimals, rate)
}
