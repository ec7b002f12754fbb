package stats

import (
	"fmt"
	"time"
)

// Reporter periodically samples a Counter while a transfer is in flight and
// prints interim statistics for the connection it is bound to. It is
// non-essential background work: the caller launches it on its own goroutine
// and never waits for it, so a report cycle still in progress when the main
// transfer completes is simply abandoned.
type Reporter struct {
	id       string
	start    time.Time
	counter  *Counter
	format   string
	interval time.Duration
	duration time.Duration
	printer  *Printer
}

// NewReporter creates a Reporter for one connection's counter.
func NewReporter(id string, start time.Time, counter *Counter, format string,
	interval, duration time.Duration, printer *Printer) *Reporter {

	return &Reporter{
		id:       id,
		start:    start,
		counter:  counter,
		format:   format,
		interval: interval,
		duration: duration,
		printer:  printer,
	}
}

// Run loops until the accumulated interval count reaches the configured
// duration. The condition is checked only at the top of the loop, so the
// final partial interval, if any, is not separately reported.
func (r *Reporter) Run() {
	var prevSent int64

	for current := 0.0; current < r.duration.Seconds(); current += r.interval.Seconds() {
		time.Sleep(r.interval)

		elapsed := time.Since(r.start).Seconds()
		sent := r.counter.Load()
		delta := sent - prevSent
		prevSent = sent

		intervalLabel := fmt.Sprintf("%.1f - %.1f", current, elapsed)
		transfer := FormatTransfer(delta, r.format)
		bandwidth := FormatBandwidth(delta, r.interval.Seconds(), 2)

		r.printer.PrintRecord(RoleClient, r.id, intervalLabel, transfer, bandwidth)
	}
}
