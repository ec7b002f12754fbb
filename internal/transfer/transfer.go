package transfer

import (
	"io"
	"net"
	"time"

	"go.uber.org/ratelimit"

	"github.com/sultanavtajev/simpleperf/internal/errors"
	"github.com/sultanavtajev/simpleperf/internal/protocol"
	"github.com/sultanavtajev/simpleperf/internal/stats"
)

// graceDelay absorbs scheduling jitter between the last send returning and
// the clock advancing measurably, so the final rate is not skewed.
const graceDelay = 10 * time.Millisecond

// Result is the outcome of one connection's send or receive loop.
type Result struct {
	Bytes   int64
	Elapsed time.Duration
}

// Seconds returns the elapsed time as floating-point seconds.
func (r Result) Seconds() float64 {
	return r.Elapsed.Seconds()
}

// Send streams filler data over conn. When targetBytes is positive it sends
// exactly that many bytes, handling short writes by continuing with the
// remainder; otherwise it sends full buffers until duration has elapsed.
// The running total is published to counter after every write so a Reporter
// can sample it live. limiter paces individual buffer writes; pass
// ratelimit.NewUnlimited() for unpaced transfers.
func Send(conn net.Conn, bufferSize int, duration time.Duration, targetBytes int64,
	counter *stats.Counter, limiter ratelimit.Limiter) (Result, error) {

	filler := protocol.FillerBuffer(bufferSize)
	start := time.Now()
	var sent int64

	if targetBytes > 0 {
		remaining := targetBytes
		for remaining > 0 {
			chunk := filler
			if remaining < int64(len(filler)) {
				chunk = filler[:remaining]
			}

			limiter.Take()
			n, err := conn.Write(chunk)
			sent += int64(n)
			remaining -= int64(n)
			counter.Store(sent)
			if err != nil {
				return Result{Bytes: sent, Elapsed: time.Since(start)},
					errors.NewNetworkError("send", conn.RemoteAddr().String(), err)
			}
		}
	} else {
		for time.Since(start) < duration {
			limiter.Take()
			n, err := conn.Write(filler)
			sent += int64(n)
			counter.Store(sent)
			if err != nil {
				return Result{Bytes: sent, Elapsed: time.Since(start)},
					errors.NewNetworkError("send", conn.RemoteAddr().String(), err)
			}
		}
	}

	time.Sleep(graceDelay)
	return Result{Bytes: sent, Elapsed: time.Since(start)}, nil
}

// Receive drains conn until a chunk containing the farewell marker arrives,
// then acknowledges it. The chunk carrying the marker is not added to the
// received total. A clean close by the peer before any farewell is treated
// as end-of-stream: the loop stops and the bytes counted so far stand.
func Receive(conn net.Conn, bufferSize int) (Result, error) {
	buf := make([]byte, bufferSize)
	start := time.Now()
	var received int64

	for {
		n, err := conn.Read(buf)
		if n > 0 && protocol.HasFarewell(buf[:n]) {
			break
		}
		received += int64(n)
		if err != nil {
			if err == io.EOF {
				return Result{Bytes: received, Elapsed: time.Since(start)}, nil
			}
			return Result{Bytes: received, Elapsed: time.Since(start)},
				errors.NewNetworkError("receive", conn.RemoteAddr().String(), err)
		}
	}

	elapsed := time.Since(start)
	if err := protocol.SendAck(conn); err != nil {
		return Result{Bytes: received, Elapsed: elapsed}, err
	}

	return Result{Bytes: received, Elapsed: elapsed}, nil
}
