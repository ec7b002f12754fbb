package transfer

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/ratelimit"

	perferrors "github.com/sultanavtajev/simpleperf/internal/errors"
	"github.com/sultanavtajev/simpleperf/internal/protocol"
	"github.com/sultanavtajev/simpleperf/internal/stats"
)

// drain consumes the peer side of a pipe and reports the total read.
func drain(conn net.Conn, bufferSize int) <-chan int64 {
	totalCh := make(chan int64, 1)
	go func() {
		buf := make([]byte, bufferSize)
		var total int64
		for {
			n, err := conn.Read(buf)
			total += int64(n)
			if err != nil {
				totalCh <- total
				return
			}
		}
	}()
	return totalCh
}

func TestSend_ByteTarget(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	totalCh := drain(server, 1024)
	counter := stats.NewCounter()

	// 5000 does not divide evenly by the buffer size, so the last write is
	// a partial slice of the filler buffer.
	result, err := Send(client, 1024, time.Minute, 5000, counter, ratelimit.NewUnlimited())
	require.NoError(t, err)
	client.Close()

	assert.Equal(t, int64(5000), result.Bytes)
	assert.Equal(t, int64(5000), counter.Load(), "counter frozen at final total")
	assert.Equal(t, int64(5000), <-totalCh, "peer received exactly the target")
	assert.Greater(t, result.Seconds(), 0.0)
}

func TestSend_DurationBound(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	totalCh := drain(server, 256)
	counter := stats.NewCounter()

	duration := 150 * time.Millisecond
	result, err := Send(client, 256, duration, 0, counter, ratelimit.NewUnlimited())
	require.NoError(t, err)
	client.Close()

	assert.GreaterOrEqual(t, result.Elapsed, duration)
	assert.Less(t, result.Elapsed, duration+200*time.Millisecond,
		"one buffer-send of overshoot plus the grace delay")
	assert.Greater(t, result.Bytes, int64(0))
	assert.Zero(t, result.Bytes%256, "only whole buffers are sent in duration mode")
	assert.Equal(t, result.Bytes, <-totalCh)
	assert.Equal(t, result.Bytes, counter.Load())
}

func TestSend_PacedByLimiter(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	drain(server, 1024)

	// 100 writes/s means the third write cannot start before ~20ms.
	limiter := ratelimit.New(100)
	start := time.Now()
	result, err := Send(client, 1024, time.Minute, 3*1024, stats.NewCounter(), limiter)
	require.NoError(t, err)
	client.Close()

	assert.Equal(t, int64(3*1024), result.Bytes)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSend_TransportError(t *testing.T) {
	client, server := net.Pipe()

	// Peer disappears after the first read.
	go func() {
		buf := make([]byte, 1024)
		server.Read(buf)
		server.Close()
	}()

	_, err := Send(client, 1024, time.Minute, 10*1024, stats.NewCounter(), ratelimit.NewUnlimited())
	require.Error(t, err)
	assert.True(t, errors.Is(err, perferrors.ErrNetwork))
	client.Close()
}

func TestReceive_StopsAtFarewell(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	ackCh := make(chan string, 1)
	go func() {
		filler := protocol.FillerBuffer(1024)
		for i := 0; i < 3; i++ {
			client.Write(filler)
		}
		client.Write([]byte(protocol.Farewell))

		ackBuf := make([]byte, len(protocol.Ack))
		if _, err := io.ReadFull(client, ackBuf); err != nil {
			ackCh <- err.Error()
			return
		}
		ackCh <- string(ackBuf)
	}()

	result, err := Receive(server, 1024)
	require.NoError(t, err)
	assert.Equal(t, int64(3*1024), result.Bytes, "farewell chunk is not counted")
	assert.Equal(t, protocol.Ack, <-ackCh)
}

func TestReceive_FarewellInsideChunkDiscardsChunk(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		client.Write(protocol.FillerBuffer(1024))
		// The whole triggering chunk is excluded, including its filler bytes.
		client.Write([]byte("0000" + protocol.Farewell))
		io.ReadFull(client, make([]byte, len(protocol.Ack)))
	}()

	result, err := Receive(server, 2048)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), result.Bytes)
}

func TestReceive_PeerClosesWithoutFarewell(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	go func() {
		client.Write(protocol.FillerBuffer(2048))
		client.Close()
	}()

	result, err := Receive(server, 2048)
	require.NoError(t, err, "abrupt close is treated as end-of-stream")
	assert.Equal(t, int64(2048), result.Bytes)
}
