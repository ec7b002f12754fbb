package protocol

import (
	"bytes"
	"io"
	"net"

	"github.com/sultanavtajev/simpleperf/internal/errors"
)

// In-band control markers. The farewell is scanned for as a raw substring of
// received chunks, which is safe only because the filler payload is a fixed
// repeated byte that cannot contain it.
const (
	Farewell = "bye"
	Ack      = "ack"
)

// FillerByte is the byte the filler buffer repeats. Content is meaningless,
// it exists purely to consume bandwidth.
const FillerByte = '0'

// FillerBuffer builds a reusable filler buffer of the given size.
func FillerBuffer(size int) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = FillerByte
	}
	return buf
}

// HasFarewell reports whether the chunk contains the farewell marker.
func HasFarewell(chunk []byte) bool {
	return bytes.Contains(chunk, []byte(Farewell))
}

// SendFarewell signals end-of-transfer to the peer.
func SendFarewell(conn net.Conn) error {
	if _, err := conn.Write([]byte(Farewell)); err != nil {
		return errors.NewNetworkError("send_farewell", conn.RemoteAddr().String(), err)
	}
	return nil
}

// SendAck acknowledges a farewell.
func SendAck(conn net.Conn) error {
	if _, err := conn.Write([]byte(Ack)); err != nil {
		return errors.NewNetworkError("send_ack", conn.RemoteAddr().String(), err)
	}
	return nil
}

// AwaitAck blocks until the peer's acknowledgement arrives.
func AwaitAck(conn net.Conn) error {
	buf := make([]byte, len(Ack))
	if _, err := io.ReadFull(conn, buf); err != nil {
		return errors.NewNetworkError("await_ack", conn.RemoteAddr().String(), err)
	}
	if string(buf) != Ack {
		return errors.NewProtocolError("await_ack", "unexpected acknowledgement from peer", nil)
	}
	return nil
}
