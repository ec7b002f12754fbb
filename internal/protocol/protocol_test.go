package protocol

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillerBuffer(t *testing.T) {
	buf := FillerBuffer(1024)

	require.Len(t, buf, 1024)
	for _, b := range buf {
		require.Equal(t, byte(FillerByte), b)
	}
	assert.False(t, HasFarewell(buf))
}

func TestHasFarewell(t *testing.T) {
	tests := []struct {
		name  string
		chunk []byte
		want  bool
	}{
		{name: "exact marker", chunk: []byte("bye"), want: true},
		{name: "marker inside filler", chunk: []byte("000bye000"), want: true},
		{name: "marker at end", chunk: []byte("000000bye"), want: true},
		{name: "plain filler", chunk: []byte("000000000"), want: false},
		{name: "partial marker", chunk: []byte("000by"), want: false},
		{name: "empty chunk", chunk: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasFarewell(tt.chunk))
		})
	}
}

func TestFarewellAckExchange(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	errCh := make(chan error, 1)
	go func() {
		buf := make([]byte, len(Farewell))
		if _, err := server.Read(buf); err != nil {
			errCh <- err
			return
		}
		if !HasFarewell(buf) {
			errCh <- assert.AnError
			return
		}
		errCh <- SendAck(server)
	}()

	require.NoError(t, SendFarewell(client))
	require.NoError(t, AwaitAck(client))
	require.NoError(t, <-errCh)
}

func TestAwaitAckRejectsGarbage(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		server.Write([]byte("nak"))
	}()

	err := AwaitAck(client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected acknowledgement")
}
