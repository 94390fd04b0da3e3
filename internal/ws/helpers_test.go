package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// newTestConn builds a clientConn with no socket; frames land in the send
// buffer where tests pick them up.
func newTestConn() *clientConn {
	return &clientConn{
		id:   uuid.NewString(),
		send: make(chan []byte, sendBufferSize),
	}
}

// recvEnvelope pops the next buffered frame. Fails the test when none is
// pending: enqueue is synchronous, so anything emitted is already there.
func recvEnvelope(t *testing.T, c *clientConn) Envelope {
	t.Helper()
	select {
	case frame := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	default:
		t.Fatal("expected a pending frame, got none")
		return Envelope{}
	}
}

func requireNoFrame(t *testing.T, c *clientConn) {
	t.Helper()
	select {
	case frame := <-c.send:
		t.Fatalf("expected no frame, got %s", frame)
	default:
	}
}

func drain(c *clientConn) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

func decodeBody[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var body T
	require.NoError(t, json.Unmarshal(env.Body, &body))
	return body
}
