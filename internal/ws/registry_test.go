package ws

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterEmitsGlobalCountToEveryone(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	c1, c2 := newTestConn(), newTestConn()

	reg.Register(c1)
	env := recvEnvelope(t, c1)
	req.Equal("client_count", env.Event)
	req.Equal(1, decodeBody[int](t, env))

	reg.Register(c2)
	req.Equal(2, decodeBody[int](t, recvEnvelope(t, c1)))
	req.Equal(2, decodeBody[int](t, recvEnvelope(t, c2)))
	req.Equal(2, reg.Count())
}

func TestRegistry_UnregisterEmitsUpdatedCount(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	c1, c2 := newTestConn(), newTestConn()
	reg.Register(c1)
	reg.Register(c2)
	drain(c1)
	drain(c2)

	reg.Unregister(c2)
	req.Equal(1, decodeBody[int](t, recvEnvelope(t, c1)))
	requireNoFrame(t, c2)
	req.Equal(1, reg.Count())
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	c1, c2 := newTestConn(), newTestConn()
	reg.Register(c1)
	reg.Register(c2)
	reg.Unregister(c2)
	drain(c1)
	drain(c2)

	// Second disconnect of the same connection: no decrement, no emit.
	reg.Unregister(c2)
	req.Equal(1, reg.Count())
	requireNoFrame(t, c1)

	// Never-registered connection: same story.
	reg.Unregister(newTestConn())
	req.Equal(1, reg.Count())
	requireNoFrame(t, c1)
}
