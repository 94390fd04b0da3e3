package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be < pongWait
	maxMessageSize = 4096
	sendBufferSize = 64
)

// clientConn is one live session. The registry and hub never write to the
// socket directly; they enqueue frames and writePump owns all socket writes.
type clientConn struct {
	id      string
	rawConn *websocket.Conn
	send    chan []byte

	mu     sync.Mutex
	closed bool
}

func newClientConn(rawConn *websocket.Conn) *clientConn {
	return &clientConn{
		id:      uuid.NewString(),
		rawConn: rawConn,
		send:    make(chan []byte, sendBufferSize),
	}
}

// enqueue hands a frame to the write pump without blocking; a slow consumer
// whose buffer is full loses the frame rather than stalling the sender.
// Senders may hold membership snapshots taken before this connection's
// teardown ran, so a frame for a closed connection is dropped, never a panic.
func (c *clientConn) enqueue(frame []byte) {
	if frame == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

func (c *clientConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *clientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.rawConn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.rawConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.rawConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.rawConn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.rawConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.rawConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
