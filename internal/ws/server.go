package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const dispatchTimeout = 1900 * time.Millisecond

var (
	errRoomIDRequired  = errors.New("room_id_required")
	errMessageRequired = errors.New("message_required")
)

type WsServer struct {
	registry *Registry
	hub      *Hub
	relay    *Relay
	router   *Router
	upgrader websocket.Upgrader
}

func NewWsServer(registry *Registry, hub *Hub, relay *Relay) *WsServer {
	srv := &WsServer{
		registry: registry,
		hub:      hub,
		relay:    relay,
		router:   NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev-only
		},
	}
	srv.registerHandlers() // ← all WS events configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(maxMessageSize)

	// ─────────────────── Client connected ────────────────────
	conn := newClientConn(rawConn)
	s.registry.Register(conn)

	go conn.writePump()
	go s.reader(conn)
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	// 🔹 join_room --------------------------------------------------------
	Register(
		s.router,
		"join_room",
		func(ctx context.Context, cc *ConnContext, req JoinRoomBody) error {
			if req.RoomID == "" {
				return errRoomIDRequired
			}
			s.hub.Join(req.RoomID, cc.Conn)
			return nil
		},
	)

	// 🔹 chat_message -----------------------------------------------------
	Register(
		s.router,
		"chat_message",
		func(ctx context.Context, cc *ConnContext, req ChatMessageBody) error {
			if req.RoomID == "" {
				return errRoomIDRequired
			}
			if req.Message == "" {
				return errMessageRequired
			}
			s.relay.OnMessage(ctx, cc.Conn, req.RoomID, req.Message)
			return nil
		},
	)
}

// reader owns the connection's teardown: when the read loop ends, for
// whatever reason, the disconnect cascade runs exactly once.
func (s *WsServer) reader(conn *clientConn) {
	defer func() {
		s.hub.LeaveAll(conn)
		s.registry.Unregister(conn)
		conn.close()
		conn.rawConn.Close()
	}()

	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	cc := &ConnContext{Conn: conn, Server: s}

	for {
		_, raw, err := conn.rawConn.ReadMessage()
		if err != nil {
			return // client closed or errored
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			// Malformed frame: reject it, keep the connection.
			conn.enqueue(encodeEnvelope("error", ErrorBody{Error: "bad_envelope"}))
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		err = s.router.dispatch(ctx, cc, env)
		cancel()

		// ---- error -> {"event":"error", "body":{...}} ---------------
		if err != nil {
			conn.enqueue(encodeEnvelope("error", ErrorBody{Error: err.Error()}))
		}
	}
}
