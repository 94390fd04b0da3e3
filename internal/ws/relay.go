package ws

import (
	"context"
	"time"

	"chatrelay/internal/services/chat"

	"go.uber.org/zap"
)

// Relay persists inbound messages and fans them out to the sender's room.
// Persistence and delivery are independent best-effort operations: a failed
// write is logged and the message is still delivered, a room without
// membership still gets its message persisted.
type Relay struct {
	hub *Hub
	svc chat.IChatService
}

func NewRelay(hub *Hub, svc chat.IChatService) *Relay {
	return &Relay{hub: hub, svc: svc}
}

// OnMessage persists first, then delivers to every room member except the
// sender. Persist-before-broadcast keeps history consistent when the process
// dies in between: the message is replayable even if live fan-out was lost.
//
// Messages from one sender reach each member in send order (one reader
// goroutine per connection, ordered send buffers). Two senders racing into
// the same room may be observed in different orders by different members;
// there is no per-room serialization across senders.
func (rl *Relay) OnMessage(ctx context.Context, sender *clientConn, roomID, body string) {
	msg, err := rl.svc.SaveMessage(ctx, roomID, body)
	if err != nil {
		zap.L().Warn("history_set_failed",
			zap.String("room_id", roomID), zap.Error(err))
	}

	frame := encodeEnvelope("chat_message", ChatMessageEvent{
		RoomID:    msg.RoomID,
		Message:   msg.Body,
		Timestamp: msg.Timestamp.Format(time.RFC3339Nano),
	})
	for _, member := range rl.hub.MembersOf(roomID) {
		if member == sender {
			continue
		}
		member.enqueue(frame)
	}
}
