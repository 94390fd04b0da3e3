package ws

import "encoding/json"

// Envelope wraps every WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "chat_message"
	Body  json.RawMessage `json:"body,omitempty"` // arbitrary JSON object
}

// ──────────────────────────── Request / Response DTOs ─────────────────────────

// JoinRoomBody is the body for "join_room".
type JoinRoomBody struct {
	RoomID string `json:"room_id"`
}

// ChatMessageBody is the body for inbound "chat_message".
type ChatMessageBody struct {
	RoomID  string `json:"room_id"`
	Message string `json:"message"`
}

// ChatMessageEvent is the outbound "chat_message" payload.
type ChatMessageEvent struct {
	RoomID    string `json:"room_id"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// RoomClientCountBody is the outbound "room_client_count" payload.
type RoomClientCountBody struct {
	RoomID      string `json:"room_id"`
	ClientCount int    `json:"client_count"`
}

// ErrorBody is returned for failures.
type ErrorBody struct {
	Error string `json:"error"`
}

// encodeEnvelope marshals an outbound frame. Body values are our own DTOs,
// so a marshal failure is a programming error; it yields nil and the frame
// is simply not sent.
func encodeEnvelope(event string, body any) []byte {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil
	}
	frame, err := json.Marshal(Envelope{Event: event, Body: raw})
	if err != nil {
		return nil
	}
	return frame
}
