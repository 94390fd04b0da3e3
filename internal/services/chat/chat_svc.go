package chat

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"chatrelay/internal/history"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message is the persisted record: value JSON is {room_id, message, timestamp},
// the unique id only ever appears in the store key.
type Message struct {
	ID        string    `json:"-"`
	RoomID    string    `json:"room_id"`
	Body      string    `json:"message"`
	Timestamp time.Time `json:"timestamp" example:"2025-07-27T16:05:05Z"`
}

type IChatService interface {
	// SaveMessage builds the message (fresh id, current UTC timestamp) and
	// persists it with the retention TTL. The built message is returned even
	// when persistence failed so delivery can proceed without it.
	SaveMessage(ctx context.Context, roomID, body string) (Message, error)
	// History returns all non-expired messages of a room, ascending by
	// timestamp. Unknown or empty rooms yield an empty slice, not an error.
	History(ctx context.Context, roomID string) ([]Message, error)
}

type chatService struct {
	store history.Store
	ttl   time.Duration
}

func NewChatService(store history.Store, ttl time.Duration) IChatService {
	return &chatService{
		store: store,
		ttl:   ttl,
	}
}

func (svc *chatService) SaveMessage(ctx context.Context, roomID, body string) (Message, error) {
	msg := Message{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Body:      body,
		Timestamp: time.Now().UTC(),
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return msg, err
	}
	return msg, svc.store.Set(ctx, historyKey(roomID, msg.ID), string(raw), svc.ttl)
}

func (svc *chatService) History(ctx context.Context, roomID string) ([]Message, error) {
	keys, err := svc.store.ScanKeysWithPrefix(ctx, roomID+":")
	if err != nil {
		return nil, err
	}

	msgs := make([]Message, 0, len(keys))
	for _, key := range keys {
		val, ok, err := svc.store.Get(ctx, key)
		if err != nil {
			// Best effort: one unreadable record never fails the query.
			zap.L().Warn("history_get_failed", zap.String("key", key), zap.Error(err))
			continue
		}
		if !ok {
			continue // expired between scan and get
		}

		var msg Message
		if err := json.Unmarshal([]byte(val), &msg); err != nil {
			zap.L().Warn("history_decode_failed", zap.String("key", key), zap.Error(err))
			continue
		}
		// The prefix scan also matches rooms whose id extends this one
		// ("R1:" matches "R1:private:…"); the record itself decides.
		if msg.RoomID != roomID {
			continue
		}
		msgs = append(msgs, msg)
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs, nil
}

func historyKey(roomID, msgID string) string {
	return roomID + ":" + msgID
}
