package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory history.Store recording writes.
type fakeStore struct {
	data    map[string]string
	lastTTL time.Duration
	setErr  error
	scanErr error
	getErr  map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string), getErr: make(map[string]error)}
}

func (f *fakeStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	f.lastTTL = ttl
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	if err := f.getErr[key]; err != nil {
		return "", false, err
	}
	val, ok := f.data[key]
	return val, ok, nil
}

func (f *fakeStore) ScanKeysWithPrefix(_ context.Context, prefix string) ([]string, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func TestSaveMessage_PersistsJSONUnderRoomKey(t *testing.T) {
	req := require.New(t)
	store := newFakeStore()
	svc := NewChatService(store, 24*time.Hour)

	msg, err := svc.SaveMessage(context.Background(), "R1", "hi")
	req.NoError(err)
	req.NotEmpty(msg.ID)
	req.Equal("R1", msg.RoomID)
	req.Equal("hi", msg.Body)
	req.Equal(time.UTC, msg.Timestamp.Location())

	req.Equal(24*time.Hour, store.lastTTL)
	raw, ok := store.data["R1:"+msg.ID]
	req.True(ok, "message must be keyed roomID:uniqueID")

	var decoded map[string]any
	req.NoError(json.Unmarshal([]byte(raw), &decoded))
	req.Equal("R1", decoded["room_id"])
	req.Equal("hi", decoded["message"])
	req.Contains(decoded, "timestamp")
	req.NotContains(decoded, "id", "unique id lives in the key only")
}

func TestSaveMessage_ReturnsMessageEvenWhenStoreFails(t *testing.T) {
	req := require.New(t)
	store := newFakeStore()
	store.setErr = errors.New("redis down")
	svc := NewChatService(store, time.Hour)

	msg, err := svc.SaveMessage(context.Background(), "R1", "hi")
	req.Error(err)
	req.Equal("hi", msg.Body, "delivery payload must survive a failed write")
	req.NotEmpty(msg.ID)
}

func TestHistory_SortsAscendingByTimestamp(t *testing.T) {
	req := require.New(t)
	store := newFakeStore()
	svc := NewChatService(store, time.Hour)

	base := time.Date(2025, 7, 27, 16, 0, 0, 0, time.UTC)
	// Insert out of order on purpose.
	for i, offset := range []time.Duration{2 * time.Minute, 0, time.Minute} {
		m := Message{RoomID: "R1", Body: "msg", Timestamp: base.Add(offset)}
		raw, err := json.Marshal(m)
		req.NoError(err)
		store.data["R1:"+string(rune('a'+i))] = string(raw)
	}

	msgs, err := svc.History(context.Background(), "R1")
	req.NoError(err)
	req.Len(msgs, 3)
	for i := 1; i < len(msgs); i++ {
		req.False(msgs[i].Timestamp.Before(msgs[i-1].Timestamp),
			"history must be in non-decreasing timestamp order")
	}
}

func TestHistory_EmptyRoomReturnsEmptySlice(t *testing.T) {
	req := require.New(t)
	svc := NewChatService(newFakeStore(), time.Hour)

	msgs, err := svc.History(context.Background(), "nobody-here")
	req.NoError(err)
	req.NotNil(msgs)
	req.Empty(msgs)
}

func TestHistory_SkipsCorruptAndExpiredRecords(t *testing.T) {
	req := require.New(t)
	store := newFakeStore()
	svc := NewChatService(store, time.Hour)

	good := Message{RoomID: "R1", Body: "keep me", Timestamp: time.Now().UTC()}
	raw, err := json.Marshal(good)
	req.NoError(err)
	store.data["R1:good"] = string(raw)
	store.data["R1:corrupt"] = "{not json"
	store.getErr["R1:flaky"] = errors.New("read timeout")
	store.data["R1:flaky"] = "unreachable"

	msgs, err := svc.History(context.Background(), "R1")
	req.NoError(err)
	req.Len(msgs, 1)
	req.Equal("keep me", msgs[0].Body)
}

func TestHistory_ScanFailurePropagates(t *testing.T) {
	req := require.New(t)
	store := newFakeStore()
	store.scanErr = errors.New("scan failed")
	svc := NewChatService(store, time.Hour)

	_, err := svc.History(context.Background(), "R1")
	req.Error(err)
}

func TestHistory_DoesNotLeakRoomsSharingKeyPrefix(t *testing.T) {
	req := require.New(t)
	store := newFakeStore()
	svc := NewChatService(store, time.Hour)

	// "R1:" is a key prefix of room "R1:private" too; its messages must
	// never surface in R1's history.
	public, err := svc.SaveMessage(context.Background(), "R1", "hello")
	req.NoError(err)
	_, err = svc.SaveMessage(context.Background(), "R1:private", "for members only")
	req.NoError(err)

	msgs, err := svc.History(context.Background(), "R1")
	req.NoError(err)
	req.Len(msgs, 1)
	req.Equal("R1", msgs[0].RoomID)
	req.Equal(public.Body, msgs[0].Body)

	private, err := svc.History(context.Background(), "R1:private")
	req.NoError(err)
	req.Len(private, 1)
	req.Equal("for members only", private[0].Body)
}

func TestHistory_OnlyMatchingRoomPrefix(t *testing.T) {
	req := require.New(t)
	store := newFakeStore()
	svc := NewChatService(store, time.Hour)

	for room, key := range map[string]string{"R1": "R1:a", "R2": "R2:b"} {
		m := Message{RoomID: room, Body: "in " + room, Timestamp: time.Now().UTC()}
		raw, err := json.Marshal(m)
		req.NoError(err)
		store.data[key] = string(raw)
	}

	msgs, err := svc.History(context.Background(), "R1")
	req.NoError(err)
	req.Len(msgs, 1)
	req.Equal("R1", msgs[0].RoomID)
}
