package ws

import "sync"

// Hub owns the room table. One lock serializes every membership mutation;
// presence frames are written to snapshots after the lock is released, so no
// socket I/O ever happens under it.
//
// A room exists exactly while it has members: created on first join, deleted
// by the leave that empties it.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*room
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*room)}
}

// Join adds the connection to the room, creating it if absent, and emits the
// room-scoped presence count to all members, the joiner included.
func (h *Hub) Join(roomID string, c *clientConn) {
	h.mu.Lock()
	r, ok := h.rooms[roomID]
	if !ok {
		r = newRoom()
		h.rooms[roomID] = r
	}
	r.members[c] = struct{}{}
	members := r.snapshot()
	h.mu.Unlock()

	emitRoomClientCount(roomID, members, len(members))
}

// Leave removes the connection and emits the updated presence count to the
// remaining members. The room entry is deleted once its member set is empty.
// Leaving a room the connection never joined is a no-op.
func (h *Hub) Leave(roomID string, c *clientConn) {
	h.mu.Lock()
	r, ok := h.rooms[roomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := r.members[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(r.members, c)
	if len(r.members) == 0 {
		delete(h.rooms, roomID)
		h.mu.Unlock()
		return
	}
	members := r.snapshot()
	h.mu.Unlock()

	emitRoomClientCount(roomID, members, len(members))
}

// LeaveAll unwinds every membership of a disconnecting connection. Each room
// gets its own presence update; iteration order is unspecified.
func (h *Hub) LeaveAll(c *clientConn) {
	type presenceUpdate struct {
		roomID  string
		members []*clientConn
	}

	h.mu.Lock()
	var updates []presenceUpdate
	for roomID, r := range h.rooms {
		if _, ok := r.members[c]; !ok {
			continue
		}
		delete(r.members, c)
		if len(r.members) == 0 {
			delete(h.rooms, roomID)
			continue
		}
		updates = append(updates, presenceUpdate{roomID: roomID, members: r.snapshot()})
	}
	h.mu.Unlock()

	for _, u := range updates {
		emitRoomClientCount(u.roomID, u.members, len(u.members))
	}
}

// MembersOf returns a snapshot of the room's members; empty for unknown rooms.
func (h *Hub) MembersOf(roomID string) []*clientConn {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[roomID]
	if !ok {
		return nil
	}
	return r.snapshot()
}

func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

func emitRoomClientCount(roomID string, members []*clientConn, count int) {
	frame := encodeEnvelope("room_client_count", RoomClientCountBody{
		RoomID:      roomID,
		ClientCount: count,
	})
	for _, c := range members {
		c.enqueue(frame)
	}
}
