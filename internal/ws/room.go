package ws

// room is a member set. All access goes through the Hub under its lock;
// the room itself carries no synchronization.
type room struct {
	members map[*clientConn]struct{}
}

func newRoom() *room {
	return &room{members: make(map[*clientConn]struct{})}
}

func (r *room) snapshot() []*clientConn {
	members := make([]*clientConn, 0, len(r.members))
	for c := range r.members {
		members = append(members, c)
	}
	return members
}
