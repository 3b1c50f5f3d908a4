package websocket

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Router maps a document id to the set of connections subscribed to it and
// fans events out to them. Rooms are created lazily on first join and
// discarded when their last member leaves; a later join starts from a fresh
// membership set.
type Router struct {
	mu       sync.RWMutex
	registry *Registry
	rooms    map[string]map[string]struct{}
}

func NewRouter(registry *Registry) *Router {
	return &Router{
		registry: registry,
		rooms:    make(map[string]map[string]struct{}),
	}
}

// Join adds the connection to the room's member set. Idempotent: joining
// twice has the same effect as joining once.
func (r *Router) Join(connID, roomID string) {
	r.mu.Lock()
	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[roomID] = members
	}
	members[connID] = struct{}{}
	r.mu.Unlock()

	r.registry.addRoom(connID, roomID)
}

// Leave removes the connection from the room, discarding the room when it
// becomes empty.
func (r *Router) Leave(connID, roomID string) {
	r.mu.Lock()
	if members, ok := r.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
	r.mu.Unlock()

	r.registry.removeRoom(connID, roomID)
}

// LeaveAll removes the connection from every room it joined.
func (r *Router) LeaveAll(connID string) {
	for _, roomID := range r.registry.Rooms(connID) {
		r.Leave(connID, roomID)
	}
}

// Members returns the connection ids currently in the room.
func (r *Router) Members(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]string, 0, len(r.rooms[roomID]))
	for connID := range r.rooms[roomID] {
		members = append(members, connID)
	}
	return members
}

// Counts returns the member count of every non-empty room.
func (r *Router) Counts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int, len(r.rooms))
	for roomID, members := range r.rooms {
		counts[roomID] = len(members)
	}
	return counts
}

// BroadcastExcept delivers payload under event to every member of the room
// except the sender. Best-effort fire-and-forget: a member that disconnected
// mid-broadcast is skipped silently, and emit failures are logged without
// surfacing to the broadcaster.
func (r *Router) BroadcastExcept(roomID, senderID, event string, payload ...any) {
	r.mu.RLock()
	members := make([]string, 0, len(r.rooms[roomID]))
	for connID := range r.rooms[roomID] {
		if connID != senderID {
			members = append(members, connID)
		}
	}
	r.mu.RUnlock()

	for _, connID := range members {
		sink, ok := r.registry.Sink(connID)
		if !ok {
			continue
		}
		if err := sink.Emit(event, payload...); err != nil {
			logrus.WithFields(logrus.Fields{
				"room_id":       roomID,
				"connection_id": connID,
				"event":         event,
				"error":         err,
			}).Warn("Failed to deliver broadcast")
		}
	}
}
