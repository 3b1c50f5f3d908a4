package websocket

import (
	"sync"
)

// Sink is the outbound half of a connection: events emitted here are
// delivered to the client on the other end. The socket.io socket satisfies
// it in production; tests substitute an in-memory recorder.
type Sink interface {
	Emit(event string, payload ...any) error
}

// Registry tracks live connections and the rooms each one has joined. It is
// pure bookkeeping; room membership itself is owned by the Router, which
// keeps the per-connection room set here in sync so that disconnect cleanup
// is deterministic no matter how many rooms a connection joined.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Sink
	rooms map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]Sink),
		rooms: make(map[string]map[string]struct{}),
	}
}

// Register adds a connection. Re-registering an id replaces its sink.
func (r *Registry) Register(connID string, sink Sink) {
	r.mu.Lock()
	r.conns[connID] = sink
	r.mu.Unlock()
}

// Unregister deletes the connection's entry and room set. Idempotent:
// unknown ids are a no-op. Room membership cleanup is the Router's
// LeaveAll, which callers run first.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	delete(r.conns, connID)
	delete(r.rooms, connID)
	r.mu.Unlock()
}

// Sink returns the outbound channel for a connection, if it is still
// registered.
func (r *Registry) Sink(connID string) (Sink, bool) {
	r.mu.RLock()
	sink, ok := r.conns[connID]
	r.mu.RUnlock()
	return sink, ok
}

// Rooms returns the ids of every room the connection has joined.
func (r *Registry) Rooms(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]string, 0, len(r.rooms[connID]))
	for roomID := range r.rooms[connID] {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// Len reports the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) addRoom(connID, roomID string) {
	r.mu.Lock()
	set, ok := r.rooms[connID]
	if !ok {
		set = make(map[string]struct{})
		r.rooms[connID] = set
	}
	set[roomID] = struct{}{}
	r.mu.Unlock()
}

func (r *Registry) removeRoom(connID, roomID string) {
	r.mu.Lock()
	if set, ok := r.rooms[connID]; ok {
		delete(set, roomID)
		if len(set) == 0 {
			delete(r.rooms, connID)
		}
	}
	r.mu.Unlock()
}
