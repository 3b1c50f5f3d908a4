package websocket

import (
	"collab-server/core"
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

const (
	eventDocumentUpdate = "document-update"
	eventCursorUpdate   = "cursor-update"
)

// Relay coordinates the connection registry, the room router and the
// document store for the realtime path. One failing change event never
// terminates the connection, the room, or other pending broadcasts.
type Relay struct {
	registry     *Registry
	router       *Router
	store        core.DocumentStore
	roomRegistry core.RoomRegistry
}

// NewRelay wires the realtime components together. roomRegistry may be nil
// when the configured store does not track room activity.
func NewRelay(registry *Registry, router *Router, store core.DocumentStore, roomRegistry core.RoomRegistry) *Relay {
	return &Relay{
		registry:     registry,
		router:       router,
		store:        store,
		roomRegistry: roomRegistry,
	}
}

func (r *Relay) OnConnect(connID string, sink Sink) {
	r.registry.Register(connID, sink)
	logrus.WithField("connection_id", connID).Debug("Connection registered")
}

// OnDisconnect removes the connection from every room it joined and drops
// its registry entry. Idempotent.
func (r *Relay) OnDisconnect(connID string) {
	r.router.LeaveAll(connID)
	r.registry.Unregister(connID)
	logrus.WithField("connection_id", connID).Debug("Connection unregistered")
}

func (r *Relay) OnJoin(ctx context.Context, connID, documentID string) {
	r.router.Join(connID, documentID)
	r.touchRoom(ctx, documentID)
	logrus.WithFields(logrus.Fields{
		"connection_id": connID,
		"document_id":   documentID,
	}).Info("Connection joined document room")
}

func (r *Relay) OnLeave(connID, documentID string) {
	r.router.Leave(connID, documentID)
	logrus.WithFields(logrus.Fields{
		"connection_id": connID,
		"document_id":   documentID,
	}).Info("Connection left document room")
}

// OnChange persists the delta and then broadcasts it to the room. The
// broadcast happens regardless of persistence outcome: in-memory view
// consistency across connected clients is prioritized over
// durability-before-broadcast, so a client may see an update that was never
// durably saved. Persistence errors are logged, never surfaced to the
// sender.
func (r *Relay) OnChange(ctx context.Context, connID string, event core.ChangeEvent) {
	log := logrus.WithFields(logrus.Fields{
		"connection_id": connID,
		"document_id":   event.DocumentID,
	})

	if err := r.store.UpdateContent(ctx, event.DocumentID, event.Delta); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			log.Warn("Change references unknown document, persisting skipped")
		} else {
			log.WithField("error", err).Error("Failed to persist document change")
		}
	}

	r.touchRoom(ctx, event.DocumentID)
	r.router.BroadcastExcept(event.DocumentID, connID, eventDocumentUpdate, event.Delta)
}

// OnCursor broadcasts the cursor position to the room. Purely ephemeral: no
// persistence, no acknowledgment; if no one is listening the event is lost.
func (r *Relay) OnCursor(connID string, event core.PresenceEvent) {
	r.router.BroadcastExcept(event.DocumentID, connID, eventCursorUpdate, map[string]any{
		"position": event.Position,
		"userId":   event.UserID,
	})
}

func (r *Relay) touchRoom(ctx context.Context, roomID string) {
	if r.roomRegistry == nil {
		return
	}
	if err := r.roomRegistry.TouchRoom(ctx, roomID); err != nil {
		logrus.WithFields(logrus.Fields{
			"room_id": roomID,
			"error":   err,
		}).Warn("Failed to touch room registry")
	}
}
