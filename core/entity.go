package core

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by stores when no document exists for the
// requested id.
var ErrNotFound = errors.New("document not found")

// DefaultTitle is assigned to documents created without an explicit title.
const DefaultTitle = "Untitled Document"

// EmptyContent is the content of a freshly created document.
var EmptyContent = json.RawMessage(`{"ops":[]}`)

type (
	// Document is the persisted record for a collaborative document.
	// Content is an opaque payload owned by the clients; the server stores
	// and forwards it without interpreting its shape.
	Document struct {
		ID        string          `json:"id"`
		Title     string          `json:"title"`
		Content   json.RawMessage `json:"content"`
		CreatedAt int64           `json:"createdAt"`
		UpdatedAt int64           `json:"updatedAt"`
	}

	DocumentStore interface {
		FindID(ctx context.Context, id string) (*Document, error)
		Create(ctx context.Context, document *Document) (string, error)
		// UpdateContent replaces the stored content and bumps updatedAt.
		// Last writer wins; there is no version check.
		UpdateContent(ctx context.Context, id string, content json.RawMessage) error
	}

	// ChangeEvent is an edit emitted by a client. Delta is meaningful only
	// to client-side rendering; the server passes it through unchanged.
	ChangeEvent struct {
		DocumentID string          `json:"documentId"`
		Delta      json.RawMessage `json:"delta"`
	}

	// PresenceEvent carries a cursor position. Never persisted.
	PresenceEvent struct {
		DocumentID string          `json:"documentId"`
		UserID     string          `json:"userId"`
		Position   json.RawMessage `json:"position"`
	}

	Room struct {
		ID         string
		LastActive int64
	}

	RoomRegistry interface {
		ListRooms(ctx context.Context) ([]Room, error)
		TouchRoom(ctx context.Context, roomID string) error
	}
)
