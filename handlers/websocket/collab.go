package websocket

import (
	"collab-server/core"
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

// socketSink adapts a socket.io socket to the Sink interface.
type socketSink struct {
	socket *socketio.Socket
}

func (s socketSink) Emit(event string, payload ...any) error {
	return s.socket.Emit(event, payload...)
}

// SetupSocketIO builds the socket.io server and wires its event surface to
// the relay.
func SetupSocketIO(relay *Relay) *socketio.Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})
	srv := socketio.NewServer(nil, opts)

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}

		me := string(socket.Id())
		relay.OnConnect(me, socketSink{socket})

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On("join-document", func(datas ...any) {
			documentID, ok := firstString(datas)
			if !ok {
				logrus.WithField("connection_id", me).Warn("join-document without a document id, ignoring")
				return
			}
			relay.OnJoin(context.Background(), me, documentID)
		})

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On("leave-document", func(datas ...any) {
			documentID, ok := firstString(datas)
			if !ok {
				logrus.WithField("connection_id", me).Warn("leave-document without a document id, ignoring")
				return
			}
			relay.OnLeave(me, documentID)
		})

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On("document-change", func(datas ...any) {
			event, ok := parseChange(datas)
			if !ok {
				logrus.WithField("connection_id", me).Warn("Malformed document-change payload, ignoring")
				return
			}
			relay.OnChange(context.Background(), me, event)
		})

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On("cursor-position", func(datas ...any) {
			event, ok := parsePresence(datas)
			if !ok {
				logrus.WithField("connection_id", me).Warn("Malformed cursor-position payload, ignoring")
				return
			}
			relay.OnCursor(me, event)
		})

		socket.On("disconnect", func(datas ...any) {
			relay.OnDisconnect(me)
			socket.RemoveAllListeners("")
		})
	})

	return srv
}

func firstString(datas []any) (string, bool) {
	if len(datas) == 0 {
		return "", false
	}
	value, ok := datas[0].(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

func firstMap(datas []any) (map[string]any, bool) {
	if len(datas) == 0 {
		return nil, false
	}
	value, ok := datas[0].(map[string]any)
	if !ok {
		return nil, false
	}
	return value, true
}

func stringField(payload map[string]any, key string) (string, bool) {
	value, ok := payload[key].(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// rawField re-encodes an arbitrary payload field so it can be stored and
// forwarded without the server interpreting its shape.
func rawField(payload map[string]any, key string) (json.RawMessage, bool) {
	value, ok := payload[key]
	if !ok {
		return nil, false
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, false
	}
	return raw, true
}

func parseChange(datas []any) (core.ChangeEvent, bool) {
	payload, ok := firstMap(datas)
	if !ok {
		return core.ChangeEvent{}, false
	}

	documentID, ok := stringField(payload, "documentId")
	if !ok {
		return core.ChangeEvent{}, false
	}
	delta, ok := rawField(payload, "delta")
	if !ok {
		return core.ChangeEvent{}, false
	}

	return core.ChangeEvent{DocumentID: documentID, Delta: delta}, true
}

func parsePresence(datas []any) (core.PresenceEvent, bool) {
	payload, ok := firstMap(datas)
	if !ok {
		return core.PresenceEvent{}, false
	}

	documentID, ok := stringField(payload, "documentId")
	if !ok {
		return core.PresenceEvent{}, false
	}
	userID, ok := stringField(payload, "userId")
	if !ok {
		return core.PresenceEvent{}, false
	}
	position, ok := rawField(payload, "position")
	if !ok {
		return core.PresenceEvent{}, false
	}

	return core.PresenceEvent{DocumentID: documentID, UserID: userID, Position: position}, true
}
