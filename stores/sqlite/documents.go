package sqlite

import (
	"collab-server/core"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"database/sql"
	stdlog "log"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type documentStore struct {
	db *sql.DB
}

func NewDocumentStore(dataSourceName string) core.DocumentStore {
	db, err := sql.Open("sqlite3", dataSourceName)

	if err != nil {
		stdlog.Fatal(err)
	}

	documentsTable := `CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content BLOB,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	_, err = db.Exec(documentsTable)
	if err != nil {
		stdlog.Fatal(err)
	}

	roomsTable := `CREATE TABLE IF NOT EXISTS rooms (
		room_id TEXT PRIMARY KEY,
		last_active INTEGER NOT NULL
	);`
	_, err = db.Exec(roomsTable)
	if err != nil {
		stdlog.Fatal(err)
	}

	return &documentStore{db}
}

func (s *documentStore) FindID(ctx context.Context, id string) (*core.Document, error) {
	log := logrus.WithField("document_id", id)
	log.Debug("Retrieving document by ID")

	document := core.Document{ID: id}
	var content []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT title, content, created_at, updated_at FROM documents WHERE id = ?",
		id).Scan(&document.Title, &content, &document.CreatedAt, &document.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Warn("Document with specified ID not found")
			return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
		}
		log.WithField("error", err).Error("Failed to retrieve document")
		return nil, err
	}
	document.Content = content

	log.Debug("Document retrieved successfully")
	return &document, nil
}

func (s *documentStore) Create(ctx context.Context, document *core.Document) (string, error) {
	id := ulid.Make().String()
	now := time.Now().UnixMilli()
	log := logrus.WithFields(logrus.Fields{
		"document_id":    id,
		"content_length": len(document.Content),
	})

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO documents (id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		id, document.Title, []byte(document.Content), now, now)
	if err != nil {
		log.WithField("error", err).Error("Failed to create document")
		return "", err
	}

	document.ID = id
	document.CreatedAt = now
	document.UpdatedAt = now

	log.Info("Document created successfully")
	return id, nil
}

func (s *documentStore) UpdateContent(ctx context.Context, id string, content json.RawMessage) error {
	log := logrus.WithFields(logrus.Fields{
		"document_id":    id,
		"content_length": len(content),
	})

	res, err := s.db.ExecContext(ctx,
		"UPDATE documents SET content = ?, updated_at = ? WHERE id = ?",
		[]byte(content), time.Now().UnixMilli(), id)
	if err != nil {
		log.WithField("error", err).Error("Failed to update document content")
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		log.Warn("Document with specified ID not found")
		return fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
	}

	log.Debug("Document content updated")
	return nil
}

func (s *documentStore) TouchRoom(ctx context.Context, roomID string) error {
	if roomID == "" {
		return fmt.Errorf("room id is required")
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO rooms (room_id, last_active) VALUES (?, ?) ON CONFLICT(room_id) DO UPDATE SET last_active = excluded.last_active",
		roomID, time.Now().UnixMilli())
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"room_id": roomID,
			"error":   err,
		}).Error("Failed to touch room")
		return err
	}

	return nil
}

func (s *documentStore) ListRooms(ctx context.Context) ([]core.Room, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT room_id, last_active FROM rooms")
	if err != nil {
		logrus.WithField("error", err).Error("Failed to list rooms")
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("Failed to close room rows")
		}
	}()

	var rooms []core.Room
	for rows.Next() {
		var room core.Room
		if err := rows.Scan(&room.ID, &room.LastActive); err != nil {
			logrus.WithField("error", err).Error("Failed to scan room")
			continue
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].LastActive == rooms[j].LastActive {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].LastActive > rooms[j].LastActive
	})

	return rooms, nil
}
