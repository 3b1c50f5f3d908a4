package sqlite

import (
	"collab-server/core"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestMain(m *testing.M) {
	if !CGOEnabled {
		fmt.Println("skipping sqlite store tests: CGO disabled")
		os.Exit(0)
	}

	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *documentStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := NewDocumentStore(dbPath).(*documentStore)
	return store
}

func TestNewDocumentStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := NewDocumentStore(dbPath)

	if store == nil {
		t.Fatal("NewDocumentStore() returned nil")
	}

	// Verify database file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("NewDocumentStore() did not create database file")
	}
}

func TestNewDocumentStore_TablesCreated(t *testing.T) {
	store := setupTestDB(t)

	var tableName string
	err := store.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='documents'").Scan(&tableName)
	if err != nil {
		t.Fatalf("documents table not created: %v", err)
	}

	err = store.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='rooms'").Scan(&tableName)
	if err != nil {
		t.Fatalf("rooms table not created: %v", err)
	}
}

func TestCreateAndFindID(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	doc := &core.Document{
		Title:   core.DefaultTitle,
		Content: core.EmptyContent,
	}
	id, err := store.Create(ctx, doc)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == "" {
		t.Fatal("Create() returned empty id")
	}

	found, err := store.FindID(ctx, id)
	if err != nil {
		t.Fatalf("FindID() error = %v", err)
	}
	if found.ID != id {
		t.Errorf("ID = %s, want %s", found.ID, id)
	}
	if found.Title != core.DefaultTitle {
		t.Errorf("Title = %s, want %s", found.Title, core.DefaultTitle)
	}
	if string(found.Content) != string(core.EmptyContent) {
		t.Errorf("Content = %s, want %s", found.Content, core.EmptyContent)
	}
	if found.CreatedAt == 0 || found.UpdatedAt == 0 {
		t.Error("Timestamps were not persisted")
	}
}

func TestFindID_NotFound(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.FindID(context.Background(), "nonexistent")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("FindID() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateContent(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	id, err := store.Create(ctx, &core.Document{Title: "t", Content: core.EmptyContent})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	created, err := store.FindID(ctx, id)
	if err != nil {
		t.Fatalf("FindID() error = %v", err)
	}

	updated := json.RawMessage(`{"ops":[{"insert":"hi"}]}`)
	if err := store.UpdateContent(ctx, id, updated); err != nil {
		t.Fatalf("UpdateContent() error = %v", err)
	}

	found, err := store.FindID(ctx, id)
	if err != nil {
		t.Fatalf("FindID() error = %v", err)
	}
	if string(found.Content) != string(updated) {
		t.Errorf("Content = %s, want %s", found.Content, updated)
	}
	if found.UpdatedAt < created.UpdatedAt {
		t.Errorf("UpdatedAt went backwards: %d -> %d", created.UpdatedAt, found.UpdatedAt)
	}
}

func TestUpdateContent_NotFound(t *testing.T) {
	store := setupTestDB(t)

	err := store.UpdateContent(context.Background(), "nonexistent", core.EmptyContent)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateContent() error = %v, want ErrNotFound", err)
	}
}

func TestTouchRoom_UpsertsLastActive(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	if err := store.TouchRoom(ctx, "doc1"); err != nil {
		t.Fatalf("TouchRoom() error = %v", err)
	}
	rooms, err := store.ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms() error = %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != "doc1" {
		t.Fatalf("Unexpected rooms: %v", rooms)
	}
	first := rooms[0].LastActive

	// Touching again updates, never duplicates.
	if err := store.TouchRoom(ctx, "doc1"); err != nil {
		t.Fatalf("TouchRoom() error = %v", err)
	}
	rooms, err = store.ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms() error = %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("TouchRoom duplicated the room: %v", rooms)
	}
	if rooms[0].LastActive < first {
		t.Errorf("LastActive went backwards: %d -> %d", first, rooms[0].LastActive)
	}

	if err := store.TouchRoom(ctx, ""); err == nil {
		t.Error("TouchRoom() accepted an empty room id")
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store := NewDocumentStore(dbPath).(*documentStore)
	id, err := store.Create(ctx, &core.Document{Title: "t", Content: core.EmptyContent})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := NewDocumentStore(dbPath)
	found, err := reopened.FindID(ctx, id)
	if err != nil {
		t.Fatalf("FindID() after reopen error = %v", err)
	}
	if found.Title != "t" {
		t.Errorf("Title = %s, want t", found.Title)
	}
}
