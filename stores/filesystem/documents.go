package filesystem

import (
	"collab-server/core"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	stdlog "log"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// Each document is stored as one JSON file named by its id. The file holds
// the full record, metadata included, so a read never needs a second lookup.
type documentStore struct {
	basePath string
}

func NewDocumentStore(basePath string) core.DocumentStore {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		stdlog.Fatalf("failed to create base directory: %v", err)
	}
	return &documentStore{basePath: basePath}
}

func (s *documentStore) documentPath(id string) string {
	return filepath.Join(s.basePath, id+".json")
}

func (s *documentStore) read(id string) (*core.Document, error) {
	data, err := os.ReadFile(s.documentPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
		}
		return nil, err
	}

	var document core.Document
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return &document, nil
}

func (s *documentStore) write(document *core.Document) error {
	data, err := json.Marshal(document)
	if err != nil {
		return err
	}
	return os.WriteFile(s.documentPath(document.ID), data, 0644)
}

func (s *documentStore) FindID(ctx context.Context, id string) (*core.Document, error) {
	log := logrus.WithField("document_id", id)

	document, err := s.read(id)
	if err != nil {
		log.WithField("error", err).Warn("Failed to retrieve document")
		return nil, err
	}

	log.Debug("Document retrieved successfully")
	return document, nil
}

func (s *documentStore) Create(ctx context.Context, document *core.Document) (string, error) {
	id := ulid.Make().String()
	now := time.Now().UnixMilli()

	document.ID = id
	document.CreatedAt = now
	document.UpdatedAt = now

	log := logrus.WithFields(logrus.Fields{
		"document_id": id,
		"file_path":   s.documentPath(id),
	})

	if err := s.write(document); err != nil {
		log.WithError(err).Error("Failed to create document")
		return "", err
	}

	log.Info("Document created successfully")
	return id, nil
}

func (s *documentStore) UpdateContent(ctx context.Context, id string, content json.RawMessage) error {
	log := logrus.WithField("document_id", id)

	document, err := s.read(id)
	if err != nil {
		log.WithField("error", err).Warn("Failed to update document content")
		return err
	}

	document.Content = content
	document.UpdatedAt = time.Now().UnixMilli()

	if err := s.write(document); err != nil {
		log.WithError(err).Error("Failed to update document content")
		return err
	}

	log.Debug("Document content updated")
	return nil
}
