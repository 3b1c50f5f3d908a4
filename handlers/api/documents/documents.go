package documents

import (
	"collab-server/core"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	CreateDocumentRequest struct {
		Title string `json:"title"`
	}

	ErrorResponse struct {
		Error string `json:"error"`
	}
)

// HandleCreate creates a new empty document. The request body may carry an
// optional title; anything unreadable is treated as absent rather than
// rejected.
func HandleCreate(store core.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDocumentRequest
		body, err := io.ReadAll(r.Body)
		if err == nil && len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				logrus.WithField("error", err).Debug("Ignoring unparseable create request body")
			}
		}

		document := &core.Document{
			Title:   req.Title,
			Content: core.EmptyContent,
		}
		if document.Title == "" {
			document.Title = core.DefaultTitle
		}

		if _, err := store.Create(r.Context(), document); err != nil {
			logrus.WithField("error", err).Error("Failed to create document")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "failed to create document"})
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, document)
	}
}

// HandleGet returns the document for the id in the URL, or a structured 404
// when no record exists.
func HandleGet(store core.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		document, err := store.FindID(r.Context(), id)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, ErrorResponse{Error: "document not found"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"document_id": id,
				"error":       err,
			}).Error("Failed to retrieve document")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "failed to retrieve document"})
			return
		}

		render.JSON(w, r, document)
	}
}
