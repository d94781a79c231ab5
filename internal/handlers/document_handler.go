package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/shivay-couchbase/openai-azure-rag-couchbase/internal/models"
)

// DocumentIngester turns an uploaded file into indexed chunks
type DocumentIngester interface {
	IngestDocument(ctx context.Context, filename string, data []byte) (*models.UploadResponse, error)
}

// DocumentHandler handles HTTP requests for document ingestion
type DocumentHandler struct {
	ingestion DocumentIngester
	logger    *log.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(ingestion DocumentIngester, logger *log.Logger) *DocumentHandler {
	return &DocumentHandler{
		ingestion: ingestion,
		logger:    logger,
	}
}

// UploadDocument handles PDF upload requests
// @Summary Upload a PDF
// @Description Upload a PDF, chunk and embed it, and index it for retrieval
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF file"
// @Success 200 {object} models.UploadResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/v1/documents/upload [post]
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	h.logger.Printf("Upload request from %s", r.RemoteAddr)

	// max 50MB upload
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		h.logger.Printf("Failed to parse form: %v", err)
		sendError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.logger.Printf("No file uploaded: %v", err)
		sendError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Printf("Failed to read upload: %v", err)
		sendError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	resp, err := h.ingestion.IngestDocument(r.Context(), header.Filename, data)
	if err != nil {
		h.logger.Printf("Ingestion failed for %s: %v", header.Filename, err)

		var ingErr *models.IngestionError
		var idxErr *models.IndexingError
		switch {
		case errors.As(err, &ingErr):
			sendError(w, http.StatusUnprocessableEntity, ingErr.Error())
		case errors.As(err, &idxErr):
			sendError(w, http.StatusBadGateway, idxErr.Error())
		default:
			sendError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	sendJSON(w, http.StatusOK, resp)
}

func sendJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func sendError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, models.ErrorResponse{
		Error:  message,
		Status: "error",
	})
}
