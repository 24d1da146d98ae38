package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/fixtureforge/forge-engine/pkg/apperrors"
	"github.com/fixtureforge/forge-engine/pkg/config"
	"github.com/fixtureforge/forge-engine/pkg/services"
)

// GenerateResponse is returned on a successful generation request.
type GenerateResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	JobID        string `json:"job_id"`
	DownloadLink string `json:"download_link"`
}

// GenerateHandler accepts schema file uploads and runs them through the
// ingestion driver.
type GenerateHandler struct {
	driver *services.IngestionDriver
	cfg    *config.Config
	logger *zap.Logger
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(driver *services.IngestionDriver, cfg *config.Config, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{driver: driver, cfg: cfg, logger: logger}
}

// RegisterRoutes registers the generate handler's routes on the given mux.
func (h *GenerateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /generate", h.Generate)
}

// Generate handles POST /generate requests. The multipart form carries
// schema_file (one metadata document or a zip container of many) and count
// (records per table per document).
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Generator.MaxUploadBytes)

	file, header, err := r.FormFile("schema_file")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "no_file", apperrors.ErrEmptyUpload.Error())
		return
	}
	defer file.Close()

	if header.Filename == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "no_file", "no selected file")
		return
	}

	count, err := h.parseCount(r.FormValue("count"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_count", err.Error())
		return
	}

	payload, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read upload", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "upload_failed", "failed to read uploaded file")
		return
	}

	filename := filepath.Base(header.Filename)
	result, err := h.driver.Ingest(r.Context(), filename, payload, count)
	if err != nil {
		h.writeIngestError(w, filename, err)
		return
	}

	response := GenerateResponse{
		Status:       "success",
		Message:      fmt.Sprintf("Generated %d files", result.FileCount),
		JobID:        result.JobID.String(),
		DownloadLink: "/download/" + result.ArchiveName,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode generate response", zap.Error(err))
	}
}

func (h *GenerateHandler) parseCount(raw string) (int, error) {
	count, err := strconv.Atoi(raw)
	if err != nil || count < 1 {
		return 0, apperrors.ErrInvalidCount
	}
	if count > h.cfg.Generator.MaxRecordCount {
		return 0, fmt.Errorf("%w (max %d)", apperrors.ErrCountLimit, h.cfg.Generator.MaxRecordCount)
	}
	return count, nil
}

func (h *GenerateHandler) writeIngestError(w http.ResponseWriter, filename string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidFormat):
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_format", err.Error())
	case errors.Is(err, apperrors.ErrNoDocuments):
		_ = ErrorResponse(w, http.StatusBadRequest, "no_documents", err.Error())
	default:
		h.logger.Error("ingest failed",
			zap.String("source", filename),
			zap.Error(err),
		)
		_ = ErrorResponse(w, http.StatusInternalServerError, "generation_failed", err.Error())
	}
}
