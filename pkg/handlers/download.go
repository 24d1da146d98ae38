package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fixtureforge/forge-engine/pkg/apperrors"
)

// DownloadHandler serves finished archives from the downloads directory.
type DownloadHandler struct {
	downloadsDir string
	logger       *zap.Logger
}

// NewDownloadHandler creates a new DownloadHandler.
func NewDownloadHandler(downloadsDir string, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{downloadsDir: downloadsDir, logger: logger}
}

// RegisterRoutes registers the download handler's routes on the given mux.
func (h *DownloadHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /download/{filename}", h.Download)
}

// Download handles GET /download/{filename} requests. Unknown names yield a
// distinct not-found response; names that try to escape the downloads
// directory are rejected.
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if filename == "" || filename != filepath.Base(filename) {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_name", "invalid archive name")
		return
	}

	path := filepath.Join(h.downloadsDir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", apperrors.ErrNotFound.Error())
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Type", "application/zip")
	http.ServeFile(w, r, path)
}
