package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/glossary/internal/services"
	"go.uber.org/zap"
)

const exportKeyPrefix = "exports/"

// ExportHandler provides HTTP handlers for glossary snapshots.
type ExportHandler struct {
	exportService *services.ExportService
	logger        *zap.Logger
}

func NewExportHandler(exportService *services.ExportService, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{exportService: exportService, logger: logger}
}

// ExportRouter registers admin-only export routes on the given router.
func ExportRouter(r chi.Router, exportService *services.ExportService, auth *Authenticator, logger *zap.Logger) {
	handler := NewExportHandler(exportService, logger)

	r.Post("/", auth.Admin(handler.CreateExport))
	r.Get("/*", auth.Admin(handler.GetExport))
	r.Delete("/*", auth.Admin(handler.DeleteExport))
}

func (h *ExportHandler) CreateExport(w http.ResponseWriter, r *http.Request, p Principal) {
	export, err := h.exportService.Create(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err, "export")
		return
	}
	h.logger.Info("glossary exported",
		zap.String("key", export.Key),
		zap.Int64("size", export.Size),
		zap.String("user_id", p.UserID),
	)
	writeJSON(w, http.StatusCreated, export)
}

// GetExport streams a snapshot. The path below /exports/ is the key
// without its "exports/" prefix.
func (h *ExportHandler) GetExport(w http.ResponseWriter, r *http.Request, _ Principal) {
	key := exportKey(r)

	body, err := h.exportService.Open(r.Context(), key)
	if err != nil {
		writeServiceError(w, h.logger, err, "export")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("stream export", zap.String("key", key), zap.Error(err))
	}
}

func (h *ExportHandler) DeleteExport(w http.ResponseWriter, r *http.Request, p Principal) {
	key := exportKey(r)
	if err := h.exportService.Delete(r.Context(), p.UserID, key); err != nil {
		writeServiceError(w, h.logger, err, "export")
		return
	}
	h.logger.Info("export deleted", zap.String("key", key), zap.String("user_id", p.UserID))
	writeMessage(w, http.StatusOK, "Export deleted")
}

func exportKey(r *http.Request) string {
	return exportKeyPrefix + strings.TrimPrefix(chi.URLParam(r, "*"), exportKeyPrefix)
}
