package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jjudge-oj/glossary/internal/services"
	"github.com/jjudge-oj/glossary/internal/storage"
	"github.com/jjudge-oj/glossary/internal/store"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse acknowledges a request that returns no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid request")
	}
	return nil
}

// parseID reads a UUID path parameter.
func parseID(r *http.Request, param, resource string) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if _, err := uuid.Parse(raw); err != nil {
		return "", fmt.Errorf("invalid %s id", resource)
	}
	return raw, nil
}

// writeServiceError maps service and store errors onto HTTP statuses.
// Unexpected errors are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, resource string) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), services.ErrInvalidInput.Error()+": "))
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, services.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "category not found")
	case errors.Is(err, services.ErrRelatedTermNotFound):
		writeError(w, http.StatusNotFound, "related term not found")
	case errors.Is(err, store.ErrReference):
		writeError(w, http.StatusNotFound, "referenced resource not found")
	case errors.Is(err, store.ErrNotFound), errors.Is(err, storage.ErrObjectNotFound):
		writeError(w, http.StatusNotFound, resource+" not found")
	case errors.Is(err, services.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, resource+" already exists")
	default:
		logger.Error("request failed", zap.String("resource", resource), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
