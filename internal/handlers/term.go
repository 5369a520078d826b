package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/glossary/internal/services"
	"go.uber.org/zap"
)

// TermHandler provides HTTP handlers for terms.
type TermHandler struct {
	termService *services.TermService
	logger      *zap.Logger
}

func NewTermHandler(termService *services.TermService, logger *zap.Logger) *TermHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermHandler{termService: termService, logger: logger}
}

// TermRouter registers term routes on the given router. Reads are public;
// writes require an admin.
func TermRouter(r chi.Router, termService *services.TermService, auth *Authenticator, logger *zap.Logger) {
	handler := NewTermHandler(termService, logger)

	r.Get("/", handler.ListTerms)
	r.Post("/", auth.Admin(handler.CreateTerm))
	r.Route("/{termID}", func(r chi.Router) {
		r.Get("/", handler.GetTerm)
		r.Put("/", auth.Admin(handler.UpdateTerm))
		r.Delete("/", auth.Admin(handler.DeleteTerm))
		r.Get("/related", handler.ListRelatedTerms)
	})
}

func (h *TermHandler) ListTerms(w http.ResponseWriter, r *http.Request) {
	terms, err := h.termService.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, h.logger, err, "term")
		return
	}
	writeJSON(w, http.StatusOK, terms)
}

func (h *TermHandler) GetTerm(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "termID", "term")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	term, err := h.termService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "term")
		return
	}
	writeJSON(w, http.StatusOK, term)
}

func (h *TermHandler) ListRelatedTerms(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "termID", "term")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	related, err := h.termService.Related(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "term")
		return
	}
	writeJSON(w, http.StatusOK, related)
}

func (h *TermHandler) CreateTerm(w http.ResponseWriter, r *http.Request, p Principal) {
	var req TermRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.termService.Create(r.Context(), p.UserID, services.TermInput{
		Word:         req.Word,
		Definition:   req.Definition,
		Category:     req.Category,
		Examples:     req.Examples,
		RelatedTerms: req.RelatedTerms,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "term")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TermHandler) UpdateTerm(w http.ResponseWriter, r *http.Request, p Principal) {
	id, err := parseID(r, "termID", "term")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req TermPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.termService.Update(r.Context(), p.UserID, id, services.TermPatch{
		Word:         req.Word,
		Definition:   req.Definition,
		Category:     req.Category.ptr(),
		Examples:     req.Examples,
		RelatedTerms: req.RelatedTerms,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "term")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TermHandler) DeleteTerm(w http.ResponseWriter, r *http.Request, p Principal) {
	id, err := parseID(r, "termID", "term")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.termService.Delete(r.Context(), p.UserID, id); err != nil {
		writeServiceError(w, h.logger, err, "term")
		return
	}
	writeMessage(w, http.StatusOK, "Term deleted")
}

// TermRequest is the body of a term create. Category and RelatedTerms hold
// ids.
type TermRequest struct {
	Word         string   `json:"word"`
	Definition   string   `json:"definition"`
	Category     string   `json:"category"`
	Examples     []string `json:"examples"`
	RelatedTerms []string `json:"relatedTerms"`
}

// TermPatchRequest is the body of a term update. Omitted fields are kept;
// a null or empty category clears it.
type TermPatchRequest struct {
	Word         *string        `json:"word"`
	Definition   *string        `json:"definition"`
	Category     optionalString `json:"category"`
	Examples     *[]string      `json:"examples"`
	RelatedTerms *[]string      `json:"relatedTerms"`
}

// optionalString records whether a field was present in the body. An
// explicit null is present with an empty value.
type optionalString struct {
	set   bool
	value string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		o.value = ""
		return nil
	}
	return json.Unmarshal(data, &o.value)
}

func (o optionalString) ptr() *string {
	if !o.set {
		return nil
	}
	value := o.value
	return &value
}
