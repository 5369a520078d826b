package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/glossary/internal/services"
	"go.uber.org/zap"
)

// CategoryHandler provides HTTP handlers for categories.
type CategoryHandler struct {
	categoryService *services.CategoryService
	termService     *services.TermService
	logger          *zap.Logger
}

func NewCategoryHandler(categoryService *services.CategoryService, termService *services.TermService, logger *zap.Logger) *CategoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryHandler{
		categoryService: categoryService,
		termService:     termService,
		logger:          logger,
	}
}

// CategoryRouter registers category routes on the given router. Reads are
// public; writes require an admin.
func CategoryRouter(
	r chi.Router,
	categoryService *services.CategoryService,
	termService *services.TermService,
	auth *Authenticator,
	logger *zap.Logger,
) {
	handler := NewCategoryHandler(categoryService, termService, logger)

	r.Get("/", handler.ListCategories)
	r.Post("/", auth.Admin(handler.CreateCategory))
	r.Route("/{categoryID}", func(r chi.Router) {
		r.Get("/", handler.GetCategory)
		r.Put("/", auth.Admin(handler.UpdateCategory))
		r.Delete("/", auth.Admin(handler.DeleteCategory))
		r.Get("/terms", handler.ListCategoryTerms)
	})
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, h.logger, err, "category")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "categoryID", "category")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := h.categoryService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "category")
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request, p Principal) {
	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.categoryService.Create(r.Context(), p.UserID, services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "category")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request, p Principal) {
	id, err := parseID(r, "categoryID", "category")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req CategoryPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.categoryService.Update(r.Context(), p.UserID, id, services.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "category")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request, p Principal) {
	id, err := parseID(r, "categoryID", "category")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.categoryService.Delete(r.Context(), p.UserID, id); err != nil {
		writeServiceError(w, h.logger, err, "category")
		return
	}
	writeMessage(w, http.StatusOK, "Category deleted")
}

// ListCategoryTerms returns the terms filed under a category. Unknown
// categories have no terms.
func (h *CategoryHandler) ListCategoryTerms(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "categoryID", "category")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	terms, err := h.termService.ListByCategory(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "term")
		return
	}
	writeJSON(w, http.StatusOK, terms)
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryPatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}
