package api

import (
	"net/http"

	"github.com/lexiflow/lexiflow/internal/api/shared"
	"github.com/lexiflow/lexiflow/internal/domain"
	"github.com/lexiflow/lexiflow/internal/store"
)

// CreateCategoryRequest is the category creation body.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1"`
}

// RenameCategoryRequest is the category rename body.
type RenameCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1"`
}

// MoveCategoryRequest shifts a category one slot in the display order.
type MoveCategoryRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// SelectCategoriesRequest replaces the practice category filter. IDs are
// category UUID strings, or the single sentinel "all".
type SelectCategoriesRequest struct {
	Selected []string `json:"selected"`
}

// CategoryListResponse wraps the ordered category collection.
type CategoryListResponse struct {
	Categories []domain.Category `json:"categories"`
	Selected   []string          `json:"selected"`
}

// CategoryHandler handles category HTTP requests.
type CategoryHandler struct {
	store *store.Store
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(vocabStore *store.Store) *CategoryHandler {
	return &CategoryHandler{store: vocabStore}
}

// ListCategories handles GET /api/categories.
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.store.Categories()
	if categories == nil {
		categories = []domain.Category{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CategoryListResponse{
		Categories: categories,
		Selected:   h.store.SelectedCategories(),
	})
}

// CreateCategory handles POST /api/categories.
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: name is required")
		return
	}

	category, err := h.store.AddCategory(req.Name)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, category)
}

// RenameCategory handles PATCH /api/categories/{id}.
func (h *CategoryHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req RenameCategoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: name is required")
		return
	}

	h.store.RenameCategory(id, req.Name)
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// DeleteCategory handles DELETE /api/categories/{id}: removes the category
// and every reference to it (word memberships, display order, selection).
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	h.store.DeleteCategory(id)
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// MoveCategory handles POST /api/categories/{id}/move. Moving past either
// end of the list is a harmless no-op.
func (h *CategoryHandler) MoveCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req MoveCategoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: direction must be up or down")
		return
	}

	direction := store.MoveUp
	if req.Direction == "down" {
		direction = store.MoveDown
	}
	h.store.MoveCategory(id, direction)

	shared.RespondWithJSON(w, r, http.StatusOK, CategoryListResponse{
		Categories: h.store.Categories(),
		Selected:   h.store.SelectedCategories(),
	})
}

// AssignWord handles PUT /api/categories/{id}/words/{word_id}.
func (h *CategoryHandler) AssignWord(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	wordID, ok := uuidParam(w, r, "word_id")
	if !ok {
		return
	}

	h.store.AddWordToCategory(wordID, categoryID)
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// UnassignWord handles DELETE /api/categories/{id}/words/{word_id}.
func (h *CategoryHandler) UnassignWord(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	wordID, ok := uuidParam(w, r, "word_id")
	if !ok {
		return
	}

	h.store.RemoveWordFromCategory(wordID, categoryID)
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// SelectCategories handles PUT /api/categories/selection. An empty selection
// resets the filter to "all".
func (h *CategoryHandler) SelectCategories(w http.ResponseWriter, r *http.Request) {
	var req SelectCategoriesRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	h.store.SetSelectedCategories(req.Selected)
	shared.RespondWithJSON(w, r, http.StatusOK, CategoryListResponse{
		Categories: h.store.Categories(),
		Selected:   h.store.SelectedCategories(),
	})
}
