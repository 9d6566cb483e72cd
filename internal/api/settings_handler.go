package api

import (
	"net/http"

	"github.com/lexiflow/lexiflow/internal/api/shared"
	"github.com/lexiflow/lexiflow/internal/domain"
	"github.com/lexiflow/lexiflow/internal/store"
)

// SettingsHandler handles user settings HTTP requests.
type SettingsHandler struct {
	store *store.Store
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(vocabStore *store.Store) *SettingsHandler {
	return &SettingsHandler{store: vocabStore}
}

// GetSettings handles GET /api/settings.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.store.Settings())
}

// UpdateSettings handles PATCH /api/settings. The body is a partial patch;
// omitted fields keep their current values.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.SettingsPatch
	if err := shared.DecodeJSON(r, &patch); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.store.SetSettings(patch); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, h.store.Settings())
}
