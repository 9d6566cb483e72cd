package api

import (
	"net/http"

	"github.com/lexiflow/lexiflow/internal/api/shared"
	"github.com/lexiflow/lexiflow/internal/store"
)

// SnapshotHandler handles export and import of the full store state.
type SnapshotHandler struct {
	store *store.Store
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(vocabStore *store.Store) *SnapshotHandler {
	return &SnapshotHandler{store: vocabStore}
}

// Export handles GET /api/export. Credentials are excluded by default; pass
// ?include_credentials=true for a full local backup.
func (h *SnapshotHandler) Export(w http.ResponseWriter, r *http.Request) {
	includeCredentials := r.URL.Query().Get("include_credentials") == "true"

	snapshot := h.store.ExportSnapshot(store.ExportOptions{
		ExcludeCredentials: !includeCredentials,
	})
	shared.RespondWithJSON(w, r, http.StatusOK, snapshot)
}

// Import handles POST /api/import. The body is a (possibly partial)
// snapshot; entries merge by ID with the imported side winning.
func (h *SnapshotHandler) Import(w http.ResponseWriter, r *http.Request) {
	var snapshot store.Snapshot
	if err := shared.DecodeJSON(r, &snapshot); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid snapshot format")
		return
	}

	if err := h.store.ImportData(&snapshot); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}
