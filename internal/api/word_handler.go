package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lexiflow/lexiflow/internal/api/shared"
	"github.com/lexiflow/lexiflow/internal/domain"
	"github.com/lexiflow/lexiflow/internal/enrichment"
	"github.com/lexiflow/lexiflow/internal/store"
)

// EnqueueWordsRequest is the batch word submission body.
type EnqueueWordsRequest struct {
	Words []string `json:"words" validate:"required,min=1,dive,required"`
}

// QueueStatusResponse reports the enrichment queue state.
type QueueStatusResponse struct {
	Pending      []string `json:"pending"`
	Active       []string `json:"active"`
	PendingCount int      `json:"pending_count"`
	ActiveCount  int      `json:"active_count"`
}

// WordListResponse wraps the word collection.
type WordListResponse struct {
	Words []domain.Word `json:"words"`
}

// WordHandler handles vocabulary word HTTP requests.
type WordHandler struct {
	store *store.Store
	queue *enrichment.Controller
}

// NewWordHandler creates a new WordHandler.
func NewWordHandler(vocabStore *store.Store, queue *enrichment.Controller) *WordHandler {
	return &WordHandler{
		store: vocabStore,
		queue: queue,
	}
}

// EnqueueWords handles POST /api/words. Words are queued for asynchronous
// enrichment, so the response is 202 with the queue state.
func (h *WordHandler) EnqueueWords(w http.ResponseWriter, r *http.Request) {
	var req EnqueueWordsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: at least one word is required")
		return
	}

	h.queue.Enqueue(req.Words)
	shared.RespondWithJSON(w, r, http.StatusAccepted, h.queueStatus())
}

// ListWords handles GET /api/words.
func (h *WordHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	words := h.store.Words()
	if words == nil {
		words = []domain.Word{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, WordListResponse{Words: words})
}

// GetWord handles GET /api/words/{id}.
func (h *WordHandler) GetWord(w http.ResponseWriter, r *http.Request) {
	id, ok := wordIDParam(w, r)
	if !ok {
		return
	}

	word, err := h.store.GetWord(id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, word)
}

// DeleteWord handles DELETE /api/words/{id}. Deleting an absent word is not
// an error.
func (h *WordHandler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	id, ok := wordIDParam(w, r)
	if !ok {
		return
	}

	h.store.DeleteWord(id)
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// ClearWords handles DELETE /api/words: full wipe of words, reviews and
// queue state.
func (h *WordHandler) ClearWords(w http.ResponseWriter, r *http.Request) {
	h.store.ClearAllWords()
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// ToggleWord handles POST /api/words/{id}/toggle, flipping the enabled flag.
func (h *WordHandler) ToggleWord(w http.ResponseWriter, r *http.Request) {
	id, ok := wordIDParam(w, r)
	if !ok {
		return
	}

	h.store.ToggleWordStatus(id)

	word, err := h.store.GetWord(id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, word)
}

// ResetWordStats handles POST /api/words/{id}/reset, zeroing the word's
// review progress.
func (h *WordHandler) ResetWordStats(w http.ResponseWriter, r *http.Request) {
	id, ok := wordIDParam(w, r)
	if !ok {
		return
	}

	h.store.ResetWordStats(id)

	review, err := h.store.GetReview(id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, review)
}

// QueueStatus handles GET /api/queue.
func (h *WordHandler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.queueStatus())
}

func (h *WordHandler) queueStatus() QueueStatusResponse {
	pending := h.store.PendingQueue()
	active := h.store.ActiveSet()
	if pending == nil {
		pending = []string{}
	}
	if active == nil {
		active = []string{}
	}
	return QueueStatusResponse{
		Pending:      pending,
		Active:       active,
		PendingCount: len(pending),
		ActiveCount:  len(active),
	}
}

// wordIDParam parses the {id} URL parameter, writing a 400 response on
// failure.
func wordIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	return uuidParam(w, r, "id")
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}
