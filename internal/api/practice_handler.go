package api

import (
	"errors"
	"net/http"

	"github.com/lexiflow/lexiflow/internal/api/shared"
	"github.com/lexiflow/lexiflow/internal/domain"
	"github.com/lexiflow/lexiflow/internal/practice"
	"github.com/lexiflow/lexiflow/internal/store"
)

// SubmitAnswerRequest carries the user's fill-in answer.
type SubmitAnswerRequest struct {
	Input string `json:"input" validate:"required,min=1"`
}

// HintResponse reveals a prefix of the answer.
type HintResponse struct {
	Hint      string `json:"hint"`
	HintsUsed int    `json:"hints_used"`
	HintsLeft int    `json:"hints_left"`
}

// DueReviewsResponse lists review items due now, soonest first.
type DueReviewsResponse struct {
	Due []domain.ReviewItem `json:"due"`
}

// PracticeHandler handles the practice loop HTTP requests.
type PracticeHandler struct {
	store   *store.Store
	session *practice.Session
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(vocabStore *store.Store, session *practice.Session) *PracticeHandler {
	return &PracticeHandler{
		store:   vocabStore,
		session: session,
	}
}

// NextWord handles POST /api/practice/next: draws the next word and
// question. Responds 204 when no word is eligible.
func (h *PracticeHandler) NextWord(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.session.Next()
	if err != nil {
		if errors.Is(err, practice.ErrNoActiveWords) {
			shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, attempt)
}

// CurrentAttempt handles GET /api/practice/current.
func (h *PracticeHandler) CurrentAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.session.Current()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, attempt)
}

// Hint handles POST /api/practice/hint.
func (h *PracticeHandler) Hint(w http.ResponseWriter, r *http.Request) {
	hint, err := h.session.Hint()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	attempt, err := h.session.Current()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HintResponse{
		Hint:      hint,
		HintsUsed: attempt.HintsUsed,
		HintsLeft: 3 - attempt.HintsUsed,
	})
}

// SubmitAnswer handles POST /api/practice/answer. The evaluation verdict is
// returned whether or not the answer was accepted; an incorrect answer
// leaves the attempt open.
func (h *PracticeHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req SubmitAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: input is required")
		return
	}

	result, err := h.session.Submit(r.Context(), req.Input)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// GiveUp handles POST /api/practice/give-up: reveals the answer and records
// the penalty. The attempt stays open until acknowledged.
func (h *PracticeHandler) GiveUp(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.GiveUp()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Acknowledge handles POST /api/practice/acknowledge, confirming a revealed
// answer was seen.
func (h *PracticeHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Acknowledge(); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// DueReviews handles GET /api/reviews/due.
func (h *PracticeHandler) DueReviews(w http.ResponseWriter, r *http.Request) {
	due := h.store.GetDueReviews()
	if due == nil {
		due = []domain.ReviewItem{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DueReviewsResponse{Due: due})
}
