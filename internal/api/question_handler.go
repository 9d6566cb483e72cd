package api

import (
	"net/http"

	"github.com/lexiflow/lexiflow/internal/api/shared"
	"github.com/lexiflow/lexiflow/internal/domain"
	"github.com/lexiflow/lexiflow/internal/enrichment"
	"github.com/lexiflow/lexiflow/internal/store"
)

// AddQuestionRequest is the manual question creation body.
type AddQuestionRequest struct {
	Sentence    string `json:"sentence" validate:"required,min=1"`
	Translation string `json:"translation"`
	Cloze       string `json:"cloze" validate:"required,min=1"`
}

// UpdateQuestionRequest is a partial question edit; nil fields stay as they
// are.
type UpdateQuestionRequest struct {
	Sentence    *string `json:"sentence,omitempty"`
	Translation *string `json:"translation,omitempty"`
	Cloze       *string `json:"cloze,omitempty"`
}

// QuestionHandler handles question HTTP requests, including LLM-backed
// question generation for existing words.
type QuestionHandler struct {
	store    *store.Store
	enricher enrichment.Enricher
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(vocabStore *store.Store, enricher enrichment.Enricher) *QuestionHandler {
	return &QuestionHandler{
		store:    vocabStore,
		enricher: enricher,
	}
}

// AddQuestion handles POST /api/words/{id}/questions.
func (h *QuestionHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := wordIDParam(w, r)
	if !ok {
		return
	}

	if _, err := h.store.GetWord(id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	var req AddQuestionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: sentence and cloze are required")
		return
	}

	question, err := domain.NewQuestion(req.Sentence, req.Translation, req.Cloze)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.store.AddQuestion(id, *question)
	shared.RespondWithJSON(w, r, http.StatusCreated, question)
}

// GenerateQuestion handles POST /api/words/{id}/questions/generate: asks the
// language model for a fresh sentence and appends it to the word.
func (h *QuestionHandler) GenerateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := wordIDParam(w, r)
	if !ok {
		return
	}

	word, err := h.store.GetWord(id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	data, err := h.enricher.GenerateQuestion(r.Context(), word.Original)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	question, err := domain.NewQuestion(data.Sentence, data.Translation, data.Cloze)
	if err != nil {
		wrapped := enrichment.ErrInvalidResponse
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(wrapped), GetSafeErrorMessage(wrapped), err)
		return
	}

	h.store.AddQuestion(id, *question)
	shared.RespondWithJSON(w, r, http.StatusCreated, question)
}

// UpdateQuestion handles PATCH /api/words/{id}/questions/{question_id}.
func (h *QuestionHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	wordID, ok := wordIDParam(w, r)
	if !ok {
		return
	}
	questionID, ok := uuidParam(w, r, "question_id")
	if !ok {
		return
	}

	var req UpdateQuestionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	h.store.UpdateQuestion(wordID, questionID, store.QuestionPatch{
		Sentence:    req.Sentence,
		Translation: req.Translation,
		Cloze:       req.Cloze,
	})

	word, err := h.store.GetWord(wordID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, word)
}

// DeleteQuestion handles DELETE /api/words/{id}/questions/{question_id}.
// Removing the last question is permitted; the word simply drops out of
// practice selection until it regains one.
func (h *QuestionHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	wordID, ok := wordIDParam(w, r)
	if !ok {
		return
	}
	questionID, ok := uuidParam(w, r, "question_id")
	if !ok {
		return
	}

	h.store.DeleteQuestion(wordID, questionID)
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}
