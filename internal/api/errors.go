package api

import (
	"errors"
	"net/http"

	"github.com/lexiflow/lexiflow/internal/domain"
	"github.com/lexiflow/lexiflow/internal/enrichment"
	"github.com/lexiflow/lexiflow/internal/practice"
	"github.com/lexiflow/lexiflow/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found
	case errors.Is(err, store.ErrWordNotFound),
		errors.Is(err, store.ErrCategoryNotFound),
		errors.Is(err, store.ErrReviewNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Practice flow states the client can recover from
	case errors.Is(err, practice.ErrNoActiveWords):
		return http.StatusNoContent

	case errors.Is(err, practice.ErrNoAttempt),
		errors.Is(err, practice.ErrAttemptFinished),
		errors.Is(err, practice.ErrHintsExhausted):
		return http.StatusConflict

	case errors.Is(err, practice.ErrEmptyInput):
		return http.StatusBadRequest

	// The enrichment provider is misconfigured or unavailable
	case errors.Is(err, practice.ErrEvaluationFailed),
		errors.Is(err, enrichment.ErrGenerationFailed),
		errors.Is(err, enrichment.ErrTransientFailure),
		errors.Is(err, enrichment.ErrInvalidResponse),
		errors.Is(err, enrichment.ErrContentBlocked):
		return http.StatusBadGateway

	case errors.Is(err, enrichment.ErrInvalidConfig):
		return http.StatusUnprocessableEntity

	// Validation failures from the domain layer
	case errors.Is(err, domain.ErrInvalidConcurrencyLimit),
		errors.Is(err, domain.ErrWordOriginalEmpty),
		errors.Is(err, domain.ErrQuestionSentenceEmpty),
		errors.Is(err, domain.ErrQuestionClozeInvalid),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrWordNotFound):
		return "Word not found"

	case errors.Is(err, store.ErrCategoryNotFound):
		return "Category not found"

	case errors.Is(err, store.ErrReviewNotFound):
		return "Review record not found"

	case errors.Is(err, practice.ErrNoAttempt):
		return "No practice attempt in progress"

	case errors.Is(err, practice.ErrAttemptFinished):
		return "The current attempt is already finished"

	case errors.Is(err, practice.ErrHintsExhausted):
		return "No hints remaining"

	case errors.Is(err, practice.ErrEmptyInput):
		return "Answer cannot be empty"

	case errors.Is(err, practice.ErrEvaluationFailed):
		return "Could not evaluate the answer; please try again"

	case errors.Is(err, enrichment.ErrContentBlocked):
		return "The language model declined to generate content for this word"

	case errors.Is(err, enrichment.ErrGenerationFailed),
		errors.Is(err, enrichment.ErrTransientFailure),
		errors.Is(err, enrichment.ErrInvalidResponse):
		return "The language model is unavailable; please try again"

	case errors.Is(err, enrichment.ErrInvalidConfig):
		return "Enrichment provider is not configured"

	case errors.Is(err, domain.ErrInvalidConcurrencyLimit):
		return "Concurrency limit must be at least 1"

	case errors.Is(err, domain.ErrWordOriginalEmpty):
		return "Word text cannot be empty"

	case errors.Is(err, domain.ErrQuestionSentenceEmpty):
		return "Question sentence cannot be empty"

	case errors.Is(err, domain.ErrQuestionClozeInvalid):
		return "Cloze text must contain the blank marker"

	case errors.Is(err, domain.ErrValidation):
		return "Invalid data"

	default:
		return "An unexpected error occurred"
	}
}
