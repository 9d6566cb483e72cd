package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewOutcome classifies how a practice attempt went. The continuous notion
// of "how well did they know it" is collapsed upstream (hint count, give-up
// flag, answer evaluation) into these three buckets.
type ReviewOutcome string

// Possible review outcome values
const (
	ReviewOutcomeCorrectImmediate ReviewOutcome = "CORRECT_IMMEDIATE"
	ReviewOutcomeCorrectAfterHint ReviewOutcome = "CORRECT_AFTER_HINT"
	ReviewOutcomeWrongGiveUp      ReviewOutcome = "WRONG_GIVE_UP"
)

// IsValid reports whether the outcome is one of the known values.
func (o ReviewOutcome) IsValid() bool {
	switch o {
	case ReviewOutcomeCorrectImmediate,
		ReviewOutcomeCorrectAfterHint,
		ReviewOutcomeWrongGiveUp:
		return true
	default:
		return false
	}
}

// Common validation errors for ReviewItem
var (
	ErrEmptyReviewWordID      = errors.New("review item word ID cannot be empty")
	ErrNegativeReviewInterval = errors.New("review interval must be greater than or equal to 0")
)

// ReviewRecord is one entry in a review item's append-only history.
type ReviewRecord struct {
	Date    time.Time     `json:"date"`
	Outcome ReviewOutcome `json:"outcome"`
}

// ReviewItem tracks the spaced-repetition schedule for a single word.
// One-to-one with Word, keyed by WordID; created alongside the word and
// removed only when the word is deleted.
type ReviewItem struct {
	WordID      uuid.UUID      `json:"word_id"`
	NextReview  time.Time      `json:"next_review"`
	Interval    int            `json:"interval"` // Current interval in minutes
	ReviewCount int            `json:"review_count"`
	WrongCount  int            `json:"wrong_count"`
	History     []ReviewRecord `json:"history"`
}

// NewReviewItem creates review state for a word with default values.
// The word is due immediately.
func NewReviewItem(wordID uuid.UUID) (*ReviewItem, error) {
	item := &ReviewItem{
		WordID:      wordID,
		NextReview:  time.Now().UTC(),
		Interval:    0,
		ReviewCount: 0,
		WrongCount:  0,
		History:     nil,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the ReviewItem has valid data.
func (r *ReviewItem) Validate() error {
	if r.WordID == uuid.Nil {
		return ErrEmptyReviewWordID
	}

	if r.Interval < 0 {
		return ErrNegativeReviewInterval
	}

	return nil
}

// Clone returns a deep copy of the review item. The SRS service returns new
// instances rather than mutating in place, so copies must not share history.
func (r *ReviewItem) Clone() *ReviewItem {
	cp := *r
	cp.History = make([]ReviewRecord, len(r.History))
	copy(cp.History, r.History)
	return &cp
}
