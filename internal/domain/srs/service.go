package srs

import (
	"errors"
	"time"

	"github.com/lexiflow/lexiflow/internal/domain"
)

// Common errors
var (
	ErrNilItem        = errors.New("review item cannot be nil")
	ErrInvalidOutcome = errors.New("invalid review outcome")
)

// Service defines the interface for spaced-repetition operations.
type Service interface {
	// CalculateNextReview computes a new review item based on a review
	// outcome. The returned item is a new instance; the input is not
	// modified.
	CalculateNextReview(
		item *domain.ReviewItem,
		outcome domain.ReviewOutcome,
		now time.Time,
	) (*domain.ReviewItem, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// CalculateNextReview implements the Service interface.
func (s *defaultService) CalculateNextReview(
	item *domain.ReviewItem,
	outcome domain.ReviewOutcome,
	now time.Time,
) (*domain.ReviewItem, error) {
	if item == nil {
		return nil, ErrNilItem
	}

	if !outcome.IsValid() {
		return nil, ErrInvalidOutcome
	}

	return calculateNextReview(item, outcome, now, s.params), nil
}

