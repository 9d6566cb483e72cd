package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexiflow/lexiflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCalculateNextReview(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Now().UTC()

	item, err := domain.NewReviewItem(uuid.New())
	require.NoError(t, err)

	updated, err := service.CalculateNextReview(item, domain.ReviewOutcomeCorrectAfterHint, now)
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Interval)
	assert.Equal(t, 1, updated.ReviewCount)
	assert.True(t, updated.NextReview.Equal(now.Add(10*time.Minute)))

	// Nil item
	_, err = service.CalculateNextReview(nil, domain.ReviewOutcomeCorrectImmediate, now)
	assert.ErrorIs(t, err, ErrNilItem)

	// Unknown outcome
	_, err = service.CalculateNextReview(item, domain.ReviewOutcome("good"), now)
	assert.ErrorIs(t, err, ErrInvalidOutcome)
}

func TestServiceWithCustomParams(t *testing.T) {
	t.Parallel()
	service := NewServiceWithParams(NewParams(ParamsConfig{WrongMinutes: 2}))
	now := time.Now().UTC()

	item, err := domain.NewReviewItem(uuid.New())
	require.NoError(t, err)

	updated, err := service.CalculateNextReview(item, domain.ReviewOutcomeWrongGiveUp, now)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Interval)
	assert.Equal(t, 1, updated.WrongCount)
}

