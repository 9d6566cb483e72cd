package srs

import (
	"time"

	"github.com/lexiflow/lexiflow/internal/domain"
)

// calculateNewInterval determines the new interval in minutes based on the
// review outcome and the item's current interval.
//
// This is a deliberately simple table-driven policy, not a forgetting-curve
// model. The outcome already collapses "how well did they know it" into three
// buckets, so the table is:
//   - CORRECT_IMMEDIATE: at least CorrectFloorMinutes; once the interval is
//     above the floor it doubles instead, giving geometric growth for words
//     the user keeps getting right.
//   - CORRECT_AFTER_HINT: flat HintMinutes, regardless of prior interval.
//   - WRONG_GIVE_UP: flat WrongMinutes, regardless of prior interval.
func calculateNewInterval(
	currentInterval int,
	outcome domain.ReviewOutcome,
	params *Params,
) int {
	switch outcome {
	case domain.ReviewOutcomeCorrectImmediate:
		doubled := currentInterval * 2
		if doubled < params.CorrectFloorMinutes {
			return params.CorrectFloorMinutes
		}
		return doubled
	case domain.ReviewOutcomeCorrectAfterHint:
		return params.HintMinutes
	case domain.ReviewOutcomeWrongGiveUp:
		return params.WrongMinutes
	default:
		return currentInterval
	}
}

// calculateNextReview creates a new ReviewItem with updated values based on
// the review outcome.
//
// The function follows immutability principles: it returns a new item rather
// than modifying the existing one. In all cases the review count increments,
// the outcome is appended to the item's history, and the next review time is
// now plus the new interval. Only WRONG_GIVE_UP increments the wrong count.
func calculateNextReview(
	item *domain.ReviewItem,
	outcome domain.ReviewOutcome,
	now time.Time,
	params *Params,
) *domain.ReviewItem {
	newItem := item.Clone()

	newItem.Interval = calculateNewInterval(item.Interval, outcome, params)
	newItem.NextReview = now.Add(time.Duration(newItem.Interval) * time.Minute)
	newItem.ReviewCount++

	if outcome == domain.ReviewOutcomeWrongGiveUp {
		newItem.WrongCount++
	}

	newItem.History = append(newItem.History, domain.ReviewRecord{
		Date:    now,
		Outcome: outcome,
	})

	return newItem
}
