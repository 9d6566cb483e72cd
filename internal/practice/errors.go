package practice

import "errors"

// Common errors returned by the practice package
var (
	// ErrNoActiveWords is returned when no enabled word with at least one
	// question matches the current category filter.
	ErrNoActiveWords = errors.New("no active words available for practice")

	// ErrNoAttempt is returned when an attempt operation is invoked with no
	// attempt in progress.
	ErrNoAttempt = errors.New("no practice attempt in progress")

	// ErrAttemptFinished is returned when answering or hinting on an attempt
	// that already completed.
	ErrAttemptFinished = errors.New("practice attempt already finished")

	// ErrHintsExhausted is returned after the third hint has been taken.
	ErrHintsExhausted = errors.New("no hints remaining")

	// ErrEmptyInput is returned when a submitted answer is blank.
	ErrEmptyInput = errors.New("answer input cannot be empty")

	// ErrEvaluationFailed is returned when the language model could not judge
	// an answer. The attempt stays open and the submission can be retried.
	ErrEvaluationFailed = errors.New("failed to evaluate answer")
)
