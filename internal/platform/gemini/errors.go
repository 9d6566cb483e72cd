package gemini

import "errors"

// Package-specific errors
var (
	// ErrEmptyWord is returned when a generation method is called with an
	// empty word.
	ErrEmptyWord = errors.New("word cannot be empty")

	// ErrEmptyInput is returned when answer evaluation is missing the user
	// input or context sentence.
	ErrEmptyInput = errors.New("evaluation input cannot be empty")
)
