package enrichment

import "errors"

// Common errors returned by the enrichment package. Provider-specific
// detail stays in logs; the data model only ever sees these.
var (
	// ErrGenerationFailed is returned when word enrichment fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate word data")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during enrichment")

	// ErrInvalidConfig is returned when the enricher configuration is invalid
	ErrInvalidConfig = errors.New("invalid enricher configuration")
)
