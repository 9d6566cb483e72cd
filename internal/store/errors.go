package store

import (
	"errors"
	"fmt"
)

// Common store errors.
var (
	// ErrNotFound is returned by read accessors when a requested entity does
	// not exist. Mutation operations on missing IDs are deliberately no-ops
	// instead, which keeps the store robust against stale references after a
	// concurrent deletion.
	ErrNotFound = errors.New("entity not found")

	// ErrWordNotFound indicates that the requested word does not exist.
	ErrWordNotFound = fmt.Errorf("%w: word", ErrNotFound)

	// ErrCategoryNotFound indicates that the requested category does not exist.
	ErrCategoryNotFound = fmt.Errorf("%w: category", ErrNotFound)

	// ErrReviewNotFound indicates that the requested review item does not exist.
	ErrReviewNotFound = fmt.Errorf("%w: review item", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
