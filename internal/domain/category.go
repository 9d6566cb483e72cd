package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category-specific validation errors
var (
	// ErrCategoryIDEmpty is returned when a category ID is empty or nil.
	ErrCategoryIDEmpty = errors.New("category ID cannot be empty")

	// ErrCategoryNameEmpty is returned when a category's name is empty.
	ErrCategoryNameEmpty = errors.New("category name cannot be empty")
)

// Category groups words for filtering on the dashboard and during practice.
// Words reference categories by ID. The reference is weak: deleting a
// category strips the ID from every word but never deletes words.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCategory creates a Category with a fresh ID.
// Returns an error if validation fails.
func NewCategory(name string) (*Category, error) {
	c := &Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks if the Category has valid data.
func (c *Category) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCategoryIDEmpty
	}

	if strings.TrimSpace(c.Name) == "" {
		return ErrCategoryNameEmpty
	}

	return nil
}
