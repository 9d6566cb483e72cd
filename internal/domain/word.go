package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ClozeBlank is the marker substituted for the target word inside a
// question's cloze text. The enrichment prompts instruct the model to use
// exactly this marker, and the practice session splits on it when rendering.
const ClozeBlank = "__________"

// Word-specific validation errors
var (
	// ErrWordIDEmpty is returned when a word ID is empty or nil.
	ErrWordIDEmpty = errors.New("word ID cannot be empty")

	// ErrWordOriginalEmpty is returned when a word's original text is empty.
	ErrWordOriginalEmpty = errors.New("word original text cannot be empty")

	// ErrQuestionIDEmpty is returned when a question ID is empty or nil.
	ErrQuestionIDEmpty = errors.New("question ID cannot be empty")

	// ErrQuestionSentenceEmpty is returned when a question's sentence is empty.
	ErrQuestionSentenceEmpty = errors.New("question sentence cannot be empty")

	// ErrQuestionClozeInvalid is returned when a question's cloze text does not
	// contain the blank marker.
	ErrQuestionClozeInvalid = errors.New("question cloze must contain the blank marker")
)

// Question is a single fill-in-the-blank exercise for a word. Questions are
// embedded in their parent Word as an insertion-order list.
type Question struct {
	ID          uuid.UUID `json:"id"`
	Sentence    string    `json:"sentence"`
	Translation string    `json:"translation"`
	Cloze       string    `json:"cloze"`
}

// NewQuestion creates a Question with a fresh ID.
// Returns an error if validation fails.
func NewQuestion(sentence, translation, cloze string) (*Question, error) {
	q := &Question{
		ID:          uuid.New(),
		Sentence:    sentence,
		Translation: translation,
		Cloze:       cloze,
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}

	return q, nil
}

// Validate checks if the Question has valid data.
func (q *Question) Validate() error {
	if q.ID == uuid.Nil {
		return ErrQuestionIDEmpty
	}

	if strings.TrimSpace(q.Sentence) == "" {
		return ErrQuestionSentenceEmpty
	}

	if !strings.Contains(q.Cloze, ClozeBlank) {
		return ErrQuestionClozeInvalid
	}

	return nil
}

// Word is a vocabulary entry owned by the vocabulary store. It is created
// when enrichment completes (or via manual add), and carries its practice
// questions inline.
type Word struct {
	ID              uuid.UUID   `json:"id"`
	Original        string      `json:"original"`
	WordTranslation string      `json:"word_translation"`
	Questions       []Question  `json:"questions"`
	Enabled         bool        `json:"enabled"`
	AddedAt         time.Time   `json:"added_at"`
	CategoryIDs     []uuid.UUID `json:"category_ids"`
}

// NewWord creates an enabled Word with a fresh ID, no category assignment
// and the given questions. Returns an error if validation fails.
func NewWord(original, wordTranslation string, questions []Question) (*Word, error) {
	w := &Word{
		ID:              uuid.New(),
		Original:        original,
		WordTranslation: wordTranslation,
		Questions:       questions,
		Enabled:         true,
		AddedAt:         time.Now().UTC(),
		CategoryIDs:     nil,
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}

	return w, nil
}

// Validate checks if the Word has valid data.
// A word with zero questions is valid at this layer; callers that need a
// minimum-one-question guarantee must enforce it themselves.
func (w *Word) Validate() error {
	if w.ID == uuid.Nil {
		return ErrWordIDEmpty
	}

	if strings.TrimSpace(w.Original) == "" {
		return ErrWordOriginalEmpty
	}

	for i := range w.Questions {
		if err := w.Questions[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// HasQuestions reports whether the word has at least one question and is
// therefore usable for practice.
func (w *Word) HasQuestions() bool {
	return len(w.Questions) > 0
}

// InCategory reports whether the word is a member of the given category.
func (w *Word) InCategory(categoryID uuid.UUID) bool {
	for _, id := range w.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}
