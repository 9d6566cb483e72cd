package practice

import (
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/lexiflow/lexiflow/internal/domain"
	"github.com/lexiflow/lexiflow/internal/store"
)

// selectionTemperature controls how sharply the sampler prefers low-score
// (under-reviewed or error-prone) words. Lower values sharpen the preference.
const selectionTemperature = 0.5

// Rand is the source of randomness for selection. Production uses math/rand;
// tests substitute a deterministic sequence.
type Rand interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64

	// Intn returns a value in [0, n).
	Intn(n int) int
}

// SelectorStore is the slice of the vocabulary store the selector reads.
type SelectorStore interface {
	Words() []domain.Word
	SelectedCategories() []string
	GetReview(wordID uuid.UUID) (*domain.ReviewItem, error)
}

// Selection is one drawn quiz item: a word and one of its questions.
type Selection struct {
	Word     *domain.Word
	Question *domain.Question
}

// Selector draws the next word to practice. Words are weighted by how much
// they still need work: score = max(0, reviewCount - wrongCount), converted
// to a softmax-style weight exp(-score/T). The previously drawn word is
// excluded whenever an alternative exists.
type Selector struct {
	store SelectorStore
	rng   Rand

	mu             sync.Mutex
	previousWordID uuid.UUID
}

// NewSelector creates a selector over the given store and randomness source.
func NewSelector(selectorStore SelectorStore, rng Rand) *Selector {
	return &Selector{
		store: selectorStore,
		rng:   rng,
	}
}

// Next draws one word by priority weight and one of its questions uniformly.
// Returns ErrNoActiveWords when no enabled word with questions matches the
// category filter.
func (s *Selector) Next() (*Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := s.candidates()
	if len(candidates) == 0 {
		return nil, ErrNoActiveWords
	}

	// Anti-repetition: never show the same word twice in a row unless it is
	// the only option.
	if len(candidates) > 1 && s.previousWordID != uuid.Nil {
		filtered := candidates[:0]
		for _, w := range candidates {
			if w.ID != s.previousWordID {
				filtered = append(filtered, w)
			}
		}
		candidates = filtered
	}

	word := s.draw(candidates)
	question := word.Questions[s.rng.Intn(len(word.Questions))]

	s.previousWordID = word.ID

	return &Selection{Word: word, Question: &question}, nil
}

// Reset clears the anti-repetition memory, e.g. when a new session starts.
func (s *Selector) Reset() {
	s.mu.Lock()
	s.previousWordID = uuid.Nil
	s.mu.Unlock()
}

// candidates returns the enabled words with at least one question that match
// the store's selected categories.
func (s *Selector) candidates() []*domain.Word {
	selected := s.store.SelectedCategories()

	all := false
	categoryIDs := make(map[uuid.UUID]bool, len(selected))
	for _, sel := range selected {
		if sel == store.SelectionAll {
			all = true
			break
		}
		if id, err := uuid.Parse(sel); err == nil {
			categoryIDs[id] = true
		}
	}

	words := s.store.Words()

	var out []*domain.Word
	for i := range words {
		w := &words[i]
		if !w.Enabled || !w.HasQuestions() {
			continue
		}
		if !all && !intersects(w.CategoryIDs, categoryIDs) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// draw samples one candidate proportionally to its priority weight using the
// cumulative method. If the walk runs off the end (floating-point residue),
// the last candidate wins.
func (s *Selector) draw(candidates []*domain.Word) *domain.Word {
	weights := make([]float64, len(candidates))
	total := 0.0
	for i, w := range candidates {
		weights[i] = math.Exp(-s.score(w) / selectionTemperature)
		total += weights[i]
	}

	r := s.rng.Float64() * total
	for i, weight := range weights {
		r -= weight
		if r < 0 {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}

// score is the selection priority: lower means shown more often. A word with
// many clean reviews scores high and fades; wrong answers pull it back.
func (s *Selector) score(word *domain.Word) float64 {
	review, err := s.store.GetReview(word.ID)
	if err != nil {
		// No review record yet: maximum priority.
		return 0
	}

	score := review.ReviewCount - review.WrongCount
	if score < 0 {
		score = 0
	}
	return float64(score)
}

func intersects(ids []uuid.UUID, set map[uuid.UUID]bool) bool {
	for _, id := range ids {
		if set[id] {
			return true
		}
	}
	return false
}
