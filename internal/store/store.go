package store

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexiflow/lexiflow/internal/domain"
)

// SelectionAll is the sentinel category selection meaning "no filter".
const SelectionAll = "all"

// MoveDirection indicates which way a category moves in the display order.
type MoveDirection string

// Category move directions
const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// QuestionPatch is a partial update to an embedded question. Nil fields are
// left unchanged.
type QuestionPatch struct {
	Sentence    *string `json:"sentence,omitempty"`
	Translation *string `json:"translation,omitempty"`
	Cloze       *string `json:"cloze,omitempty"`
}

// Store is the single source of truth for application state. All mutations
// are synchronous, atomic, last-writer-wins merges of partial updates;
// registered change listeners are notified after each mutation, outside the
// lock.
type Store struct {
	mu     sync.Mutex
	logger *slog.Logger

	words      map[uuid.UUID]*domain.Word
	categories map[uuid.UUID]*domain.Category
	reviews    map[uuid.UUID]*domain.ReviewItem
	settings   domain.Settings

	// pendingQueue is the FIFO of submitted word strings awaiting
	// enrichment; activeSet holds the strings currently in flight. A string
	// admitted to the active set is removed from pending in the same locked
	// step, so it is never in both.
	pendingQueue []string
	activeSet    []string

	selectedCategories []string
	categoryOrder      []uuid.UUID

	onChange []func()
}

// New creates an empty store with default settings.
func New(logger *slog.Logger) *Store {
	return &Store{
		logger:             logger.With("component", "store"),
		words:              make(map[uuid.UUID]*domain.Word),
		categories:         make(map[uuid.UUID]*domain.Category),
		reviews:            make(map[uuid.UUID]*domain.ReviewItem),
		settings:           domain.DefaultSettings(),
		selectedCategories: []string{SelectionAll},
	}
}

// RegisterOnChange adds a listener invoked after every mutation. Listeners
// run outside the store lock and must tolerate redundant invocations.
func (s *Store) RegisterOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	listeners := make([]func(), len(s.onChange))
	copy(listeners, s.onChange)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// --- word operations ---

// AddWord inserts the word and a fresh review item that is due immediately.
// An existing word with the same ID is overwritten (idempotent upsert), and
// its review state is reset alongside it.
func (s *Store) AddWord(word *domain.Word) error {
	if err := word.Validate(); err != nil {
		return err
	}

	review, err := domain.NewReviewItem(word.ID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.words[word.ID] = cloneWord(word)
	s.reviews[word.ID] = review
	s.mu.Unlock()

	s.logger.Debug("word added", "word_id", word.ID, "original", word.Original)
	s.notify()
	return nil
}

// DeleteWord removes the word and its review item. No-op if absent.
func (s *Store) DeleteWord(id uuid.UUID) {
	s.mu.Lock()
	delete(s.words, id)
	delete(s.reviews, id)
	s.mu.Unlock()
	s.notify()
}

// ClearAllWords empties words, reviews and both queue sets.
func (s *Store) ClearAllWords() {
	s.mu.Lock()
	s.words = make(map[uuid.UUID]*domain.Word)
	s.reviews = make(map[uuid.UUID]*domain.ReviewItem)
	s.pendingQueue = nil
	s.activeSet = nil
	s.mu.Unlock()

	s.logger.Info("all words cleared")
	s.notify()
}

// ToggleWordStatus flips the word's enabled flag. No-op if absent.
func (s *Store) ToggleWordStatus(id uuid.UUID) {
	s.mu.Lock()
	if w, ok := s.words[id]; ok {
		w.Enabled = !w.Enabled
	}
	s.mu.Unlock()
	s.notify()
}

// GetWord returns a copy of the word, or ErrWordNotFound.
func (s *Store) GetWord(id uuid.UUID) (*domain.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.words[id]
	if !ok {
		return nil, ErrWordNotFound
	}
	return cloneWord(w), nil
}

// Words returns copies of all words, newest first.
func (s *Store) Words() []domain.Word {
	s.mu.Lock()
	out := make([]domain.Word, 0, len(s.words))
	for _, w := range s.words {
		out = append(out, *cloneWord(w))
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out
}

// --- question operations ---

// AddQuestion appends the question to the word's question list. No-op if the
// word is absent.
func (s *Store) AddQuestion(wordID uuid.UUID, question domain.Question) {
	s.mu.Lock()
	if w, ok := s.words[wordID]; ok {
		w.Questions = append(w.Questions, question)
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateQuestion applies a partial update to an embedded question. No-op if
// the word or question is absent.
func (s *Store) UpdateQuestion(wordID, questionID uuid.UUID, patch QuestionPatch) {
	s.mu.Lock()
	if w, ok := s.words[wordID]; ok {
		for i := range w.Questions {
			if w.Questions[i].ID != questionID {
				continue
			}
			if patch.Sentence != nil {
				w.Questions[i].Sentence = *patch.Sentence
			}
			if patch.Translation != nil {
				w.Questions[i].Translation = *patch.Translation
			}
			if patch.Cloze != nil {
				w.Questions[i].Cloze = *patch.Cloze
			}
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// DeleteQuestion removes the question from the word's list. Deleting a
// word's last remaining question is permitted here; callers that need a
// minimum-one-question guarantee must enforce it themselves.
func (s *Store) DeleteQuestion(wordID, questionID uuid.UUID) {
	s.mu.Lock()
	if w, ok := s.words[wordID]; ok {
		kept := w.Questions[:0]
		for _, q := range w.Questions {
			if q.ID != questionID {
				kept = append(kept, q)
			}
		}
		w.Questions = kept
	}
	s.mu.Unlock()
	s.notify()
}

// --- review operations ---

// ResetWordStats zeroes the word's review counts, interval and history and
// makes it due immediately. No-op if absent.
func (s *Store) ResetWordStats(wordID uuid.UUID) {
	s.mu.Lock()
	if r, ok := s.reviews[wordID]; ok {
		r.Interval = 0
		r.ReviewCount = 0
		r.WrongCount = 0
		r.History = nil
		r.NextReview = time.Now().UTC()
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateReview replaces the review item keyed by its word ID.
func (s *Store) UpdateReview(item *domain.ReviewItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.reviews[item.WordID] = item.Clone()
	s.mu.Unlock()
	s.notify()
	return nil
}

// GetReview returns a copy of the word's review item, or ErrReviewNotFound.
func (s *Store) GetReview(wordID uuid.UUID) (*domain.ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[wordID]
	if !ok {
		return nil, ErrReviewNotFound
	}
	return r.Clone(), nil
}

// Reviews returns copies of all review items keyed by word ID.
func (s *Store) Reviews() map[uuid.UUID]*domain.ReviewItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[uuid.UUID]*domain.ReviewItem, len(s.reviews))
	for id, r := range s.reviews {
		out[id] = r.Clone()
	}
	return out
}

// GetDueReviews returns all review items due at or before now, ascending by
// next review time. Pure read, no side effects.
func (s *Store) GetDueReviews() []domain.ReviewItem {
	now := time.Now().UTC()

	s.mu.Lock()
	due := make([]domain.ReviewItem, 0)
	for _, r := range s.reviews {
		if !r.NextReview.After(now) {
			due = append(due, *r.Clone())
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].NextReview.Before(due[j].NextReview) })
	return due
}

// --- category operations ---

// AddCategory creates a category and appends it to the display order.
func (s *Store) AddCategory(name string) (*domain.Category, error) {
	category, err := domain.NewCategory(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.categories[category.ID] = category
	s.categoryOrder = append(s.categoryOrder, category.ID)
	s.mu.Unlock()

	s.notify()
	return category, nil
}

// DeleteCategory removes the category, strips its ID from every word, from
// the display order and from the current selection. Words themselves are
// never deleted; no record of former membership is kept. If the selection
// becomes empty it falls back to the "all" sentinel.
func (s *Store) DeleteCategory(id uuid.UUID) {
	s.mu.Lock()
	if _, ok := s.categories[id]; ok {
		delete(s.categories, id)

		for _, w := range s.words {
			kept := w.CategoryIDs[:0]
			for _, cid := range w.CategoryIDs {
				if cid != id {
					kept = append(kept, cid)
				}
			}
			w.CategoryIDs = kept
		}

		order := s.categoryOrder[:0]
		for _, cid := range s.categoryOrder {
			if cid != id {
				order = append(order, cid)
			}
		}
		s.categoryOrder = order

		selected := s.selectedCategories[:0]
		for _, sel := range s.selectedCategories {
			if sel != id.String() {
				selected = append(selected, sel)
			}
		}
		if len(selected) == 0 {
			selected = append(selected, SelectionAll)
		}
		s.selectedCategories = selected
	}
	s.mu.Unlock()
	s.notify()
}

// RenameCategory sets the category's name. No-op if absent.
func (s *Store) RenameCategory(id uuid.UUID, name string) {
	s.mu.Lock()
	if c, ok := s.categories[id]; ok && name != "" {
		c.Name = name
	}
	s.mu.Unlock()
	s.notify()
}

// MoveCategory swaps the category with its neighbor in the display order.
// No-op at the boundaries or if the category is not in the order.
func (s *Store) MoveCategory(id uuid.UUID, direction MoveDirection) {
	s.mu.Lock()
	idx := -1
	for i, cid := range s.categoryOrder {
		if cid == id {
			idx = i
			break
		}
	}
	switch {
	case idx < 0:
	case direction == MoveUp && idx > 0:
		s.categoryOrder[idx-1], s.categoryOrder[idx] = s.categoryOrder[idx], s.categoryOrder[idx-1]
	case direction == MoveDown && idx < len(s.categoryOrder)-1:
		s.categoryOrder[idx+1], s.categoryOrder[idx] = s.categoryOrder[idx], s.categoryOrder[idx+1]
	}
	s.mu.Unlock()
	s.notify()
}

// AddWordToCategory adds the category ID to the word's membership set.
// Idempotent; no-op if the word or category is absent.
func (s *Store) AddWordToCategory(wordID, categoryID uuid.UUID) {
	s.mu.Lock()
	w, wordOK := s.words[wordID]
	_, catOK := s.categories[categoryID]
	if wordOK && catOK && !w.InCategory(categoryID) {
		w.CategoryIDs = append(w.CategoryIDs, categoryID)
	}
	s.mu.Unlock()
	s.notify()
}

// RemoveWordFromCategory removes the category ID from the word's membership
// set. Idempotent; no-op if the word is absent.
func (s *Store) RemoveWordFromCategory(wordID, categoryID uuid.UUID) {
	s.mu.Lock()
	if w, ok := s.words[wordID]; ok {
		kept := w.CategoryIDs[:0]
		for _, cid := range w.CategoryIDs {
			if cid != categoryID {
				kept = append(kept, cid)
			}
		}
		w.CategoryIDs = kept
	}
	s.mu.Unlock()
	s.notify()
}

// Categories returns copies of all categories in display order; categories
// missing from the order list (never the normal case) are appended at the
// end by creation time.
func (s *Store) Categories() []domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[uuid.UUID]bool, len(s.categories))
	out := make([]domain.Category, 0, len(s.categories))
	for _, id := range s.categoryOrder {
		if c, ok := s.categories[id]; ok {
			out = append(out, *c)
			seen[id] = true
		}
	}

	var rest []domain.Category
	for id, c := range s.categories {
		if !seen[id] {
			rest = append(rest, *c)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].CreatedAt.Before(rest[j].CreatedAt) })
	return append(out, rest...)
}

// SelectedCategories returns the current category filter selection: either
// the "all" sentinel or a list of category ID strings.
func (s *Store) SelectedCategories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.selectedCategories))
	copy(out, s.selectedCategories)
	return out
}

// SetSelectedCategories replaces the category filter selection. An empty
// selection falls back to the "all" sentinel.
func (s *Store) SetSelectedCategories(selection []string) {
	s.mu.Lock()
	if len(selection) == 0 {
		selection = []string{SelectionAll}
	}
	s.selectedCategories = append([]string(nil), selection...)
	s.mu.Unlock()
	s.notify()
}

// --- settings ---

// Settings returns a copy of the current settings.
func (s *Store) Settings() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetSettings shallow-merges the patch into the settings.
func (s *Store) SetSettings(patch domain.SettingsPatch) error {
	s.mu.Lock()
	err := s.settings.Apply(patch)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// --- enrichment queue state ---

// EnqueuePending appends word strings to the pending queue. Duplicates are
// legal and processed independently; blank lines are skipped.
func (s *Store) EnqueuePending(words []string) {
	s.mu.Lock()
	for _, w := range words {
		if w != "" {
			s.pendingQueue = append(s.pendingQueue, w)
		}
	}
	s.mu.Unlock()
	s.notify()
}

// AdmitNext atomically pops the head of the pending queue and pushes it onto
// the active set. Returns false when the pending queue is empty. The single
// locked step keeps a word string from ever being in both.
func (s *Store) AdmitNext() (string, bool) {
	s.mu.Lock()
	if len(s.pendingQueue) == 0 {
		s.mu.Unlock()
		return "", false
	}
	word := s.pendingQueue[0]
	s.pendingQueue = s.pendingQueue[1:]
	s.activeSet = append(s.activeSet, word)
	s.mu.Unlock()

	s.notify()
	return word, true
}

// RemoveActive retires one occurrence of the word string from the active
// set, freeing its slot. No-op if absent.
func (s *Store) RemoveActive(word string) {
	s.mu.Lock()
	for i, w := range s.activeSet {
		if w == word {
			s.activeSet = append(s.activeSet[:i], s.activeSet[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// PendingQueue returns a copy of the pending word strings in FIFO order.
func (s *Store) PendingQueue() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pendingQueue...)
}

// ActiveSet returns a copy of the word strings currently in flight.
func (s *Store) ActiveSet() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.activeSet...)
}

// QueueCounts returns the pending and active lengths in one locked read.
func (s *Store) QueueCounts() (pending, active int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pendingQueue), len(s.activeSet)
}

// cloneWord deep-copies a word so callers never share the store's slices.
func cloneWord(w *domain.Word) *domain.Word {
	cp := *w
	cp.Questions = append([]domain.Question(nil), w.Questions...)
	cp.CategoryIDs = append([]uuid.UUID(nil), w.CategoryIDs...)
	return &cp
}
