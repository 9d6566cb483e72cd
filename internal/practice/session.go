package practice

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/lexiflow/lexiflow/internal/domain"
	"github.com/lexiflow/lexiflow/internal/domain/srs"
	"github.com/lexiflow/lexiflow/internal/enrichment"
)

// maxHints is the depth of the hint ladder.
const maxHints = 3

// AttemptState tracks where a single quiz attempt stands.
type AttemptState string

// Attempt lifecycle states
const (
	// StatePresented: question shown, answer not yet resolved. Hints and
	// submissions are accepted.
	StatePresented AttemptState = "presented"

	// StateRevealed: user gave up, answer is shown, waiting for an explicit
	// acknowledgment before the next draw.
	StateRevealed AttemptState = "revealed"

	// StateCompleted: outcome recorded; the attempt is over.
	StateCompleted AttemptState = "completed"
)

// Attempt is the public view of the in-progress quiz attempt.
type Attempt struct {
	Word      domain.Word     `json:"word"`
	Question  domain.Question `json:"question"`
	HintsUsed int             `json:"hints_used"`
	State     AttemptState    `json:"state"`
}

// SubmitResult carries the evaluation of an answer and, when the answer was
// accepted, the review update it produced.
type SubmitResult struct {
	Evaluation enrichment.Evaluation `json:"evaluation"`
	Outcome    domain.ReviewOutcome  `json:"outcome,omitempty"`
	Review     *domain.ReviewItem    `json:"review,omitempty"`
}

// GiveUpResult reveals the answer after a surrender and carries the review
// penalty that was recorded.
type GiveUpResult struct {
	Answer string             `json:"answer"`
	Review *domain.ReviewItem `json:"review"`
}

// SessionStore is the slice of the vocabulary store the session writes to.
type SessionStore interface {
	SelectorStore
	UpdateReview(item *domain.ReviewItem) error
}

// Session runs the practice loop for one user: draw a word, accept hints and
// answers, record the spaced-repetition outcome, repeat. A session holds at
// most one attempt at a time; drawing a new word abandons an unresolved one
// without recording anything.
type Session struct {
	store    SessionStore
	selector *Selector
	enricher enrichment.Enricher
	srs      srs.Service
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	current *Attempt
}

// NewSession wires a practice session. The now function is injectable for
// tests; pass nil for time.Now.
func NewSession(
	sessionStore SessionStore,
	selector *Selector,
	enricher enrichment.Enricher,
	srsService srs.Service,
	logger *slog.Logger,
	now func() time.Time,
) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		store:    sessionStore,
		selector: selector,
		enricher: enricher,
		srs:      srsService,
		logger:   logger.With("component", "practice_session"),
		now:      now,
	}
}

// Next draws the next word and question. Any unresolved previous attempt is
// abandoned with no review recorded.
func (s *Session) Next() (*Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	selection, err := s.selector.Next()
	if err != nil {
		return nil, err
	}

	s.current = &Attempt{
		Word:     *selection.Word,
		Question: *selection.Question,
		State:    StatePresented,
	}

	s.logger.Debug("practice word drawn",
		"word_id", s.current.Word.ID,
		"question_id", s.current.Question.ID)

	attempt := *s.current
	return &attempt, nil
}

// Current returns the in-progress attempt, or ErrNoAttempt.
func (s *Session) Current() (*Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoAttempt
	}
	attempt := *s.current
	return &attempt, nil
}

// Hint reveals a prefix of the answer: first one character, then two, then
// half the word. Taking any hint downgrades a later correct answer to
// CORRECT_AFTER_HINT. A fourth hint returns ErrHintsExhausted.
func (s *Session) Hint() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return "", ErrNoAttempt
	}
	if s.current.State != StatePresented {
		return "", ErrAttemptFinished
	}
	if s.current.HintsUsed >= maxHints {
		return "", ErrHintsExhausted
	}

	s.current.HintsUsed++
	return hintPrefix(s.current.Word.Original, s.current.HintsUsed), nil
}

// Submit evaluates the user's answer against the target word. A correct
// answer completes the attempt and records CORRECT_IMMEDIATE or
// CORRECT_AFTER_HINT depending on hint use. An incorrect answer leaves the
// attempt open for another try and records nothing. An evaluation failure is
// returned as ErrEvaluationFailed and is retryable.
func (s *Session) Submit(ctx context.Context, input string) (*SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoAttempt
	}
	if s.current.State != StatePresented {
		return nil, ErrAttemptFinished
	}
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	evaluation, err := s.enricher.EvaluateAnswer(ctx, s.current.Word.Original, input, s.current.Question.Sentence)
	if err != nil {
		s.logger.Error("answer evaluation failed",
			"word_id", s.current.Word.ID,
			"error", err)
		return nil, fmt.Errorf("%w: %v", ErrEvaluationFailed, err)
	}

	result := &SubmitResult{Evaluation: *evaluation}
	if !evaluation.IsCorrect {
		// Wrong but judged: the user may retry or give up. No review change.
		return result, nil
	}

	outcome := domain.ReviewOutcomeCorrectImmediate
	if s.current.HintsUsed > 0 {
		outcome = domain.ReviewOutcomeCorrectAfterHint
	}

	review, err := s.recordOutcome(outcome)
	if err != nil {
		return nil, err
	}

	s.current.State = StateCompleted
	result.Outcome = outcome
	result.Review = review
	return result, nil
}

// GiveUp surrenders the attempt: the answer is revealed, WRONG_GIVE_UP is
// recorded, and the session waits for Acknowledge before the next draw.
func (s *Session) GiveUp() (*GiveUpResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoAttempt
	}
	if s.current.State != StatePresented {
		return nil, ErrAttemptFinished
	}

	review, err := s.recordOutcome(domain.ReviewOutcomeWrongGiveUp)
	if err != nil {
		return nil, err
	}

	s.current.State = StateRevealed
	return &GiveUpResult{
		Answer: s.current.Word.Original,
		Review: review,
	}, nil
}

// Acknowledge confirms the user has seen a revealed answer and closes the
// attempt.
func (s *Session) Acknowledge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoAttempt
	}
	if s.current.State != StateRevealed {
		return ErrAttemptFinished
	}

	s.current.State = StateCompleted
	return nil
}

// recordOutcome applies the spaced-repetition update for the current
// attempt's word. Caller holds s.mu.
func (s *Session) recordOutcome(outcome domain.ReviewOutcome) (*domain.ReviewItem, error) {
	now := s.now()

	review, err := s.store.GetReview(s.current.Word.ID)
	if err != nil {
		// A word without a review record starts from scratch.
		review, err = domain.NewReviewItem(s.current.Word.ID)
		if err != nil {
			return nil, err
		}
	}

	updated, err := s.srs.CalculateNextReview(review, outcome, now)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateReview(updated); err != nil {
		return nil, err
	}

	s.logger.Info("review recorded",
		"word_id", s.current.Word.ID,
		"outcome", outcome,
		"interval_minutes", updated.Interval,
		"review_count", updated.ReviewCount)

	return updated, nil
}

// hintPrefix returns the revealed portion of the answer for the nth hint:
// one rune, two runes, then the first half rounded up.
func hintPrefix(word string, hintsUsed int) string {
	runes := []rune(word)

	var n int
	switch hintsUsed {
	case 1:
		n = 1
	case 2:
		n = 2
	default:
		n = int(math.Ceil(float64(len(runes)) / 2))
	}

	if n > len(runes) {
		n = len(runes)
	}
	return string(runes[:n])
}
