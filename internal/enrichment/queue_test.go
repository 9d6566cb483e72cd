package enrichment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/lexiflow/lexiflow/internal/domain"
	"github.com/lexiflow/lexiflow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEnricher simulates the external language model. It tracks the peak
// number of concurrent calls and can be told to fail specific words.
type fakeEnricher struct {
	mu            sync.Mutex
	concurrent    int
	maxConcurrent int
	failing       map[string]bool
	delay         time.Duration
}

func newFakeEnricher(delay time.Duration) *fakeEnricher {
	return &fakeEnricher{
		failing: make(map[string]bool),
		delay:   delay,
	}
}

func (f *fakeEnricher) failWord(word string) {
	f.mu.Lock()
	f.failing[word] = true
	f.mu.Unlock()
}

func (f *fakeEnricher) peak() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxConcurrent
}

func (f *fakeEnricher) GenerateWordData(ctx context.Context, word string) (*WordData, error) {
	f.mu.Lock()
	f.concurrent++
	if f.concurrent > f.maxConcurrent {
		f.maxConcurrent = f.concurrent
	}
	shouldFail := f.failing[word]
	f.mu.Unlock()

	time.Sleep(f.delay)

	f.mu.Lock()
	f.concurrent--
	f.mu.Unlock()

	if shouldFail {
		return nil, fmt.Errorf("%w: simulated provider outage", ErrGenerationFailed)
	}

	return &WordData{
		Original:        word,
		WordTranslation: "翻譯",
		Questions: []QuestionData{
			{
				Sentence:    "A sentence with " + word + ".",
				Translation: "句子翻譯",
				Cloze:       "A sentence with " + domain.ClozeBlank + ".",
			},
		},
	}, nil
}

func (f *fakeEnricher) GenerateQuestion(ctx context.Context, word string) (*QuestionData, error) {
	return &QuestionData{
		Sentence:    "Another sentence with " + word + ".",
		Translation: "句子翻譯",
		Cloze:       "Another sentence with " + domain.ClozeBlank + ".",
	}, nil
}

func (f *fakeEnricher) EvaluateAnswer(ctx context.Context, targetWord, userInput, sentence string) (*Evaluation, error) {
	return &Evaluation{IsCorrect: userInput == targetWord, Type: EvaluationCorrect}, nil
}

func newTestController(t *testing.T, enricher Enricher, limit int) (*Controller, *store.Store) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(logger)
	require.NoError(t, st.SetSettings(domain.SettingsPatch{ConcurrencyLimit: &limit}))

	controller, err := NewController(st, enricher, logger)
	require.NoError(t, err)

	// Mirror production wiring: every store mutation re-triggers admission.
	st.RegisterOnChange(controller.OnStateChange)

	controller.Start()
	t.Cleanup(controller.Stop)
	return controller, st
}

func TestControllerDrainsQueue(t *testing.T) {
	t.Parallel()
	enricher := newFakeEnricher(10 * time.Millisecond)
	controller, st := newTestController(t, enricher, 2)

	controller.Enqueue([]string{"alpha", "beta", "gamma", "delta", "epsilon"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, controller.Drain(ctx))

	pending, active := st.QueueCounts()
	assert.Zero(t, pending)
	assert.Zero(t, active)

	// Every word completed and became a vocabulary entry
	assert.Len(t, st.Words(), 5)

	// The concurrency limit was never exceeded
	assert.LessOrEqual(t, enricher.peak(), 2)
	assert.GreaterOrEqual(t, enricher.peak(), 1)
}

func TestControllerFailureIsolation(t *testing.T) {
	t.Parallel()
	enricher := newFakeEnricher(5 * time.Millisecond)
	enricher.failWord("broken")
	controller, st := newTestController(t, enricher, 1)

	// The failing word sits between two good ones; with limit 1 a stuck
	// slot would stall everything behind it.
	controller.Enqueue([]string{"first", "broken", "third"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, controller.Drain(ctx))

	words := st.Words()
	require.Len(t, words, 2)

	originals := []string{words[0].Original, words[1].Original}
	assert.ElementsMatch(t, []string{"first", "third"}, originals)
}

func TestControllerAllFailuresStillDrain(t *testing.T) {
	t.Parallel()
	enricher := newFakeEnricher(time.Millisecond)
	for _, w := range []string{"a", "b", "c", "d"} {
		enricher.failWord(w)
	}
	controller, st := newTestController(t, enricher, 3)

	controller.Enqueue([]string{"a", "b", "c", "d"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, controller.Drain(ctx))

	pending, active := st.QueueCounts()
	assert.Zero(t, pending)
	assert.Zero(t, active)
	assert.Empty(t, st.Words())
}

func TestControllerRaisingLimitAdmitsMore(t *testing.T) {
	t.Parallel()
	enricher := newFakeEnricher(20 * time.Millisecond)
	controller, st := newTestController(t, enricher, 1)

	controller.Enqueue([]string{"one", "two", "three", "four", "five", "six"})

	// Raising the limit mid-run takes effect on the next re-evaluation,
	// which the settings mutation itself triggers.
	limit := 3
	require.NoError(t, st.SetSettings(domain.SettingsPatch{ConcurrencyLimit: &limit}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, controller.Drain(ctx))

	assert.Len(t, st.Words(), 6)
	assert.LessOrEqual(t, enricher.peak(), 3)
	assert.GreaterOrEqual(t, enricher.peak(), 2)
}

func TestControllerDuplicateWordsProcessedIndependently(t *testing.T) {
	t.Parallel()
	enricher := newFakeEnricher(time.Millisecond)
	controller, st := newTestController(t, enricher, 2)

	controller.Enqueue([]string{"echo", "echo"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, controller.Drain(ctx))

	// No dedup: two independent vocabulary entries
	assert.Len(t, st.Words(), 2)
}

func TestBuildWord(t *testing.T) {
	t.Parallel()
	data := &WordData{
		Original:        "eloquent",
		WordTranslation: "雄辯的",
		Questions: []QuestionData{
			{Sentence: "An eloquent speech.", Translation: "t", Cloze: "An " + domain.ClozeBlank + " speech."},
			{Sentence: "Missing marker.", Translation: "t", Cloze: "Missing marker."}, // dropped
		},
	}

	word, err := buildWord(data)
	require.NoError(t, err)
	assert.Equal(t, "eloquent", word.Original)
	assert.True(t, word.Enabled)
	assert.Len(t, word.Questions, 1)
	assert.Empty(t, word.CategoryIDs)

	// No usable question at all
	_, err = buildWord(&WordData{Original: "x", Questions: []QuestionData{{Sentence: "s", Cloze: "no marker"}}})
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = buildWord(nil)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestNewControllerValidation(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(logger)
	enricher := newFakeEnricher(0)

	_, err := NewController(nil, enricher, logger)
	assert.ErrorIs(t, err, ErrNilStore)

	_, err = NewController(st, nil, logger)
	assert.ErrorIs(t, err, ErrNilEnricher)

	_, err = NewController(st, enricher, nil)
	assert.ErrorIs(t, err, ErrNilLogger)
}
