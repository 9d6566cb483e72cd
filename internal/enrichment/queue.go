package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lexiflow/lexiflow/internal/domain"
)

// Common controller errors
var (
	ErrNilStore    = errors.New("store cannot be nil")
	ErrNilEnricher = errors.New("enricher cannot be nil")
	ErrNilLogger   = errors.New("logger cannot be nil")
)

// QueueStore is the slice of the vocabulary store the controller needs: the
// pending/active queue state, the concurrency limit and the write path for
// finished words.
type QueueStore interface {
	// EnqueuePending appends word strings to the pending FIFO.
	EnqueuePending(words []string)

	// AdmitNext atomically moves the pending head into the active set.
	AdmitNext() (string, bool)

	// RemoveActive retires a word string from the active set.
	RemoveActive(word string)

	// QueueCounts returns the pending and active lengths.
	QueueCounts() (pending, active int)

	// Settings returns the current user settings (for the concurrency limit).
	Settings() domain.Settings

	// AddWord inserts a completed word with a fresh review item.
	AddWord(word *domain.Word) error
}

// Controller drains the pending queue into the active set up to the
// concurrency limit, dispatches one enrichment call per active item, and
// retires items when their call completes. Admission is strict FIFO;
// completion order is whatever order the external calls return in.
//
// The scheduling policy is a single admission loop re-run on every state
// change. Re-evaluation is idempotent: invoking it when no capacity is free
// or nothing is pending is a no-op, so it is safe to trigger redundantly
// (the store does, after every mutation).
type Controller struct {
	store    QueueStore
	enricher Enricher
	logger   *slog.Logger

	// notify coalesces state-change signals for the admission loop.
	notify chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	// loopWG tracks the admission loop; taskWG tracks in-flight enrichment
	// tasks. Tasks are never cancelled; an in-flight call always runs to
	// completion and frees its slot.
	loopWG sync.WaitGroup
	taskWG sync.WaitGroup
}

// NewController creates a queue controller. Call Start to begin admitting.
func NewController(queueStore QueueStore, enricher Enricher, logger *slog.Logger) (*Controller, error) {
	if queueStore == nil {
		return nil, ErrNilStore
	}
	if enricher == nil {
		return nil, ErrNilEnricher
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		store:    queueStore,
		enricher: enricher,
		logger:   logger.With("component", "enrichment_queue"),
		notify:   make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start launches the admission loop and performs an initial evaluation, so
// pending items restored from a persisted snapshot begin processing.
func (c *Controller) Start() {
	c.loopWG.Add(1)
	go c.run()
	c.OnStateChange()
}

// Stop shuts down the admission loop and waits for in-flight enrichment
// tasks to finish. Pending items stay queued (they persist with the store
// and resume on next start); in-flight calls are not cancelled.
func (c *Controller) Stop() {
	c.cancel()
	c.loopWG.Wait()
	c.taskWG.Wait()
}

// Enqueue appends word strings to the pending queue. Duplicates are legal
// and processed independently.
func (c *Controller) Enqueue(words []string) {
	c.store.EnqueuePending(words)
	c.OnStateChange()
}

// OnStateChange requests a re-evaluation of the admission loop. Safe to call
// from any goroutine and at any frequency; signals coalesce.
func (c *Controller) OnStateChange() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Drain blocks until both the pending queue and the active set are empty,
// or the context is done. Intended for tests and graceful shutdown.
func (c *Controller) Drain(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		pending, active := c.store.QueueCounts()
		if pending == 0 && active == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// run is the admission loop goroutine. Only this goroutine admits, which is
// what holds the active set at or below the concurrency limit.
func (c *Controller) run() {
	defer c.loopWG.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.notify:
			c.admit()
		}
	}
}

// admit moves pending items into the active set while capacity remains, and
// spawns one enrichment task per admission. Lowering the limit never
// pre-empts items already in flight; it only throttles future admissions.
func (c *Controller) admit() {
	for {
		limit := c.store.Settings().ConcurrencyLimit
		if limit < 1 {
			limit = 1
		}

		_, active := c.store.QueueCounts()
		if active >= limit {
			return
		}

		word, ok := c.store.AdmitNext()
		if !ok {
			return
		}

		c.logger.Debug("word admitted for enrichment",
			"word", word,
			"active", active+1,
			"limit", limit)

		c.taskWG.Add(1)
		go c.process(word)
	}
}

// process runs one enrichment task. The slot is released on every path,
// success or failure, and release re-triggers admission so the freed slot is
// reused immediately.
func (c *Controller) process(word string) {
	defer c.taskWG.Done()
	defer func() {
		c.store.RemoveActive(word)
		c.OnStateChange()
	}()

	data, err := c.enricher.GenerateWordData(c.ctx, word)
	if err != nil {
		// At-most-once: the word is dropped from the pipeline. One item's
		// failure must never block the rest of the queue.
		c.logger.Error("enrichment failed, dropping word",
			"word", word,
			"error", err)
		return
	}

	built, err := buildWord(data)
	if err != nil {
		c.logger.Error("enrichment returned unusable data, dropping word",
			"word", word,
			"error", err)
		return
	}

	if err := c.store.AddWord(built); err != nil {
		c.logger.Error("failed to store enriched word",
			"word", word,
			"error", err)
		return
	}

	c.logger.Info("word enriched",
		"word", word,
		"word_id", built.ID,
		"questions", len(built.Questions))
}

// buildWord turns an enrichment result into a complete domain word: fresh
// IDs throughout, enabled, no category assignment. Questions that fail
// validation (e.g. a cloze without the blank marker) are skipped; a result
// with no usable question is rejected.
func buildWord(data *WordData) (*domain.Word, error) {
	if data == nil {
		return nil, ErrInvalidResponse
	}

	questions := make([]domain.Question, 0, len(data.Questions))
	for _, qd := range data.Questions {
		q, err := domain.NewQuestion(qd.Sentence, qd.Translation, qd.Cloze)
		if err != nil {
			continue
		}
		questions = append(questions, *q)
	}

	if len(questions) == 0 {
		return nil, ErrInvalidResponse
	}

	return domain.NewWord(data.Original, data.WordTranslation, questions)
}
