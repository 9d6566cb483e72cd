package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lexiflow/lexiflow/internal/platform/sqlite"
	"github.com/lexiflow/lexiflow/internal/store"
)

const saveTimeout = 5 * time.Second

// snapshotPersister writes the store state to disk after mutations, batching
// rapid changes into a single write per debounce window. Stop flushes any
// outstanding change before returning.
type snapshotPersister struct {
	store     *store.Store
	snapshots *sqlite.SnapshotStore
	debounce  time.Duration
	logger    *slog.Logger

	dirty  chan struct{}
	stopCh chan struct{}
	done   chan struct{}

	stopOnce sync.Once
}

func newSnapshotPersister(
	vocabStore *store.Store,
	snapshots *sqlite.SnapshotStore,
	debounce time.Duration,
	log *slog.Logger,
) *snapshotPersister {
	return &snapshotPersister{
		store:     vocabStore,
		snapshots: snapshots,
		debounce:  debounce,
		logger:    log.With("component", "snapshot_persister"),
		dirty:     make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// MarkDirty records that the store changed. Safe to call from any goroutine;
// signals coalesce.
func (p *snapshotPersister) MarkDirty() {
	select {
	case p.dirty <- struct{}{}:
	default:
	}
}

func (p *snapshotPersister) Start() {
	go p.run()
}

// Stop flushes any pending change and waits for the loop to exit.
func (p *snapshotPersister) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
	<-p.done
}

func (p *snapshotPersister) run() {
	defer close(p.done)

	var timer *time.Timer
	var timerC <-chan time.Time
	pending := false

	for {
		select {
		case <-p.dirty:
			pending = true
			if timer == nil {
				timer = time.NewTimer(p.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(p.debounce)
			}
		case <-timerC:
			pending = false
			p.save()
		case <-p.stopCh:
			if timer != nil {
				timer.Stop()
			}
			// A dirty signal may have raced the stop.
			select {
			case <-p.dirty:
				pending = true
			default:
			}
			if pending {
				p.save()
			}
			return
		}
	}
}

func (p *snapshotPersister) save() {
	snap := p.store.ExportSnapshot(store.ExportOptions{})

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := p.snapshots.Save(ctx, snap); err != nil {
		p.logger.Error("failed to persist snapshot", "error", err)
		return
	}
	p.logger.Debug("snapshot persisted", "words", len(snap.Words))
}
