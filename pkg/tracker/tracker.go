// Package tracker observes open documents and keeps the backup store in
// sync with their dirty state: debounced writes while a document is dirty,
// deletes once it is saved, reverted, or closed.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/stanza-editor/stash/pkg/core"
)

// docState is the per-document position in the backup lifecycle.
type docState int

const (
	stateClean docState = iota
	stateDirty
	statePendingWrite
	stateBackedUp
)

func (s docState) String() string {
	switch s {
	case stateClean:
		return "clean"
	case stateDirty:
		return "dirty"
	case statePendingWrite:
		return "pending-write"
	case stateBackedUp:
		return "backed-up"
	default:
		return "unknown"
	}
}

// trackedDoc is the tracker's bookkeeping for one open document.
type trackedDoc struct {
	doc   core.Document
	key   core.Key
	state docState

	// timer is the single cancellable debounce handle; nil when no write
	// is scheduled.
	timer *time.Timer
	// gen invalidates stale timer fires: every schedule or cancel bumps it
	// and a fire whose generation no longer matches is discarded.
	gen uint64

	needsRetry    bool
	pendingDelete bool

	// opMu serializes store operations for this document, so a delete
	// issued after a clean transition can never be overtaken by an
	// in-flight write for the same key.
	opMu sync.Mutex
}

// Tracker watches the live set of open documents. One instance per
// workspace window, explicitly started and stopped with it.
type Tracker struct {
	*worker.BaseWorker
	store    core.Store
	debounce time.Duration
	sweep    time.Duration
	exclude  []string
	logger   *slog.Logger

	mu   sync.Mutex
	docs map[core.Key]*trackedDoc
	// orphans holds documents whose final delete failed after they left
	// docs (untrack or close). The sweep keeps retrying them, so a
	// deliberately closed document never resurrects on the next launch.
	orphans map[core.Key]*trackedDoc
	runCtx  context.Context
	cancel  context.CancelFunc
}

// New creates a tracker over the given store. Call Start before Track.
func New(store core.Store, opts ...Option) *Tracker {
	t := &Tracker{
		BaseWorker: worker.NewBaseWorker("backup-tracker"),
		store:      store,
		debounce:   time.Second,
		sweep:      5 * time.Second,
		docs:       make(map[core.Key]*trackedDoc),
		orphans:    make(map[core.Key]*trackedDoc),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins the tracker's background work (the retry sweep). Tied to
// window creation; Stop is tied to teardown.
func (t *Tracker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := t.workerState().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("tracker already started (status: %s)", status)
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.mu.Lock()
	t.runCtx = runCtx
	t.cancel = cancel
	t.mu.Unlock()

	t.SetStatus(worker.StatusRunning)
	return t.StartFunc(runCtx, t.run)
}

// Stop halts the sweep and all document listeners.
func (t *Tracker) Stop(ctx context.Context) error {
	if t.cancel != nil {
		t.StopRequested = true
		t.cancel()
	}
	return t.BaseWorker.Stop(ctx)
}

func (t *Tracker) workerState() worker.State {
	return t.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

// excluded reports whether an identity matches any exclude glob.
func (t *Tracker) excluded(id core.Identity) bool {
	p := filepath.ToSlash(id.Path)
	for _, pattern := range t.exclude {
		if ok, err := doublestar.Match(pattern, p); err == nil && ok {
			return true
		}
	}
	return false
}

// Track begins observing a newly opened document. No-op if the document is
// already tracked or matches an exclude pattern. The tracker must be
// started.
func (t *Tracker) Track(doc core.Document) {
	id := doc.Identity()
	if t.excluded(id) {
		if t.logger != nil {
			t.logger.Debug("document excluded from backup", "identity", id.String())
		}
		return
	}

	key := core.HashKey(id)

	t.mu.Lock()
	if _, ok := t.docs[key]; ok {
		t.mu.Unlock()
		return
	}
	td := &trackedDoc{doc: doc, key: key, state: stateClean}
	t.docs[key] = td
	runCtx := t.runCtx
	t.mu.Unlock()

	if runCtx == nil {
		runCtx = context.Background()
	}

	if t.logger != nil {
		t.logger.Debug("tracking document", "identity", id.String(), "key", key)
	}

	lifecycle.Go(runCtx, func(ctx context.Context) error {
		return t.listen(ctx, td)
	}, lifecycle.WithErrorHandler(func(err error) {
		if t.logger != nil {
			t.logger.Error("document listener panic", "identity", id.String(), "error", err)
		}
	}))

	// A document handed over already dirty (e.g. restored from backup)
	// starts its debounce immediately.
	if doc.Dirty() {
		t.handleDirty(td)
	}
}

// Untrack stops observing a document. If it had (or was about to have) a
// backup entry, the entry is deleted before returning: a deliberately
// closed document no longer crash-recovers. A delete the store rejects is
// retried by the sweep until it lands.
func (t *Tracker) Untrack(doc core.Document) {
	key := core.HashKey(doc.Identity())

	t.mu.Lock()
	td, ok := t.docs[key]
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.docs, key)
	t.cancelTimerLocked(td)
	needsDelete := td.state != stateClean || td.pendingDelete
	t.mu.Unlock()

	if needsDelete {
		t.deleteEntry(td)
	}

	if t.logger != nil {
		t.logger.Debug("untracked document", "identity", doc.Identity().String())
	}
}

// listen consumes one document's event stream until it closes.
func (t *Tracker) listen(ctx context.Context, td *trackedDoc) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-td.doc.Events():
			if !ok {
				t.handleClosed(td)
				return nil
			}
			switch ev.Type {
			case core.DocDirtyChanged:
				if ev.Dirty {
					t.handleDirty(td)
				} else {
					t.handleClean(td)
				}
			case core.DocClosed:
				t.handleClosed(td)
				return nil
			}
		}
	}
}

// cancelTimerLocked deterministically cancels any scheduled write. Caller
// holds t.mu.
func (t *Tracker) cancelTimerLocked(td *trackedDoc) {
	td.gen++
	if td.timer != nil {
		td.timer.Stop()
		td.timer = nil
	}
}

// handleDirty moves the document toward a fresh write, coalescing rapid
// edits into one debounced store operation.
func (t *Tracker) handleDirty(td *trackedDoc) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.docs[td.key]; !ok {
		return // untracked in the meantime
	}

	if td.state == stateClean {
		td.state = stateDirty
	}
	t.scheduleWriteLocked(td, t.debounce)
}

// scheduleWriteLocked (re)arms the debounce timer. Caller holds t.mu.
func (t *Tracker) scheduleWriteLocked(td *trackedDoc, delay time.Duration) {
	t.cancelTimerLocked(td)
	gen := td.gen
	td.timer = time.AfterFunc(delay, func() {
		t.flush(td, gen)
	})
}

// flush performs the debounced write. It is the tracker's only write-side
// suspension point; the generation check plus opMu keep it ordered against
// cleans and closes.
func (t *Tracker) flush(td *trackedDoc, gen uint64) {
	t.mu.Lock()
	if td.gen != gen || td.state == stateClean {
		t.mu.Unlock()
		return
	}
	td.state = statePendingWrite
	ctx := t.runCtx
	t.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	td.opMu.Lock()
	defer td.opMu.Unlock()

	// Re-check after acquiring the op lock: a clean or close may have
	// invalidated this write while we waited.
	t.mu.Lock()
	if td.gen != gen {
		t.mu.Unlock()
		return
	}
	doc := td.doc
	t.mu.Unlock()

	snapshot := doc.Snapshot()
	_, err := t.store.Put(ctx, doc.Identity(), []byte(snapshot), doc.Hint())

	t.mu.Lock()
	defer t.mu.Unlock()
	if td.gen != gen {
		return
	}
	if err != nil {
		// The document stays logically dirty; the intent to write is kept
		// and retried by the sweep or the next edit.
		td.state = stateDirty
		td.needsRetry = true
		if t.logger != nil {
			t.logger.Warn("backup write failed; will retry",
				"identity", doc.Identity().String(), "error", err)
		}
		return
	}
	td.state = stateBackedUp
	td.needsRetry = false
}

// handleClean deletes the document's entry after a save or full revert. The
// pending timer is cancelled first, so the delete can never be overtaken by
// a stale queued write.
func (t *Tracker) handleClean(td *trackedDoc) {
	t.mu.Lock()
	if _, ok := t.docs[td.key]; !ok {
		t.mu.Unlock()
		return
	}
	t.cancelTimerLocked(td)
	prev := td.state
	td.state = stateClean
	td.needsRetry = false
	t.mu.Unlock()

	if prev != stateClean {
		t.deleteEntry(td)
	}
}

// handleClosed tears down tracking when the document closes underneath us.
func (t *Tracker) handleClosed(td *trackedDoc) {
	t.Untrack(td.doc)
}

// deleteEntry removes the document's backup entry, serialized against any
// in-flight write for the same key.
func (t *Tracker) deleteEntry(td *trackedDoc) {
	ctx := t.runCtx
	if ctx == nil {
		ctx = context.Background()
	}

	td.opMu.Lock()
	err := t.store.Delete(ctx, td.key)
	td.opMu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		td.pendingDelete = true
		if _, tracked := t.docs[td.key]; !tracked {
			t.orphans[td.key] = td
		}
		if t.logger != nil {
			t.logger.Warn("backup delete failed; will retry", "key", td.key, "error", err)
		}
		return
	}
	td.pendingDelete = false
	delete(t.orphans, td.key)
}

// run is the bounded periodic sweep that retries failed store operations.
func (t *Tracker) run(ctx context.Context) error {
	ticker := time.NewTicker(t.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.retryPending()
		}
	}
}

// retryPending re-issues writes and deletes that failed earlier.
func (t *Tracker) retryPending() {
	t.mu.Lock()
	var writes, deletes []*trackedDoc
	for _, td := range t.docs {
		if td.pendingDelete {
			deletes = append(deletes, td)
		} else if td.needsRetry && td.doc.Dirty() {
			writes = append(writes, td)
		}
	}
	for _, td := range t.orphans {
		deletes = append(deletes, td)
	}
	for _, td := range writes {
		// Immediate flush; the debounce window already elapsed once.
		t.scheduleWriteLocked(td, 0)
	}
	t.mu.Unlock()

	for _, td := range deletes {
		t.deleteEntry(td)
	}
}
