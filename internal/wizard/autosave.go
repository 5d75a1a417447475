package wizard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"deckforge.app/wizard/internal/model"
)

// Saver is the slice of the persistence gateway the autosaver needs. Save
// must be idempotent: writing the same snapshot twice has no extra effect.
type Saver interface {
	Save(ctx context.Context, s *model.WizardSession) error
}

const (
	// Trailing debounce measured from the last mutation. Anything in the
	// 500ms-2s band works; rapid typing keeps resetting the window.
	DefaultDebounce   = time.Second
	DefaultRetryDelay = 2 * time.Second
)

// Autosaver coalesces session mutations into debounced background saves.
//
// One pending timer plus a dirty flag: every mutation resets the trailing
// window, and a mutation that lands while a save is in flight is picked up
// by an immediate follow-up save once the in-flight one settles, so the last
// write is never silently dropped. A failed save is retried once from a
// fresh snapshot; after that the session is flagged unsaved until the next
// mutation or flush succeeds. In-memory state is never lost to a
// persistence failure.
type Autosaver struct {
	saver      Saver
	snapshot   func() *model.WizardSession
	clock      Clock
	debounce   time.Duration
	retryDelay time.Duration

	mu       sync.Mutex
	timer    Timer
	dirty    bool
	inflight bool
	unsaved  bool
}

func NewAutosaver(saver Saver, snapshot func() *model.WizardSession, clock Clock, debounce time.Duration) *Autosaver {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Autosaver{
		saver:      saver,
		snapshot:   snapshot,
		clock:      clock,
		debounce:   debounce,
		retryDelay: DefaultRetryDelay,
	}
}

// MarkDirty records a mutation and (re)starts the trailing debounce window.
func (a *Autosaver) MarkDirty() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.dirty = true
	if a.timer == nil {
		a.timer = a.clock.AfterFunc(a.debounce, a.fire)
		return
	}
	a.timer.Reset(a.debounce)
}

// Unsaved reports whether the latest state failed to persist after retrying.
func (a *Autosaver) Unsaved() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.unsaved
}

// Flush saves the current snapshot immediately, bypassing the debounce.
// Used before deck generation and on shutdown.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.dirty = false
	a.mu.Unlock()

	// Snapshot outside the lock: it takes the machine's mutex.
	snap := a.snapshot()

	if err := a.saver.Save(ctx, snap); err != nil {
		a.mu.Lock()
		a.unsaved = true
		a.mu.Unlock()
		return err
	}

	a.mu.Lock()
	a.unsaved = false
	a.mu.Unlock()
	return nil
}

func (a *Autosaver) fire() {
	a.mu.Lock()
	if a.timer != nil {
		// When invoked from settle rather than the timer itself, a
		// pending debounce timer may still be armed for the same state.
		a.timer.Stop()
		a.timer = nil
	}
	if a.inflight {
		// The in-flight save will re-save from current state on settle.
		a.mu.Unlock()
		return
	}
	a.inflight = true
	a.dirty = false
	a.mu.Unlock()

	snap := a.snapshot()
	if err := a.saver.Save(context.Background(), snap); err != nil {
		slog.Warn("session autosave failed, retrying", "session_id", snap.ID, "error", err)
		a.clock.AfterFunc(a.retryDelay, a.retryFire)
		return
	}
	a.settle(true)
}

func (a *Autosaver) retryFire() {
	// Re-snapshot so the retry carries any mutations made since the failure.
	a.mu.Lock()
	a.dirty = false
	a.mu.Unlock()

	snap := a.snapshot()
	if err := a.saver.Save(context.Background(), snap); err != nil {
		slog.Error("session autosave failed after retry", "session_id", snap.ID, "error", err)
		a.settle(false)
		return
	}
	a.settle(true)
}

func (a *Autosaver) settle(ok bool) {
	a.mu.Lock()
	a.inflight = false
	a.unsaved = !ok
	redo := ok && a.dirty
	a.mu.Unlock()

	if redo {
		// A newer mutation arrived mid-save: persist it right away.
		a.fire()
	}
}
