package fs

import (
	"sync"
	"time"

	"github.com/stanza-editor/stash/pkg/core"
)

// debouncer coalesces bursts of events per entry key: only the last event
// within the delay window is emitted.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	wg      sync.WaitGroup
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// add schedules the event for emission after the quiet period. A newer event
// for the same key replaces a pending one.
func (d *debouncer) add(e core.Event, emit func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	k := string(e.Key)
	if t, ok := d.timers[k]; ok {
		if t.Stop() {
			d.wg.Done()
		}
	}

	d.wg.Add(1)
	d.timers[k] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		delete(d.timers, k)
		stopped := d.stopped
		d.mu.Unlock()

		if !stopped {
			emit(e)
		}
	})
}

// stopAndWait cancels pending timers and waits (bounded) for in-flight
// emissions, so callers can safely close the downstream channel.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for k, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, k)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}
}
