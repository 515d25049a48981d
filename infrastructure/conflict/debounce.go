package conflict

import (
	"sync"
	"time"
)

// Debouncer coalesces rescan triggers per key. Each Trigger cancels the
// pending run for its key and schedules a new one after the quiet period,
// so a burst of edits produces a single run. Runs for one key never
// overlap: a run requested while another is in flight is folded into one
// repeat after it.
type Debouncer struct {
	quiet time.Duration
	fn    func(key string)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	gens    map[string]uint64
	active  map[string]bool
	dirty   map[string]bool
	stopped bool
	running sync.WaitGroup
}

// NewDebouncer returns a Debouncer calling fn after quiet has elapsed since
// the last Trigger for a key.
func NewDebouncer(quiet time.Duration, fn func(key string)) *Debouncer {
	return &Debouncer{
		quiet:  quiet,
		fn:     fn,
		timers: make(map[string]*time.Timer),
		gens:   make(map[string]uint64),
		active: make(map[string]bool),
		dirty:  make(map[string]bool),
	}
}

// Trigger schedules fn(key) after the quiet period, replacing any pending run.
func (d *Debouncer) Trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.gens[key]++
	gen := d.gens[key]
	d.timers[key] = time.AfterFunc(d.quiet, func() {
		d.fire(key, gen)
	})
}

// Now cancels any pending run for key and calls fn(key) on the caller's
// goroutine. When a run for key is already in flight, Now returns at once
// and that run repeats when it finishes.
func (d *Debouncer) Now(key string) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.cancelLocked(key)
	d.runLocked(key)
}

// Cancel drops the pending run for key, if any.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked(key)
}

// Pending reports whether a run is scheduled for key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.timers[key]
	return ok
}

// Stop cancels every pending run and waits for in-flight runs. No run starts
// after Stop returns.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key := range d.timers {
		d.cancelLocked(key)
	}
	d.mu.Unlock()
	d.running.Wait()
}

func (d *Debouncer) cancelLocked(key string) {
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
	// A timer that already fired sees the new generation and bails out.
	d.gens[key]++
}

func (d *Debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	if d.stopped || d.gens[key] != gen {
		d.mu.Unlock()
		return
	}
	delete(d.timers, key)
	d.runLocked(key)
}

// runLocked is entered with d.mu held and returns with it released.
func (d *Debouncer) runLocked(key string) {
	if d.active[key] {
		d.dirty[key] = true
		d.mu.Unlock()
		return
	}
	d.active[key] = true
	d.running.Add(1)
	defer d.running.Done()

	for {
		d.mu.Unlock()
		d.fn(key)
		d.mu.Lock()
		if !d.dirty[key] || d.stopped {
			break
		}
		delete(d.dirty, key)
	}
	delete(d.active, key)
	delete(d.dirty, key)
	d.mu.Unlock()
}
