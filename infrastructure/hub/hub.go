// Package hub pushes fresh board flags to live subscribers. Edits notify the
// hub per time slot; the rescan runs immediately or after the debounce quiet
// period, and every subscriber of that slot receives the new result.
package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"dockboard/infrastructure/conflict"
)

// AllSlots subscribes to every time slot.
const AllSlots = ""

// ScanTimeout bounds a single rescan.
var ScanTimeout = 5 * time.Second

// Event is the scan result for one time slot. Flags are keyed by load ID.
type Event struct {
	TimeSlot string                    `json:"time_slot"`
	Flags    map[string]conflict.Flags `json:"flags"`
	Summary  conflict.Summary          `json:"summary"`
	At       time.Time                 `json:"at"`
}

// ScanFunc loads a slot and runs the scanner over it.
type ScanFunc func(ctx context.Context, timeSlot string) (Event, error)

type subscriber struct {
	slot string
	ch   chan Event
}

// Hub fans out rescans to subscribers.
type Hub struct {
	scan     ScanFunc
	debounce *conflict.Debouncer

	mu     sync.Mutex
	subs   map[uuid.UUID]subscriber
	closed bool
}

// New returns a Hub running scan for notified slots. quiet is the debounce
// period used for non-immediate notifications.
func New(scan ScanFunc, quiet time.Duration) *Hub {
	h := &Hub{
		scan: scan,
		subs: make(map[uuid.UUID]subscriber),
	}
	h.debounce = conflict.NewDebouncer(quiet, h.rescan)
	return h
}

// Subscribe registers a listener for slot (AllSlots for every slot). The
// channel keeps only the newest undelivered event and is closed by
// Unsubscribe or Close.
func (h *Hub) Subscribe(slot string) (uuid.UUID, <-chan Event) {
	id := uuid.New()
	ch := make(chan Event, 1)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return id, ch
	}
	h.subs[id] = subscriber{slot: slot, ch: ch}
	slog.Debug("hub subscribe", slog.String("id", id.String()), slog.String("time_slot", slot))
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(sub.ch)
	}
}

// Subscribers counts listeners that would receive events for slot.
func (h *Hub) Subscribers(slot string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, sub := range h.subs {
		if sub.slot == AllSlots || sub.slot == slot {
			n++
		}
	}
	return n
}

// Notify schedules a rescan of slot. Immediate rescans replace any pending
// debounced run and execute on the caller's goroutine, or as a repeat of the
// scan already running for the slot.
func (h *Hub) Notify(slot string, immediate bool) {
	if h.Subscribers(slot) == 0 {
		return
	}
	if immediate {
		h.debounce.Now(slot)
		return
	}
	h.debounce.Trigger(slot)
}

// Close stops pending rescans and closes every subscriber channel.
func (h *Hub) Close() {
	h.debounce.Stop()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}

func (h *Hub) rescan(slot string) {
	ctx, cancel := context.WithTimeout(context.Background(), ScanTimeout)
	defer cancel()

	ev, err := h.scan(ctx, slot)
	if err != nil {
		slog.Error("hub rescan failed", slog.String("time_slot", slot), slog.Any("err", err))
		return
	}
	if ev.TimeSlot == "" {
		ev.TimeSlot = slot
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	h.publish(ev)
}

func (h *Hub) publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		if sub.slot != AllSlots && sub.slot != ev.TimeSlot {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// Slow reader: drop the stale event, keep the newest.
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- ev
		}
	}
}
