package hub

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"dockboard/infrastructure/conflict"
)

func countingScan(calls *atomic.Int32) ScanFunc {
	return func(_ context.Context, slot string) (Event, error) {
		n := calls.Add(1)
		return Event{
			TimeSlot: slot,
			Flags:    map[string]conflict.Flags{"1": {Conflicted: n%2 == 1}},
			Summary:  conflict.Summary{Conflicted: int(n % 2)},
		}, nil
	}
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatalf("no event received")
		return Event{}
	}
}

func TestHub_ImmediateNotifyPublishes(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	h := New(countingScan(&calls), 20*time.Millisecond)
	defer h.Close()

	id, ch := h.Subscribe("17:00")
	defer h.Unsubscribe(id)

	h.Notify("17:00", true)
	ev := receive(t, ch)
	assert.Equal(t, "17:00", ev.TimeSlot)
	assert.True(t, ev.Flags["1"].Conflicted)
	assert.False(t, ev.At.IsZero())
	assert.Equal(t, int32(1), calls.Load())
}

func TestHub_DebouncedNotifyCoalesces(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	h := New(countingScan(&calls), 30*time.Millisecond)
	defer h.Close()

	_, ch := h.Subscribe("17:00")
	for i := 0; i < 5; i++ {
		h.Notify("17:00", false)
	}
	receive(t, ch)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHub_SkipsSlotsWithoutSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	h := New(countingScan(&calls), 10*time.Millisecond)
	defer h.Close()

	_, ch := h.Subscribe("18:00")
	h.Notify("17:00", true)
	assert.Equal(t, int32(0), calls.Load())

	h.Notify("18:00", true)
	assert.Equal(t, "18:00", receive(t, ch).TimeSlot)
}

func TestHub_AllSlotsSubscriberSeesEverySlot(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	h := New(countingScan(&calls), 10*time.Millisecond)
	defer h.Close()

	_, ch := h.Subscribe(AllSlots)
	assert.Equal(t, 1, h.Subscribers("09:00"))

	h.Notify("09:00", true)
	assert.Equal(t, "09:00", receive(t, ch).TimeSlot)
	h.Notify("10:00", true)
	assert.Equal(t, "10:00", receive(t, ch).TimeSlot)
}

func TestHub_SlowReaderGetsNewestEvent(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	h := New(countingScan(&calls), 10*time.Millisecond)
	defer h.Close()

	_, ch := h.Subscribe("17:00")
	h.Notify("17:00", true)
	h.Notify("17:00", true)

	ev := receive(t, ch)
	assert.False(t, ev.Flags["1"].Conflicted, "expected the second scan result")
	select {
	case <-ch:
		t.Fatalf("stale event left in channel")
	default:
	}
}

func TestHub_ScanErrorPublishesNothing(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := New(func(context.Context, string) (Event, error) {
		return Event{}, errors.New("db down")
	}, 10*time.Millisecond)
	defer h.Close()

	_, ch := h.Subscribe("17:00")
	h.Notify("17:00", true)
	select {
	case <-ch:
		t.Fatalf("unexpected event")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestHub_CloseClosesSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	h := New(countingScan(&calls), time.Second)

	id, ch := h.Subscribe("17:00")
	h.Notify("17:00", false)
	h.Close()

	_, ok := <-ch
	assert.False(t, ok)
	h.Unsubscribe(id)

	_, late := h.Subscribe("17:00")
	_, ok = <-late
	assert.False(t, ok)
	assert.Equal(t, 0, h.Subscribers("17:00"))
}
