package board

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"dockboard/infrastructure/hub"
	"dockboard/infrastructure/sqlite"
)

// HeartbeatInterval keeps idle streams open through proxies.
var HeartbeatInterval = 25 * time.Second

// StreamHandler pushes fresh flags as server-sent events. The first event is
// the current state; later events follow hub rescans.
func StreamHandler(db *sqlite.DB, opts Options, h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		slot := strings.TrimSpace(r.URL.Query().Get("time_slot"))
		id, events := h.Subscribe(slot)
		defer h.Unsubscribe(id)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		b, err := LoadBoard(r.Context(), db, slot, opts)
		if err != nil {
			slog.Error("board stream: initial load failed", slog.Any("err", err))
			return
		}
		for _, sf := range Flags(b).Slots {
			ev := hub.Event{TimeSlot: sf.TimeSlot, Flags: sf.Flags, Summary: sf.Summary, At: time.Now()}
			if err := writeEvent(w, ev); err != nil {
				return
			}
		}
		flusher.Flush()

		heartbeat := time.NewTicker(HeartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := writeEvent(w, ev); err != nil {
					return
				}
				flusher.Flush()
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, ev hub.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: flags\ndata: %s\n\n", payload)
	return err
}
