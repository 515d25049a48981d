package loads

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dockboard/frontend/board"
	"dockboard/infrastructure/sqlite"
)

// FindLane returns the lane card for (timeSlot, lane) from a scanned board.
func FindLane(b board.Board, timeSlot, lane string) (board.Lane, bool) {
	for _, slot := range b.Slots {
		if slot.TimeSlot != timeSlot {
			continue
		}
		for _, l := range slot.Lanes {
			if l.Name == lane {
				return l, true
			}
		}
	}
	return board.Lane{}, false
}

// LoadingSheetQueryHandler prints one lane card as a PDF with the trailer
// barcode.
func LoadingSheetQueryHandler(db *sqlite.DB, opts board.Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeSlot := strings.TrimSpace(r.URL.Query().Get("time_slot"))
		lane := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("lane")))
		if timeSlot == "" || lane == "" {
			http.Error(w, ErrSheetLaneRequired.Error(), http.StatusBadRequest)
			return
		}

		b, err := board.LoadBoard(r.Context(), db, timeSlot, opts)
		if err != nil {
			slog.Error("loads: load board for sheet failed", slog.Any("err", err))
			http.Error(w, "failed to load board", http.StatusInternalServerError)
			return
		}
		l, ok := FindLane(b, timeSlot, lane)
		if !ok {
			http.Error(w, "lane not found", http.StatusNotFound)
			return
		}

		pdfBytes, err := renderLoadingSheetPDF(SheetData{TimeSlot: timeSlot, Lane: l, PrintedAt: time.Now()})
		if err != nil {
			slog.Error("loads: render sheet failed", slog.String("lane", lane), slog.Any("err", err))
			http.Error(w, "failed to build loading sheet", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=sheet-%s-%s.pdf", strings.ReplaceAll(timeSlot, ":", ""), lane))
		_, _ = w.Write(pdfBytes)
	}
}
