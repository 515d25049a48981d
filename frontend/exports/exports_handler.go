package exports

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"dockboard/frontend/board"
	sessioncontext "dockboard/frontend/shared/context"
	"dockboard/infrastructure/sqlite"
)

// LoadsExportCSVHandler downloads the board, optionally one time slot, as CSV
// with the scanner flag of each row.
func LoadsExportCSVHandler(db *sqlite.DB, opts board.Options) http.HandlerFunc {
	return exportHandler(db, opts, ExportTypeLoadsCSV, "text/csv", "loads.csv", writeLoadsCSV)
}

// LoadsExportXLSXHandler is the spreadsheet variant of LoadsExportCSVHandler.
func LoadsExportXLSXHandler(db *sqlite.DB, opts board.Options) http.HandlerFunc {
	return exportHandler(db, opts, ExportTypeLoadsXLSX,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "loads.xlsx", writeLoadsXLSX)
}

func exportHandler(db *sqlite.DB, opts board.Options, exportType, contentType, filename string, write func(io.Writer, board.Board) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeSlot := strings.TrimSpace(r.URL.Query().Get("time_slot"))
		b, err := board.LoadBoard(r.Context(), db, timeSlot, opts)
		if err != nil {
			slog.Error("exports: load board failed", slog.Any("err", err))
			http.Error(w, "failed to load board", http.StatusInternalServerError)
			return
		}

		var buf bytes.Buffer
		if err := write(&buf, b); err != nil {
			slog.Error("exports: write failed", slog.String("type", exportType), slog.Any("err", err))
			http.Error(w, "failed to export loads", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		_, _ = w.Write(buf.Bytes())

		if err := recordExportRun(r.Context(), db, sessioncontext.UserIDFromContext(r.Context()), exportType); err != nil {
			slog.Error("record export run failed", slog.String("type", exportType), slog.Any("err", err))
		}
	}
}
