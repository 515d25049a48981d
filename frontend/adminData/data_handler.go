package admindata

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"dockboard/frontend/loads"
	sessioncontext "dockboard/frontend/shared/context"
	"dockboard/frontend/shared/html"
	"dockboard/frontend/shared/nav"
	"dockboard/infrastructure/audit"
	"dockboard/infrastructure/sqlite"
)

func dataURL(key, msg string) string {
	return "/tasker/admin/data?" + url.Values{key: {msg}}.Encode()
}

func DataPageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		data, err := LoadDataPageData(r.Context(), db)
		if err != nil {
			slog.Error("admin data: failed to load page", slog.Any("err", err))
			http.Error(w, "failed to load data page", http.StatusInternalServerError)
			return
		}
		data.Nav = nav.BuildTopNavData(session)

		meta := html.PageMeta{Status: r.URL.Query().Get("status"), Error: r.URL.Query().Get("error")}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := DataPage(data, meta).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render data page", http.StatusInternalServerError)
			return
		}
	}
}

// ClearLoadsCommandHandler empties the board and pushes every affected slot.
func ClearLoadsCommandHandler(db *sqlite.DB, auditSvc *audit.Service, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		n, slots, err := loads.ClearAll(r.Context(), db, auditSvc, session.UserID)
		if err != nil {
			slog.Error("admin data: clear failed", slog.Any("err", err))
			http.Redirect(w, r, dataURL("error", "could not clear loads"), http.StatusSeeOther)
			return
		}
		for _, slot := range slots {
			notifier.Notify(slot, true)
		}
		slog.Info("admin data: loads cleared", slog.Int64("user_id", session.UserID), slog.Int("rows", n))
		http.Redirect(w, r, dataURL("status", fmt.Sprintf("deleted %d loads", n)), http.StatusSeeOther)
	}
}

// SeedDemoCommandHandler inserts the demo board into an empty database.
func SeedDemoCommandHandler(db *sqlite.DB, auditSvc *audit.Service, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		n, slots, err := loads.InsertDemo(r.Context(), db, auditSvc, session.UserID)
		if err != nil {
			if errors.Is(err, loads.ErrBoardNotEmpty) {
				http.Redirect(w, r, dataURL("error", "clear the board before loading demo data"), http.StatusSeeOther)
				return
			}
			slog.Error("admin data: demo seed failed", slog.Any("err", err))
			http.Redirect(w, r, dataURL("error", "could not load demo data"), http.StatusSeeOther)
			return
		}
		for _, slot := range slots {
			notifier.Notify(slot, true)
		}
		http.Redirect(w, r, dataURL("status", fmt.Sprintf("inserted %d demo loads", n)), http.StatusSeeOther)
	}
}
