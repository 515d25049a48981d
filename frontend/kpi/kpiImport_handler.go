package kpi

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	sessioncontext "dockboard/frontend/shared/context"
	"dockboard/frontend/shared/html"
	"dockboard/frontend/shared/nav"
	"dockboard/infrastructure/audit"
	"dockboard/infrastructure/sqlite"
)

const maxUpload = 10 << 20

func KPIPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		meta := html.PageMeta{Status: r.URL.Query().Get("status"), Error: r.URL.Query().Get("error")}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := KPIPage(PageData{Nav: nav.BuildTopNavData(session)}, meta).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render kpi page", http.StatusInternalServerError)
			return
		}
	}
}

// KPIImportCommandHandler aggregates the uploaded sheet and renders the
// report directly; nothing but the run record is stored.
func KPIImportCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			http.Redirect(w, r, "/tasker/kpi?error="+url.QueryEscape("invalid upload"), http.StatusSeeOther)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Redirect(w, r, "/tasker/kpi?error="+url.QueryEscape(ErrNoFile.Error()), http.StatusSeeOther)
			return
		}
		defer file.Close()

		report, err := Import(r.Context(), db, auditSvc, session.UserID, header.Filename, file)
		if err != nil {
			if errors.Is(err, ErrMissingColumns) || errors.Is(err, ErrEmptySheet) {
				http.Redirect(w, r, "/tasker/kpi?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
				return
			}
			slog.Error("kpi: import failed", slog.String("file", header.Filename), slog.Any("err", err))
			http.Redirect(w, r, "/tasker/kpi?error="+url.QueryEscape("could not read the file"), http.StatusSeeOther)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := KPIPage(PageData{Nav: nav.BuildTopNavData(session), Report: &report}, html.PageMeta{}).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render kpi page", http.StatusInternalServerError)
			return
		}
	}
}
