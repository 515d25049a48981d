package board

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	sessioncontext "dockboard/frontend/shared/context"
	"dockboard/frontend/shared/html"
	"dockboard/frontend/shared/nav"
	"dockboard/frontend/shared/respond"
	"dockboard/infrastructure/conflict"
	"dockboard/infrastructure/rbac"
	"dockboard/infrastructure/sqlite"
)

// BoardPageQueryHandler renders the loading board.
func BoardPageQueryHandler(db *sqlite.DB, opts Options, debounce time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		filter := strings.TrimSpace(r.URL.Query().Get("time_slot"))
		b, err := LoadBoard(r.Context(), db, filter, opts)
		if err != nil {
			slog.Error("board: failed to load", slog.String("time_slot", filter), slog.Any("err", err))
			http.Error(w, "failed to load board", http.StatusInternalServerError)
			return
		}

		data := PageData{
			Nav:        nav.BuildTopNavData(session),
			Board:      b,
			Filter:     filter,
			CanEdit:    rbac.CanEditLoads(session.User.Role),
			IsAdmin:    session.User.Role == rbac.RoleAdmin,
			Statuses:   []string{string(conflict.StatusPlanned), string(conflict.StatusPickingActive), string(conflict.StatusLoadout)},
			LaneNames:  opts.lanes(),
			DebounceMS: debounce.Milliseconds(),
		}

		respond.NoCache(w)
		w.Header().Set("ETag", boardETag(b))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		meta := html.PageMeta{Status: r.URL.Query().Get("status"), Error: r.URL.Query().Get("error")}
		if err := BoardPage(data, meta).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render board", http.StatusInternalServerError)
			return
		}
	}
}

// FlagsQueryHandler returns the current scan result as JSON.
func FlagsQueryHandler(db *sqlite.DB, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := strings.TrimSpace(r.URL.Query().Get("time_slot"))
		b, err := LoadBoard(r.Context(), db, filter, opts)
		if err != nil {
			slog.Error("board flags: failed to load", slog.String("time_slot", filter), slog.Any("err", err))
			respond.Fail(w, http.StatusInternalServerError, "failed to load board")
			return
		}
		respond.NoCache(w)
		respond.JSON(w, http.StatusOK, Flags(b))
	}
}

func boardETag(b Board) string {
	raw, err := json.Marshal(b)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}
