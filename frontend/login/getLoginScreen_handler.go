package login

import (
	"log/slog"
	"net/http"
	"strings"

	"dockboard/infrastructure/cache"
	sessioncookie "dockboard/infrastructure/session"
)

// GetLoginScreenHandler renders the login form. A browser that still holds a
// live cached session goes straight to the board.
func GetLoginScreenHandler(sessionCache *cache.UserSessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(sessioncookie.CookieName); err == nil && sessionCache != nil {
			if s, ok := sessionCache.FindSessionBySessionToken(c.Value); ok && !s.Expired() {
				http.Redirect(w, r, "/tasker/loads", http.StatusSeeOther)
				return
			}
		}

		q := r.URL.Query()
		data := ScreenData{
			Email:  strings.TrimSpace(q.Get("email")),
			Status: q.Get("status"),
			Error:  q.Get("error"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := GetLoginScreen(data).Render(r.Context(), w); err != nil {
			slog.Error("render login screen failed", slog.Any("err", err))
			http.Error(w, "failed to render login screen", http.StatusInternalServerError)
		}
	}
}
