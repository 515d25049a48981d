package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"dockboard/frontend/shared/html"
	"dockboard/frontend/shared/respond"
	sessioncookie "dockboard/infrastructure/session"
)

// CSRFMiddleware checks double-submitted tokens. Every response carries the
// cookie; unsafe requests must echo it in the header (autosave) or the form
// field (plain forms).
func (s *Server) CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := s.csrfCookie(w, r)
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			next.ServeHTTP(w, r)
			return
		}

		got := strings.TrimSpace(r.Header.Get(html.CSRFHeader))
		if got == "" {
			got = strings.TrimSpace(r.FormValue(html.CSRFField))
		}
		if got != "" && subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1 {
			next.ServeHTTP(w, r)
			return
		}

		slog.Warn("csrf token mismatch", slog.String("method", r.Method), slog.String("path", r.URL.Path))
		if respond.IsAJAX(r) {
			respond.Fail(w, http.StatusForbidden, "invalid csrf token")
			return
		}
		http.Error(w, "invalid csrf token", http.StatusForbidden)
	})
}

// csrfCookie returns the request's token, issuing a fresh cookie when the
// client has none.
func (s *Server) csrfCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(html.CSRFCookie); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}
	token := sessioncookie.NewToken()
	http.SetCookie(w, &http.Cookie{
		Name:     html.CSRFCookie,
		Value:    token,
		Path:     "/",
		Secure:   s.Options.Login.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}
