package login

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dockboard/infrastructure/cache"
	sessioncookie "dockboard/infrastructure/session"
	"dockboard/infrastructure/sqlite"
	"dockboard/models"
)

// Options controls the issued session cookie.
type Options struct {
	TTL           time.Duration
	SecureCookies bool
}

func (o Options) ttl() time.Duration {
	if o.TTL <= 0 {
		return sessioncookie.DefaultTTL
	}
	return o.TTL
}

// CreateLoginHandler authenticates the user and issues a session cookie.
func CreateLoginHandler(db *sqlite.DB, sessionCache *cache.UserSessionCache, userCache *cache.UserCache, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("invalid form data"), http.StatusSeeOther)
			return
		}

		email := NormalizeEmail(r.FormValue("email"))
		password := r.FormValue("password")
		if email == "" || strings.TrimSpace(password) == "" {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("email and password are required"), http.StatusSeeOther)
			return
		}

		user, err := authenticateUser(r.Context(), db, email, password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				slog.Info("login rejected", slog.String("email", email))
				q := url.Values{"error": {err.Error()}, "email": {email}}
				http.Redirect(w, r, "/login?"+q.Encode(), http.StatusSeeOther)
				return
			}
			slog.Error("login: authentication failed", slog.Any("err", err))
			http.Redirect(w, r, "/login?error="+url.QueryEscape("authentication failed"), http.StatusSeeOther)
			return
		}

		session := newSession(user, opts.ttl())
		if err := persistSession(r.Context(), db, session); err != nil {
			slog.Error("login: persist session failed", slog.Any("err", err))
			http.Redirect(w, r, "/login?error="+url.QueryEscape("failed to create session"), http.StatusSeeOther)
			return
		}

		sessionCache.AddSession(session)
		userCache.Add(user.Email, user)

		http.SetCookie(w, sessioncookie.SessionCookie(session.ID, int(opts.ttl().Seconds()), opts.SecureCookies))
		http.Redirect(w, r, "/tasker/loads", http.StatusSeeOther)
	}
}

func newSession(user models.User, ttl time.Duration) models.Session {
	return models.Session{
		ID:        sessioncookie.NewToken(),
		UserID:    user.ID,
		User:      user,
		UserRoles: []string{user.Role},
		ExpiresAt: sessioncookie.Expiry(ttl),
	}
}
