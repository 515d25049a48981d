package adminusers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"dockboard/frontend/login"
	"dockboard/frontend/shared/context"
	"dockboard/frontend/shared/html"
	"dockboard/frontend/shared/nav"
	"dockboard/infrastructure/audit"
	"dockboard/infrastructure/cache"
	"dockboard/infrastructure/rbac"
	"dockboard/infrastructure/sqlite"
)

func usersURL(key, msg string) string {
	return "/tasker/admin/users?" + key + "=" + url.QueryEscape(msg)
}

// userErrorMessage returns err's text when it is a validation error a user
// can act on.
func userErrorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrEmailRequired),
		errors.Is(err, ErrEmailExists),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrRoleNotAllowed),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrCannotDeleteSelf),
		errors.Is(err, login.ErrPasswordTooShort),
		errors.Is(err, login.ErrPasswordNoUpper):
		return err.Error(), true
	}
	return "", false
}

func redirectErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	if msg, ok := userErrorMessage(err); ok {
		http.Redirect(w, r, usersURL("error", msg), http.StatusSeeOther)
		return
	}
	slog.Error("admin users: "+op+" failed", slog.Any("err", err))
	http.Redirect(w, r, usersURL("error", op+" failed"), http.StatusSeeOther)
}

func pathUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// UsersPageQueryHandler renders the admin users list page.
func UsersPageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := context.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		users, err := LoadUsersPageData(r.Context(), db)
		if err != nil {
			slog.Error("admin users: failed to load data", slog.Any("err", err))
			http.Error(w, "failed to load users", http.StatusInternalServerError)
			return
		}

		data := PageData{
			Nav:             nav.BuildTopNavData(session),
			Users:           users,
			AssignableRoles: rbac.AssignableRoles(session.User.Role),
			CanManage:       session.User.Role == rbac.RoleAdmin,
			SelfID:          session.UserID,
		}
		meta := html.PageMeta{
			Status: r.URL.Query().Get("status"),
			Error:  r.URL.Query().Get("error"),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := UsersListPage(data, meta).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render users page", http.StatusInternalServerError)
			return
		}
	}
}

func CreateUserCommandHandler(db *sqlite.DB, auditSvc *audit.Service, userCache *cache.UserCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := context.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, usersURL("error", "invalid form data"), http.StatusSeeOther)
			return
		}

		user, err := CreateUser(r.Context(), db, auditSvc, session.User, UserInput{
			Email:    r.FormValue("email"),
			FullName: r.FormValue("full_name"),
			Role:     r.FormValue("role"),
			Password: r.FormValue("password"),
		})
		if err != nil {
			redirectErr(w, r, "create user", err)
			return
		}
		userCache.Add(user.Email, user)
		http.Redirect(w, r, usersURL("status", "user "+user.Email+" created"), http.StatusSeeOther)
	}
}

func UpdateUserCommandHandler(db *sqlite.DB, auditSvc *audit.Service, sessionCache *cache.UserSessionCache, userCache *cache.UserCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := context.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		id, ok := pathUserID(r)
		if !ok {
			http.Redirect(w, r, usersURL("error", "invalid user"), http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, usersURL("error", "invalid form data"), http.StatusSeeOther)
			return
		}

		before, after, err := UpdateUser(r.Context(), db, auditSvc, session.User, id, UserInput{
			Email:    r.FormValue("email"),
			FullName: r.FormValue("full_name"),
			Role:     strings.TrimSpace(r.FormValue("role")),
		})
		if err != nil {
			redirectErr(w, r, "update user", err)
			return
		}
		userCache.Delete(before.Email)
		sessionCache.DeleteSessionsByUserID(id)
		http.Redirect(w, r, usersURL("status", "user "+after.Email+" updated"), http.StatusSeeOther)
	}
}

func ChangePasswordCommandHandler(db *sqlite.DB, auditSvc *audit.Service, sessionCache *cache.UserSessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := context.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		id, ok := pathUserID(r)
		if !ok {
			http.Redirect(w, r, usersURL("error", "invalid user"), http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, usersURL("error", "invalid form data"), http.StatusSeeOther)
			return
		}

		if err := ChangePassword(r.Context(), db, auditSvc, session.User, id, r.FormValue("password")); err != nil {
			redirectErr(w, r, "change password", err)
			return
		}
		// Other users are logged out everywhere; the actor keeps the current session.
		if id != session.UserID {
			sessionCache.DeleteSessionsByUserID(id)
			if err := login.DeleteSessionsByUserID(r.Context(), db, id); err != nil {
				slog.Error("admin users: drop sessions failed", slog.Int64("user_id", id), slog.Any("err", err))
			}
		}
		http.Redirect(w, r, usersURL("status", "password changed"), http.StatusSeeOther)
	}
}

func DeleteUserCommandHandler(db *sqlite.DB, auditSvc *audit.Service, sessionCache *cache.UserSessionCache, userCache *cache.UserCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := context.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		id, ok := pathUserID(r)
		if !ok {
			http.Redirect(w, r, usersURL("error", "invalid user"), http.StatusSeeOther)
			return
		}

		user, err := DeleteUser(r.Context(), db, auditSvc, session.User, id)
		if err != nil {
			redirectErr(w, r, "delete user", err)
			return
		}
		userCache.Delete(user.Email)
		sessionCache.DeleteSessionsByUserID(id)
		http.Redirect(w, r, usersURL("status", "user "+user.Email+" deleted"), http.StatusSeeOther)
	}
}
