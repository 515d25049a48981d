package adminusers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessioncontext "dockboard/frontend/shared/context"
	"dockboard/infrastructure/audit"
	"dockboard/infrastructure/cache"
	"dockboard/models"
)

func serveAs(h http.Handler, actor models.User, method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	session := models.Session{ID: "tok", UserID: actor.ID, User: actor, UserRoles: []string{actor.Role}}
	req = req.WithContext(sessioncontext.NewContextWithSession(req.Context(), session))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUsersHandlers(t *testing.T) {
	db := openAdminUsersTestDB(t)
	admin := seedActor(t, db, "admin@dock.test", "admin")
	other := seedActor(t, db, "other@dock.test", "user")

	sessions := cache.NewUserSessionCache()
	sessions.AddSession(models.Session{ID: "other-token", UserID: other.ID, User: other})
	users := cache.NewUserCache()
	users.Add(other.Email, other)
	svc := audit.NewService()

	r := chi.NewRouter()
	r.Get("/tasker/admin/users", UsersPageQueryHandler(db))
	r.Post("/tasker/admin/users", CreateUserCommandHandler(db, svc, users))
	r.Post("/tasker/admin/users/{id}/edit", UpdateUserCommandHandler(db, svc, sessions, users))
	r.Post("/tasker/admin/users/{id}/password", ChangePasswordCommandHandler(db, svc, sessions))
	r.Post("/tasker/admin/users/{id}/delete", DeleteUserCommandHandler(db, svc, sessions, users))

	rec := serveAs(r, admin, http.MethodGet, "/tasker/admin/users?status=hello", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "other@dock.test")
	assert.Contains(t, rec.Body.String(), "hello")

	rec = serveAs(r, admin, http.MethodPost, "/tasker/admin/users", url.Values{"email": {"new@dock.test"}, "role": {"user"}, "password": {"short"}})
	assert.Contains(t, rec.Header().Get("Location"), "error=")

	rec = serveAs(r, admin, http.MethodPost, "/tasker/admin/users", url.Values{"email": {"new@dock.test"}, "role": {"user"}, "password": {"Longer1"}})
	assert.Contains(t, rec.Header().Get("Location"), "status=")
	_, ok := users.Get("new@dock.test")
	assert.True(t, ok)

	id := strconv.FormatInt(other.ID, 10)
	rec = serveAs(r, admin, http.MethodPost, "/tasker/admin/users/"+id+"/edit", url.Values{"email": {"other@dock.test"}, "role": {"supervisor"}})
	assert.Contains(t, rec.Header().Get("Location"), "status=")
	_, ok = sessions.FindSessionBySessionToken("other-token")
	assert.False(t, ok, "role change must drop cached sessions")
	_, ok = users.Get("other@dock.test")
	assert.False(t, ok)

	rec = serveAs(r, admin, http.MethodPost, "/tasker/admin/users/"+strconv.FormatInt(admin.ID, 10)+"/delete", url.Values{})
	assert.Contains(t, rec.Header().Get("Location"), url.QueryEscape(ErrCannotDeleteSelf.Error()))

	rec = serveAs(r, admin, http.MethodPost, "/tasker/admin/users/"+id+"/delete", url.Values{})
	assert.Contains(t, rec.Header().Get("Location"), "deleted")
}

func TestUsersPage_SupervisorSeesOnlyUserRole(t *testing.T) {
	db := openAdminUsersTestDB(t)
	sup := seedActor(t, db, "sup@dock.test", "supervisor")

	rec := serveAs(UsersPageQueryHandler(db), sup, http.MethodGet, "/tasker/admin/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="user">user</option>`)
	assert.NotContains(t, body, `<option value="admin">`)
	assert.NotContains(t, body, "/edit")
}
