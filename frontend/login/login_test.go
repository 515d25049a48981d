package login

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/pbkdf2"

	"dockboard/infrastructure/cache"
	"dockboard/infrastructure/password"
	sessioncookie "dockboard/infrastructure/session"
	"dockboard/infrastructure/sqlite"
	"dockboard/models"
)

func openLoginTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "login-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func userHash(t *testing.T, db *sqlite.DB, email string) string {
	t.Helper()
	var hash string
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT password_hash FROM users WHERE email = ?`, email).Scan(ctx, &hash)
	})
	require.NoError(t, err)
	return hash
}

// passlibHash builds a hash the way the previous dock system stored them.
func passlibHash(pwd string, salt []byte, rounds int) string {
	sum := pbkdf2.Key([]byte(pwd), salt, rounds, 32, sha256.New)
	ab64 := func(b []byte) string { return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(b), "+", ".") }
	return "$pbkdf2-sha256$" + strconv.Itoa(rounds) + "$" + ab64(salt) + "$" + ab64(sum)
}

func postLogin(h http.Handler, email, pwd string) *httptest.ResponseRecorder {
	form := url.Values{"email": {email}, "password": {pwd}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUpsertUser_CreatesThenUpdates(t *testing.T) {
	db := openLoginTestDB(t)
	ctx := context.Background()

	require.NoError(t, UpsertUser(ctx, db, " Boss@Dock.test ", "Boss", "admin", "Secret1"))
	first := userHash(t, db, "boss@dock.test")
	ok, err := password.Verify("Secret1", first)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, UpsertUser(ctx, db, "boss@dock.test", "Boss", "supervisor", "Other12"))
	assert.NotEqual(t, first, userHash(t, db, "boss@dock.test"))

	assert.Error(t, UpsertUser(ctx, db, "x@dock.test", "", "root", "Secret1"))
	assert.ErrorIs(t, UpsertUser(ctx, db, "x@dock.test", "", "user", "secret1"), ErrPasswordNoUpper)

	created, err := EnsureUser(ctx, db, "boss@dock.test", "Boss", "admin", "Secret1")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestCreateLoginHandler_IssuesSession(t *testing.T) {
	db := openLoginTestDB(t)
	require.NoError(t, UpsertUser(context.Background(), db, "sup@dock.test", "Sup", "supervisor", "Secret1"))
	sessions := cache.NewUserSessionCache()
	users := cache.NewUserCache()
	h := CreateLoginHandler(db, sessions, users, Options{TTL: time.Hour, SecureCookies: true})

	rec := postLogin(h, "SUP@dock.test", "Secret1")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/tasker/loads", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessioncookie.CookieName, cookies[0].Name)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.True(t, cookies[0].Secure)

	cached, ok := sessions.FindSessionBySessionToken(cookies[0].Value)
	require.True(t, ok)
	assert.Equal(t, "supervisor", cached.User.Role)
	_, ok = users.Get("sup@dock.test")
	assert.True(t, ok)

	stored, err := LoadSessionByToken(context.Background(), db, cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, []string{"supervisor"}, stored.UserRoles)

	rec = postLogin(h, "sup@dock.test", "wrong")
	assert.Contains(t, rec.Header().Get("Location"), "error=")
	rec = postLogin(h, "nobody@dock.test", "Secret1")
	assert.Contains(t, rec.Header().Get("Location"), url.QueryEscape(ErrInvalidCredentials.Error()))
}

func TestLogin_RehashesLegacyHash(t *testing.T) {
	db := openLoginTestDB(t)
	legacy := passlibHash("Secret1", []byte("0123456789abcdef"), 1000)
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO users (email, full_name, password_hash, role) VALUES ('old@dock.test', 'Old', ?, 'user')`, legacy)
		return err
	})
	require.NoError(t, err)

	user, err := authenticateUser(context.Background(), db, "old@dock.test", "Secret1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.PasswordHash, "$argon2id$"))
	assert.True(t, strings.HasPrefix(userHash(t, db, "old@dock.test"), "$argon2id$"))
}

func TestLoadSessionByToken_ExpiredIsRemoved(t *testing.T) {
	db := openLoginTestDB(t)
	require.NoError(t, UpsertUser(context.Background(), db, "u@dock.test", "", "user", "Secret1"))
	user, err := authenticateUser(context.Background(), db, "u@dock.test", "Secret1")
	require.NoError(t, err)

	expired := models.Session{ID: "old-token", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, persistSession(context.Background(), db, expired))

	_, err = LoadSessionByToken(context.Background(), db, "old-token")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	n, err := DeleteExpiredSessions(context.Background(), db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLogoutHandler_ClearsSession(t *testing.T) {
	db := openLoginTestDB(t)
	require.NoError(t, UpsertUser(context.Background(), db, "u@dock.test", "", "user", "Secret1"))
	sessions := cache.NewUserSessionCache()
	rec := postLogin(CreateLoginHandler(db, sessions, cache.NewUserCache(), Options{}), "u@dock.test", "Secret1")
	token := rec.Result().Cookies()[0].Value

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessioncookie.CookieName, Value: token})
	out := httptest.NewRecorder()
	LogoutHandler(db, sessions, Options{})(out, req)

	assert.Equal(t, "/login", out.Header().Get("Location"))
	assert.Equal(t, -1, out.Result().Cookies()[0].MaxAge)
	_, ok := sessions.FindSessionBySessionToken(token)
	assert.False(t, ok)
	_, err := LoadSessionByToken(context.Background(), db, token)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetLoginScreenHandler(t *testing.T) {
	sessions := cache.NewUserSessionCache()
	handler := GetLoginScreenHandler(sessions)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/login?error=nope&email=sup%40dock.test", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="email" value="sup@dock.test"`)
	assert.Contains(t, rec.Body.String(), "nope")

	sessions.AddSession(models.Session{ID: "live", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)})
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: sessioncookie.CookieName, Value: "live"})
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/tasker/loads", rec.Header().Get("Location"))
}
