package admindata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	sessioncontext "dockboard/frontend/shared/context"
	"dockboard/infrastructure/audit"
	"dockboard/infrastructure/sqlite"
	"dockboard/models"
)

func openDataTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "admin-data-test.db"))
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
	err = db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO users (id, email, full_name, password_hash, role) VALUES (1, 'admin@dock.test', 'Admin', 'x', 'admin')`)
		return err
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return db
}

type fakeNotifier struct {
	mu    sync.Mutex
	slots []string
}

func (f *fakeNotifier) Notify(slot string, immediate bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if immediate {
		f.slots = append(f.slots, slot)
	}
}

func dataRouter(db *sqlite.DB, n Notifier) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			session := models.Session{UserID: 1, User: models.User{ID: 1, Email: "admin@dock.test", Role: "admin"}}
			next.ServeHTTP(w, req.WithContext(sessioncontext.NewContextWithSession(req.Context(), session)))
		})
	})
	auditSvc := audit.NewService()
	r.Get("/tasker/admin/data", DataPageQueryHandler(db))
	r.Post("/tasker/admin/data/clear", ClearLoadsCommandHandler(db, auditSvc, n))
	r.Post("/tasker/admin/data/demo", SeedDemoCommandHandler(db, auditSvc, n))
	return r
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestDemoThenClear(t *testing.T) {
	db := openDataTestDB(t)
	n := &fakeNotifier{}
	h := dataRouter(db, n)

	rec := do(t, h, http.MethodPost, "/tasker/admin/data/demo")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "status=inserted+4+demo+loads")
	assert.ElementsMatch(t, []string{"17:00", "18:00"}, n.slots)

	rec = do(t, h, http.MethodPost, "/tasker/admin/data/demo")
	assert.Contains(t, rec.Header().Get("Location"), "error=clear+the+board")

	data, err := LoadDataPageData(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, Counts{Loads: 4, Slots: 2, Users: 1}, data.Counts)
	require.NotEmpty(t, data.Audit)
	assert.Equal(t, audit.ActionLoadsDemo, data.Audit[0].Action)
	assert.Equal(t, "admin@dock.test", data.Audit[0].Actor)

	n.slots = nil
	rec = do(t, h, http.MethodPost, "/tasker/admin/data/clear")
	assert.Contains(t, rec.Header().Get("Location"), "status=deleted+4+loads")
	assert.ElementsMatch(t, []string{"17:00", "18:00"}, n.slots)

	data, err = LoadDataPageData(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, 0, data.Counts.Loads)
}

func TestDataPage_Renders(t *testing.T) {
	db := openDataTestDB(t)
	rec := do(t, dataRouter(db, &fakeNotifier{}), http.MethodGet, "/tasker/admin/data")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No activity yet.")
	assert.Contains(t, rec.Body.String(), `action="/tasker/admin/data/clear"`)
}
