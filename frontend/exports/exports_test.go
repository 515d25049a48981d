package exports

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"

	"dockboard/frontend/board"
	sessioncontext "dockboard/frontend/shared/context"
	"dockboard/infrastructure/sqlite"
	"dockboard/models"
)

func openExportsTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "exports-test.db"))
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
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (id, email, full_name, password_hash, role) VALUES (1, 'admin@dock.test', 'Admin', 'x', 'admin')`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO loads (time_slot, lane, trailer_no, status, seq, planned, done, picker, shift, created_by_id) VALUES
  ('17:00', 'L01', 'TR1', 'PA', 10, 5, 1, 'Ewa', 'A', 1),
  ('17:00', 'L02', 'TR2', 'PL', 10, 3, 0, NULL, 'A', 1)`)
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func withUser(r *http.Request) *http.Request {
	session := models.Session{ID: "tok", UserID: 1, User: models.User{ID: 1, Role: "admin"}}
	return r.WithContext(sessioncontext.NewContextWithSession(r.Context(), session))
}

func TestLoadsExportCSVHandler(t *testing.T) {
	db := openExportsTestDB(t)

	rec := httptest.NewRecorder()
	LoadsExportCSVHandler(db, board.Options{})(rec, withUser(httptest.NewRequest(http.MethodGet, "/tasker/exports/loads.csv", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, loadsHeader, records[0])
	assert.Equal(t, []string{"17:00", "L01", "TR1", "PA", "", "10", "5", "1", "", "Ewa", "", "picking-active-row"}, records[1])
	assert.Equal(t, "conflict-row", records[2][11])

	runs, err := CountExportRuns(context.Background(), db, ExportTypeLoadsCSV)
	require.NoError(t, err)
	assert.Equal(t, 1, runs)
}

func TestLoadsExportXLSXHandler(t *testing.T) {
	db := openExportsTestDB(t)

	rec := httptest.NewRecorder()
	LoadsExportXLSXHandler(db, board.Options{})(rec, withUser(httptest.NewRequest(http.MethodGet, "/tasker/exports/loads.xlsx?time_slot=17:00", nil)))
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Loads")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "flag", rows[0][11])
	assert.Equal(t, "L02", rows[2][1])
}
