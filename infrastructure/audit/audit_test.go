package audit

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"dockboard/infrastructure/sqlite"
	"dockboard/models"
)

func openAuditTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "audit-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "sqlite", "migrations")
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

func readLogs(t *testing.T, db *sqlite.DB) []models.AuditLog {
	t.Helper()
	var logs []models.AuditLog
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&logs).Order("al.id ASC").Scan(ctx)
	})
	require.NoError(t, err)
	return logs
}

func TestWrite_StoresJSONSnapshots(t *testing.T) {
	db := openAuditTestDB(t)
	svc := NewService()

	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return svc.Write(ctx, tx, 1, ActionLaneClear, "lane", "17:00/L01", nil, map[string]any{"rows": 3})
	})
	require.NoError(t, err)

	logs := readLogs(t, db)
	require.Len(t, logs, 1)
	assert.Equal(t, ActionLaneClear, logs[0].Action)
	assert.Equal(t, "17:00/L01", logs[0].EntityID)
	assert.Empty(t, logs[0].BeforeJSON)
	assert.JSONEq(t, `{"rows":3}`, logs[0].AfterJSON)
}

func TestWrite_RollsBackWithCallerTx(t *testing.T) {
	db := openAuditTestDB(t)
	svc := NewService()
	boom := errors.New("boom")

	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if err := svc.Write(ctx, tx, 1, ActionLoadDelete, "load", "9", map[string]any{"id": 9}, nil); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, readLogs(t, db))
}

func TestWrite_RejectsUnencodableSnapshot(t *testing.T) {
	db := openAuditTestDB(t)
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return NewService().Write(ctx, tx, 1, ActionLoadUpdate, "load", "1", make(chan int), nil)
	})
	assert.ErrorContains(t, err, "audit before")
}
