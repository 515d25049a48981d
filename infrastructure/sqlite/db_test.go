package sqlite

import (
	"context"
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	got := dsn("/tmp/board.db", map[string]string{"mode": "ro"})
	if !strings.HasPrefix(got, "file:/tmp/board.db?") {
		t.Fatalf("unexpected prefix: %s", got)
	}
	for _, want := range []string{"_foreign_keys=on", "_busy_timeout=5000", "mode=ro"} {
		if !strings.Contains(got, want) {
			t.Fatalf("dsn %s missing %s", got, want)
		}
	}
}

func TestOpenDB_RequiresPath(t *testing.T) {
	if _, err := OpenDB("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestOpenDB_ReaderIsQueryOnly(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if _, err := db.ReadSQL.ExecContext(ctx, insertUserSQL, "reader@dock.test"); err == nil {
		t.Fatalf("reader accepted a write")
	}
	if _, err := db.WriteSQL.ExecContext(ctx, insertUserSQL, "writer@dock.test"); err != nil {
		t.Fatalf("writer insert: %v", err)
	}
	if n := countUsers(t, db, "writer@dock.test"); n != 1 {
		t.Fatalf("expected writer row, got %d", n)
	}
}
