package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

const (
	busyTimeoutMS = 5000
	readerConns   = 8
	connLifetime  = 15 * time.Minute
)

// DB is the board database: one serialized writer and a pool of query-only
// readers over the same file.
type DB struct {
	Path     string
	WriteSQL *sql.DB
	ReadSQL  *sql.DB
	W        *bun.DB
	R        *bun.DB
}

// dsn builds a go-sqlite3 file URI for path with the shared pragmas plus extra.
func dsn(path string, extra map[string]string) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", fmt.Sprint(busyTimeoutMS))
	for k, v := range extra {
		q.Set(k, v)
	}
	return "file:" + path + "?" + q.Encode()
}

// OpenDB opens path, creating the file in WAL mode when missing.
func OpenDB(path string) (*DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	wsql, err := sql.Open("sqlite3", dsn(path, map[string]string{"_txlock": "immediate", "_journal_mode": "WAL"}))
	if err != nil {
		return nil, fmt.Errorf("open write db: %w", err)
	}
	wsql.SetMaxOpenConns(1)
	wsql.SetConnMaxLifetime(connLifetime)
	// Readers use mode=ro, which needs the file to exist already.
	if err := wsql.Ping(); err != nil {
		wsql.Close()
		return nil, fmt.Errorf("ping write db: %w", err)
	}

	rsql, err := openReader(path)
	if err != nil {
		wsql.Close()
		return nil, err
	}

	return &DB{
		Path:     path,
		WriteSQL: wsql,
		ReadSQL:  rsql,
		W:        bun.NewDB(wsql, sqlitedialect.New()),
		R:        bun.NewDB(rsql, sqlitedialect.New()),
	}, nil
}

func openReader(path string) (*sql.DB, error) {
	rsql, err := sql.Open("sqlite3", dsn(path, map[string]string{"mode": "ro", "_query_only": "1"}))
	if err != nil {
		return nil, fmt.Errorf("open read db: %w", err)
	}
	if err := rsql.Ping(); err != nil {
		rsql.Close()
		// Some builds refuse mode=ro on a WAL file still held by the writer.
		rsql, err = sql.Open("sqlite3", dsn(path, map[string]string{"_query_only": "1"}))
		if err != nil {
			return nil, fmt.Errorf("open fallback read db: %w", err)
		}
	}
	rsql.SetMaxOpenConns(readerConns)
	rsql.SetConnMaxIdleTime(5 * time.Minute)
	rsql.SetConnMaxLifetime(connLifetime)

	if _, err := rsql.Exec("PRAGMA query_only = ON"); err != nil {
		rsql.Close()
		return nil, fmt.Errorf("enable read query_only: %w", err)
	}
	return rsql, nil
}

// Ping checks both handles; /health uses it.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.WriteSQL.PingContext(ctx); err != nil {
		return fmt.Errorf("write db: %w", err)
	}
	if err := db.ReadSQL.PingContext(ctx); err != nil {
		return fmt.Errorf("read db: %w", err)
	}
	return nil
}

// Close closes both handles.
func (db *DB) Close() error {
	if db == nil {
		return nil
	}
	var errs []error
	if db.W != nil {
		errs = append(errs, db.W.Close())
	}
	if db.R != nil {
		errs = append(errs, db.R.Close())
	}
	return errors.Join(errs...)
}
