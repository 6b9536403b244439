package utils

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDatabase(context.Background(), DriverSQLite, "file::memory:", PoolConfig{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(`CREATE TABLE t (v INTEGER)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	return db
}

func count(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db := openMemory(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO t (v) VALUES (1)`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if n := count(t, db); n != 0 {
		t.Fatalf("expected rollback, got %d rows", n)
	}
}

func TestWithTx_Commits(t *testing.T) {
	db := openMemory(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO t (v) VALUES (1)`)
		return err
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n := count(t, db); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}

func TestPoolDefaults_SQLiteSingleWriter(t *testing.T) {
	p := PoolConfig{}.withDefaults(DriverSQLite)
	if p.MaxOpenConns != 1 {
		t.Fatalf("expected 1 open conn for sqlite, got %d", p.MaxOpenConns)
	}
	p = PoolConfig{}.withDefaults(DriverPostgres)
	if p.MaxOpenConns != 25 {
		t.Fatalf("expected 25 open conns for postgres, got %d", p.MaxOpenConns)
	}
}

func TestRebind(t *testing.T) {
	if got := Rebind(DriverSQLite, "a = $1 AND b = $12 AND c = '$3'"); got != "a = ? AND b = ? AND c = '$3'" {
		t.Fatalf("unexpected rebind %q", got)
	}
	if got := Rebind(DriverPostgres, "a = $1"); got != "a = $1" {
		t.Fatalf("postgres must keep placeholders, got %q", got)
	}
}
