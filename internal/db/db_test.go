package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type txCounters struct {
	commits     int64
	rollbacks   int64
	failCommits int64
	failCode    string
}

type countingDriver struct {
	counters *txCounters
}

func (d *countingDriver) Open(name string) (driver.Conn, error) {
	return &countingConn{counters: d.counters}, nil
}

type countingConn struct {
	counters *txCounters
}

func (c *countingConn) Prepare(query string) (driver.Stmt, error) {
	return &countingStmt{}, nil
}

func (c *countingConn) Close() error {
	return nil
}

func (c *countingConn) Begin() (driver.Tx, error) {
	return &countingTx{counters: c.counters}, nil
}

func (c *countingConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return &countingTx{counters: c.counters}, nil
}

type countingTx struct {
	counters *txCounters
}

func (t *countingTx) Commit() error {
	call := atomic.AddInt64(&t.counters.commits, 1)
	if call <= t.counters.failCommits {
		code := t.counters.failCode
		if code == "" {
			code = "40001"
		}
		return &pq.Error{Code: pq.ErrorCode(code)}
	}
	return nil
}

func (t *countingTx) Rollback() error {
	atomic.AddInt64(&t.counters.rollbacks, 1)
	return nil
}

type countingStmt struct{}

func (s *countingStmt) Close() error {
	return nil
}

func (s *countingStmt) NumInput() int {
	return -1
}

func (s *countingStmt) Exec(args []driver.Value) (driver.Result, error) {
	return nil, nil
}

func (s *countingStmt) Query(args []driver.Value) (driver.Rows, error) {
	return nil, nil
}

var driverCounter uint64

func openCountingDB(t *testing.T, counters *txCounters) *sqlx.DB {
	t.Helper()
	name := fmt.Sprintf("counting-%d", atomic.AddUint64(&driverCounter, 1))
	sql.Register(name, &countingDriver{counters: counters})
	sqlDB, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return sqlx.NewDb(sqlDB, name)
}

func TestWithTxCommits(t *testing.T) {
	counters := &txCounters{}
	xdb := openCountingDB(t, counters)
	if err := WithTx(context.Background(), xdb, func(*sqlx.Tx) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counters.commits != 1 || counters.rollbacks != 0 {
		t.Fatalf("expected commit=1 rollback=0, got %d/%d", counters.commits, counters.rollbacks)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	counters := &txCounters{}
	xdb := openCountingDB(t, counters)
	if err := WithTx(context.Background(), xdb, func(*sqlx.Tx) error { return errors.New("boom") }); err == nil {
		t.Fatalf("expected error")
	}
	if counters.rollbacks != 1 {
		t.Fatalf("expected rollback=1, got %d", counters.rollbacks)
	}
}

func TestWithTxRetriesOnSerializableConflict(t *testing.T) {
	counters := &txCounters{failCommits: 1}
	xdb := openCountingDB(t, counters)
	if err := WithTx(context.Background(), xdb, func(*sqlx.Tx) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counters.commits != 2 {
		t.Fatalf("expected 2 commits, got %d", counters.commits)
	}
}

func TestWithTxRetryCapExceeded(t *testing.T) {
	counters := &txCounters{failCommits: 10, failCode: "40P01"}
	xdb := openCountingDB(t, counters)
	err := WithTx(context.Background(), xdb, func(*sqlx.Tx) error { return nil })
	if err == nil {
		t.Fatalf("expected retry limit error")
	}
	if counters.commits != 5 {
		t.Fatalf("expected 5 commits, got %d", counters.commits)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Fatal("expected unique violation")
	}
	if IsUniqueViolation(&pq.Error{Code: "40001"}) {
		t.Fatal("serialization failure is not a unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatal("plain error is not a unique violation")
	}
}
