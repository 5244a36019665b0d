package binding

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/hhkbp2/testify/require"
	"github.com/hhkbp2/txbench"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

func openTestSqlite(t *testing.T) *SqliteStore {
	props := txbench.NewProperties()
	props.Add(txbench.PropertyStorePath, filepath.Join(t.TempDir(), "store"))
	store := NewSqliteStore()
	store.SetProperties(props)
	require.Nil(t, store.Init())
	t.Cleanup(func() {
		store.Cleanup()
	})
	return store
}

func TestSqliteStore(t *testing.T) {
	ctx := context.Background()
	store := openTestSqlite(t)

	_, found, err := store.Get(ctx, "k")
	require.Nil(t, err)
	require.False(t, found)
	require.Nil(t, store.Put(ctx, "k", []byte("a")))
	require.Nil(t, store.Put(ctx, "k", []byte("b")))
	v, found, err := store.Get(ctx, "k")
	require.Nil(t, err)
	require.True(t, found)
	require.Equal(t, []byte("b"), v)

	txn, err := store.Begin(ctx)
	require.Nil(t, err)
	require.Nil(t, txn.Put(ctx, "k", []byte("z")))
	v, _, err = txn.Get(ctx, "k")
	require.Nil(t, err)
	require.Equal(t, []byte("z"), v)
	require.Nil(t, txn.Commit(ctx))
	require.Nil(t, txn.Rollback(ctx))
	require.True(t, errors.Is(txn.Commit(ctx), txbench.ErrTxnDone))
	v, _, err = store.Get(ctx, "k")
	require.Nil(t, err)
	require.Equal(t, []byte("z"), v)

	txn, err = store.Begin(ctx)
	require.Nil(t, err)
	require.Nil(t, txn.Put(ctx, "k", []byte("y")))
	require.Nil(t, txn.Rollback(ctx))
	v, _, err = store.Get(ctx, "k")
	require.Nil(t, err)
	require.Equal(t, []byte("z"), v)
}

func TestSqliteStoreMissing(t *testing.T) {
	props := txbench.NewProperties()
	props.Add(txbench.PropertyStorePath, filepath.Join(t.TempDir(), "missing"))
	props.Add(txbench.PropertyStoreCreateIfMissing, "false")
	store := NewSqliteStore()
	store.SetProperties(props)
	require.NotNil(t, store.Init())
}

func TestSqliteWorkload(t *testing.T) {
	store := openTestSqlite(t)
	config := &txbench.WorkloadConfig{
		TableSize:      50,
		ZipfTheta:      0.9,
		OperationCount: 3,
		UpdateRatio:    0.5,
		ThreadCount:    2,
		Duration:       300 * time.Millisecond,
	}
	require.Nil(t, config.Validate())
	require.Nil(t, txbench.Populate(context.Background(), store, config))

	coordinator := txbench.NewCoordinator(config, store)
	coordinator.Abort = func(err error) {
		t.Errorf("unexpected abort: %+v", err)
	}
	result := coordinator.Run()
	require.Nil(t, coordinator.Err())
	require.True(t, result.TotalCommits > 0)
}

func TestConflictClassification(t *testing.T) {
	require.True(t, isSqliteConflict(sqlite3.Error{Code: sqlite3.ErrBusy}))
	require.True(t, isSqliteConflict(errors.Wrap(sqlite3.Error{Code: sqlite3.ErrLocked}, "COMMIT")))
	require.False(t, isSqliteConflict(sqlite3.Error{Code: sqlite3.ErrConstraint}))

	require.True(t, isMysqlConflict(&mysql.MySQLError{Number: 1213}))
	require.True(t, isMysqlConflict(&mysql.MySQLError{Number: 1205}))
	require.False(t, isMysqlConflict(&mysql.MySQLError{Number: 1062}))

	require.True(t, isPostgresConflict(&pgconn.PgError{Code: "40001"}))
	require.True(t, isPostgresConflict(&pgconn.PgError{Code: "40P01"}))
	require.False(t, isPostgresConflict(&pgconn.PgError{Code: "23505"}))
	require.True(t, errors.Is(classifyPostgres(&pgconn.PgError{Code: "40001"}), txbench.ErrConflict))

	require.False(t, isSqliteConflict(errors.New("plain")))
	require.False(t, isMysqlConflict(errors.New("plain")))
}

func TestAddBindings(t *testing.T) {
	AddBindings()
	for _, name := range []string{"memory", "sqlite", "mysql", "postgres"} {
		_, ok := txbench.Stores[name]
		require.True(t, ok, "store %s is not registered", name)
	}
}
