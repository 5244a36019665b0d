package binding

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hhkbp2/txbench"
	"github.com/pkg/errors"
)

const (
	PropertySQLTable        = "sql.table"
	PropertySQLTableDefault = "kv"
)

// sqlDialect holds the statements that differ between SQL engines. The
// statements are format strings taking the table name.
type sqlDialect struct {
	createTable string
	get         string
	upsert      string
	isConflict  func(err error) bool
}

// sqlStore is the part of the SQL bindings shared over database/sql. Keys
// and values live in a two column table, k as the primary key.
type sqlStore struct {
	*txbench.StoreBase
	dialect    *sqlDialect
	db         *sql.DB
	getStmt    string
	upsertStmt string
}

func newSQLStore(dialect *sqlDialect) *sqlStore {
	return &sqlStore{
		StoreBase: txbench.NewStoreBase(),
		dialect:   dialect,
	}
}

// open creates the table if needed and keeps db for the store.
func (self *sqlStore) open(ctx context.Context, db *sql.DB) error {
	table := self.GetProperties().GetDefault(PropertySQLTable, PropertySQLTableDefault)
	if _, err := db.ExecContext(ctx, fmt.Sprintf(self.dialect.createTable, table)); err != nil {
		db.Close()
		return errors.Wrapf(err, "fail to create table %s", table)
	}
	self.db = db
	self.getStmt = fmt.Sprintf(self.dialect.get, table)
	self.upsertStmt = fmt.Sprintf(self.dialect.upsert, table)
	return nil
}

func (self *sqlStore) Cleanup() error {
	if self.db != nil {
		return self.db.Close()
	}
	return nil
}

func (self *sqlStore) classify(err error) error {
	if err != nil && self.dialect.isConflict(err) {
		return txbench.Conflict(err)
	}
	return err
}

type sqlQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (self *sqlStore) get(ctx context.Context, q sqlQuerier, key string) ([]byte, bool, error) {
	var value []byte
	err := q.QueryRowContext(ctx, self.getStmt, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, self.classify(err)
	}
	return value, true, nil
}

func (self *sqlStore) put(ctx context.Context, q sqlQuerier, key string, value []byte) error {
	_, err := q.ExecContext(ctx, self.upsertStmt, key, value)
	return self.classify(err)
}

func (self *sqlStore) Begin(ctx context.Context) (txbench.Txn, error) {
	tx, err := self.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, self.classify(err)
	}
	return &sqlTxn{
		store: self,
		tx:    tx,
	}, nil
}

func (self *sqlStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return self.get(ctx, self.db, key)
}

func (self *sqlStore) Put(ctx context.Context, key string, value []byte) error {
	return self.put(ctx, self.db, key, value)
}

type sqlTxn struct {
	store *sqlStore
	tx    *sql.Tx
}

func (self *sqlTxn) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return self.store.get(ctx, self.tx, key)
}

func (self *sqlTxn) Put(ctx context.Context, key string, value []byte) error {
	return self.store.put(ctx, self.tx, key, value)
}

func (self *sqlTxn) Commit(ctx context.Context) error {
	err := self.tx.Commit()
	if err == sql.ErrTxDone {
		return errors.Wrap(txbench.ErrTxnDone, "commit")
	}
	return self.store.classify(err)
}

func (self *sqlTxn) Rollback(ctx context.Context) error {
	err := self.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}
