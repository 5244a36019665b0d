package binding

import (
	"context"
	"fmt"

	"github.com/hhkbp2/txbench"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const (
	PropertyPostgresURL              = "postgres.url"
	PropertyPostgresURLDefault       = "postgres://postgres@127.0.0.1:5432/postgres"
	PropertyPostgresIsolation        = "postgres.isolation"
	PropertyPostgresIsolationDefault = "repeatable read"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func isPostgresConflict(err error) bool {
	var e *pgconn.PgError
	if errors.As(err, &e) {
		return e.Code == pgSerializationFailure || e.Code == pgDeadlockDetected
	}
	return false
}

func classifyPostgres(err error) error {
	if err != nil && isPostgresConflict(err) {
		return txbench.Conflict(err)
	}
	return err
}

// PostgresStore talks to postgres through a pgx connection pool.
type PostgresStore struct {
	*txbench.StoreBase
	pool       *pgxpool.Pool
	txOptions  pgx.TxOptions
	getStmt    string
	upsertStmt string
}

func NewPostgresStore() *PostgresStore {
	return &PostgresStore{
		StoreBase: txbench.NewStoreBase(),
	}
}

func (self *PostgresStore) Init() error {
	props := self.GetProperties()
	url := props.GetDefault(PropertyPostgresURL, PropertyPostgresURLDefault)
	table := props.GetDefault(PropertySQLTable, PropertySQLTableDefault)
	self.txOptions = pgx.TxOptions{
		IsoLevel: pgx.TxIsoLevel(props.GetDefault(PropertyPostgresIsolation, PropertyPostgresIsolationDefault)),
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return errors.Wrap(err, "fail to connect to postgres")
	}
	createTable := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (k TEXT PRIMARY KEY, v BYTEA)", table)
	if _, err = pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return errors.Wrapf(err, "fail to create table %s", table)
	}
	self.pool = pool
	self.getStmt = fmt.Sprintf("SELECT v FROM %s WHERE k = $1", table)
	self.upsertStmt = fmt.Sprintf(
		"INSERT INTO %s (k, v) VALUES ($1, $2) ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v", table)
	return nil
}

func (self *PostgresStore) Cleanup() error {
	if self.pool != nil {
		self.pool.Close()
	}
	return nil
}

type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (self *PostgresStore) get(ctx context.Context, q pgQuerier, key string) ([]byte, bool, error) {
	var value []byte
	err := q.QueryRow(ctx, self.getStmt, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classifyPostgres(err)
	}
	return value, true, nil
}

func (self *PostgresStore) put(ctx context.Context, q pgQuerier, key string, value []byte) error {
	_, err := q.Exec(ctx, self.upsertStmt, key, value)
	return classifyPostgres(err)
}

func (self *PostgresStore) Begin(ctx context.Context) (txbench.Txn, error) {
	tx, err := self.pool.BeginTx(ctx, self.txOptions)
	if err != nil {
		return nil, classifyPostgres(err)
	}
	return &postgresTxn{
		store: self,
		tx:    tx,
	}, nil
}

func (self *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return self.get(ctx, self.pool, key)
}

func (self *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	return self.put(ctx, self.pool, key, value)
}

type postgresTxn struct {
	store *PostgresStore
	tx    pgx.Tx
}

func (self *postgresTxn) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return self.store.get(ctx, self.tx, key)
}

func (self *postgresTxn) Put(ctx context.Context, key string, value []byte) error {
	return self.store.put(ctx, self.tx, key, value)
}

func (self *postgresTxn) Commit(ctx context.Context) error {
	err := self.tx.Commit(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return errors.Wrap(txbench.ErrTxnDone, "commit")
	}
	return classifyPostgres(err)
}

func (self *postgresTxn) Rollback(ctx context.Context) error {
	err := self.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}
