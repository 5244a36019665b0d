//go:build rocksdb

package binding

import (
	"context"
	"strings"

	"github.com/hhkbp2/txbench"
	"github.com/linxGnu/grocksdb"
	"github.com/pkg/errors"
)

const (
	PropertyRocksdbLockTimeout        = "rocksdb.locktimeout"
	PropertyRocksdbLockTimeoutDefault = "1000"
)

func init() {
	extraBindings["rocksdb"] = func() txbench.Store {
		return NewRocksdbStore()
	}
}

// rocksdb reports statuses as error strings.
func isRocksdbConflict(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "Resource busy") ||
		strings.HasPrefix(msg, "Operation timed out") ||
		strings.HasPrefix(msg, "Operation aborted")
}

func classifyRocksdb(err error) error {
	if err != nil && isRocksdbConflict(err) {
		return txbench.Conflict(err)
	}
	return err
}

// RocksdbStore opens a pessimistic TransactionDB at store.path.
type RocksdbStore struct {
	*txbench.StoreBase
	path      string
	options   *grocksdb.Options
	txnDBOpts *grocksdb.TransactionDBOptions
	readOpts  *grocksdb.ReadOptions
	writeOpts *grocksdb.WriteOptions
	txnOpts   *grocksdb.TransactionOptions
	db        *grocksdb.TransactionDB
}

func NewRocksdbStore() *RocksdbStore {
	return &RocksdbStore{
		StoreBase: txbench.NewStoreBase(),
	}
}

func (self *RocksdbStore) Init() error {
	props := self.GetProperties()
	self.path = props.GetDefault(txbench.PropertyStorePath, txbench.PropertyStorePathDefault)
	createIfMissing, err := props.GetBool(txbench.PropertyStoreCreateIfMissing, txbench.PropertyStoreCreateIfMissingDefault)
	if err != nil {
		return err
	}
	lockTimeout, err := props.GetInt64(PropertyRocksdbLockTimeout, PropertyRocksdbLockTimeoutDefault)
	if err != nil {
		return err
	}

	self.options = grocksdb.NewDefaultOptions()
	self.options.SetCreateIfMissing(createIfMissing)
	self.txnDBOpts = grocksdb.NewDefaultTransactionDBOptions()
	self.txnDBOpts.SetTransactionLockTimeout(lockTimeout)
	db, err := grocksdb.OpenTransactionDb(self.options, self.txnDBOpts, self.path)
	if err != nil {
		self.destroyOptions()
		return errors.Wrapf(err, "fail to open rocksdb at %s", self.path)
	}
	self.db = db
	self.readOpts = grocksdb.NewDefaultReadOptions()
	self.writeOpts = grocksdb.NewDefaultWriteOptions()
	self.txnOpts = grocksdb.NewDefaultTransactionOptions()
	txbench.Debugf("rocksdb store at %s", self.path)
	return nil
}

func (self *RocksdbStore) destroyOptions() {
	if self.txnOpts != nil {
		self.txnOpts.Destroy()
	}
	if self.writeOpts != nil {
		self.writeOpts.Destroy()
	}
	if self.readOpts != nil {
		self.readOpts.Destroy()
	}
	if self.txnDBOpts != nil {
		self.txnDBOpts.Destroy()
	}
	if self.options != nil {
		self.options.Destroy()
	}
}

func (self *RocksdbStore) Cleanup() error {
	if self.db != nil {
		self.db.Close()
		self.db = nil
	}
	self.destroyOptions()
	return nil
}

func sliceValue(s *grocksdb.Slice) ([]byte, bool) {
	defer s.Free()
	if !s.Exists() {
		return nil, false
	}
	return append([]byte(nil), s.Data()...), true
}

func (self *RocksdbStore) Begin(ctx context.Context) (txbench.Txn, error) {
	return &rocksdbTxn{
		store: self,
		txn:   self.db.TransactionBegin(self.writeOpts, self.txnOpts, nil),
	}, nil
}

func (self *RocksdbStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s, err := self.db.Get(self.readOpts, []byte(key))
	if err != nil {
		return nil, false, classifyRocksdb(err)
	}
	v, ok := sliceValue(s)
	return v, ok, nil
}

func (self *RocksdbStore) Put(ctx context.Context, key string, value []byte) error {
	return classifyRocksdb(self.db.Put(self.writeOpts, []byte(key), value))
}

type rocksdbTxn struct {
	store *RocksdbStore
	txn   *grocksdb.Transaction
	done  bool
}

func (self *rocksdbTxn) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if self.done {
		return nil, false, txbench.ErrTxnDone
	}
	s, err := self.txn.Get(self.store.readOpts, []byte(key))
	if err != nil {
		return nil, false, classifyRocksdb(err)
	}
	v, ok := sliceValue(s)
	return v, ok, nil
}

func (self *rocksdbTxn) Put(ctx context.Context, key string, value []byte) error {
	if self.done {
		return txbench.ErrTxnDone
	}
	return classifyRocksdb(self.txn.Put([]byte(key), value))
}

func (self *rocksdbTxn) Commit(ctx context.Context) error {
	if self.done {
		return errors.Wrap(txbench.ErrTxnDone, "commit")
	}
	err := self.txn.Commit()
	if err != nil {
		return classifyRocksdb(err)
	}
	self.done = true
	self.txn.Destroy()
	return nil
}

func (self *rocksdbTxn) Rollback(ctx context.Context) error {
	if self.done {
		return nil
	}
	self.done = true
	err := self.txn.Rollback()
	self.txn.Destroy()
	return err
}
