package txbench

import (
	"context"
	"sort"

	"github.com/pkg/errors"
)

var (
	ErrNotFound         = errors.New("the requested key was not found")
	ErrConflict         = errors.New("the transaction conflicted with another transaction")
	ErrTxnDone          = errors.New("the transaction has already been committed or rolled back")
	ErrUnsupportedStore = errors.New("unsupported store")
)

// Store is a layer for accessing a transactional key-value store to be
// benchmarked. One instance is opened per run and shared by every worker,
// so implementations must support concurrent transactions; the driver adds
// no locking of its own around store calls.
//
// A Store is constructed with a no-argument constructor so it can be picked
// by name. Any argument-based initialization is done by Init() from the
// properties set beforehand.
type Store interface {
	// Set the properties for this store.
	SetProperties(p Properties)

	// Get the properties for this store.
	GetProperties() Properties

	// Open the store, creating it when missing if the properties allow.
	Init() error

	// Close the store.
	Cleanup() error

	// Begin starts a new transaction.
	Begin(ctx context.Context) (Txn, error)

	// Get reads a key outside of any transaction.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put writes a key outside of any transaction.
	Put(ctx context.Context, key string, value []byte) error
}

// Txn is a batch of reads and writes applied atomically on Commit.
// A Txn is used by a single goroutine.
type Txn interface {
	// Get reads a key. The second return is false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put writes a key.
	Put(ctx context.Context, key string, value []byte) error

	// Commit applies the transaction. A store that detects a conflict
	// returns an error wrapping ErrConflict.
	Commit(ctx context.Context) error

	// Rollback discards the transaction. It is a no-op after Commit.
	Rollback(ctx context.Context) error
}

// Conflict marks err as a transaction conflict: errors.Is(err, ErrConflict)
// holds for the result while the message and chain of err are kept.
func Conflict(err error) error {
	if err == nil {
		return nil
	}
	return &conflictError{err}
}

type conflictError struct {
	error
}

func (self *conflictError) Unwrap() error {
	return self.error
}

func (self *conflictError) Is(target error) bool {
	return target == ErrConflict
}

type StoreBase struct {
	p Properties
}

func NewStoreBase() *StoreBase {
	return &StoreBase{}
}

func (self *StoreBase) SetProperties(p Properties) {
	self.p = p
}

func (self *StoreBase) GetProperties() Properties {
	return self.p
}

type MakeStoreFunc func() Store

var (
	Stores = map[string]MakeStoreFunc{
		"memory": func() Store {
			return NewMemoryStore()
		},
	}
)

// StoreNames returns the registered store names in sorted order.
func StoreNames() []string {
	names := make([]string, 0, len(Stores))
	for name := range Stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewStore creates the named store with the given properties. The returned
// store is not yet initialized.
func NewStore(name string, props Properties) (Store, error) {
	f, ok := Stores[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedStore, "%q", name)
	}
	s := f()
	s.SetProperties(props)
	return s, nil
}

// OpenStore creates and initializes the named store.
func OpenStore(name string, props Properties) (Store, error) {
	s, err := NewStore(name, props)
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, errors.Wrapf(err, "fail to open store %s", name)
	}
	return s, nil
}
