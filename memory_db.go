package txbench

import (
	"context"
	"sync"
	"time"

	"github.com/hhkbp2/txbench/generator"
	"github.com/pkg/errors"
)

// MemoryStore is an in-process transactional store. Transactions read
// committed data, see their own writes, and apply their buffered writes
// atomically at commit. It never reports conflicts.
//
// It can simulate a per-operation delay to stand in for a slower engine.
type MemoryStore struct {
	*StoreBase
	verbose        bool
	randomizeDelay bool
	toDelay        int64

	lock sync.RWMutex
	data map[string][]byte

	randomLock sync.Mutex
	random     *generator.Random
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		StoreBase: NewStoreBase(),
		data:      make(map[string][]byte),
		random:    generator.NewRandomFor(0),
	}
}

func (self *MemoryStore) Init() error {
	p := self.GetProperties()
	if p == nil {
		p = NewProperties()
	}
	var err error
	self.verbose, err = p.GetBool(ConfigMemoryVerbose, ConfigMemoryVerboseDefault)
	if err != nil {
		return err
	}
	self.toDelay, err = p.GetInt64(ConfigMemorySimulateDelay, ConfigMemorySimulateDelayDefault)
	if err != nil {
		return err
	}
	self.randomizeDelay, err = p.GetBool(ConfigMemoryRandomizeDelay, ConfigMemoryRandomizeDelayDefault)
	if err != nil {
		return err
	}
	if self.verbose {
		OutputProperties(p)
	}
	return nil
}

func (self *MemoryStore) Cleanup() error {
	return nil
}

// Delay sleeps for the configured simulated delay, or a random part of it.
func (self *MemoryStore) Delay() {
	if self.toDelay <= 0 {
		return
	}
	var nanos int64
	if self.randomizeDelay {
		self.randomLock.Lock()
		nanos = MillisecondToNanosecond(self.random.NextInt64(self.toDelay))
		self.randomLock.Unlock()
		if nanos == 0 {
			return
		}
	} else {
		nanos = MillisecondToNanosecond(self.toDelay)
	}
	time.Sleep(time.Duration(nanos))
}

// Len returns the number of keys in the store.
func (self *MemoryStore) Len() int {
	self.lock.RLock()
	defer self.lock.RUnlock()
	return len(self.data)
}

func (self *MemoryStore) Begin(ctx context.Context) (Txn, error) {
	if self.verbose {
		Debugf("BEGIN")
	}
	return &memoryTxn{
		store:  self,
		writes: make(map[string][]byte),
	}, nil
}

func (self *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	self.Delay()
	if self.verbose {
		Debugf("GET %s", key)
	}
	v, ok := self.get(key)
	return v, ok, nil
}

func (self *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	self.Delay()
	if self.verbose {
		Debugf("PUT %s %s", key, string(value))
	}
	v := append([]byte(nil), value...)
	self.lock.Lock()
	self.data[key] = v
	self.lock.Unlock()
	return nil
}

func (self *MemoryStore) get(key string) ([]byte, bool) {
	self.lock.RLock()
	v, ok := self.data[key]
	self.lock.RUnlock()
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

type memoryTxn struct {
	store  *MemoryStore
	writes map[string][]byte
	done   bool
}

func (self *memoryTxn) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if self.done {
		return nil, false, ErrTxnDone
	}
	self.store.Delay()
	if self.store.verbose {
		Debugf("TXN GET %s", key)
	}
	if v, ok := self.writes[key]; ok {
		return append([]byte(nil), v...), true, nil
	}
	v, ok := self.store.get(key)
	return v, ok, nil
}

func (self *memoryTxn) Put(ctx context.Context, key string, value []byte) error {
	if self.done {
		return ErrTxnDone
	}
	self.store.Delay()
	if self.store.verbose {
		Debugf("TXN PUT %s %s", key, string(value))
	}
	self.writes[key] = append([]byte(nil), value...)
	return nil
}

func (self *memoryTxn) Commit(ctx context.Context) error {
	if self.done {
		return errors.Wrap(ErrTxnDone, "commit")
	}
	self.done = true
	self.store.Delay()
	if self.store.verbose {
		Debugf("COMMIT %d writes", len(self.writes))
	}
	self.store.lock.Lock()
	for k, v := range self.writes {
		self.store.data[k] = v
	}
	self.store.lock.Unlock()
	self.writes = nil
	return nil
}

func (self *memoryTxn) Rollback(ctx context.Context) error {
	if self.done {
		return nil
	}
	self.done = true
	self.writes = nil
	return nil
}
