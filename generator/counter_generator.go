package generator

import (
	"strconv"
	"sync/atomic"
)

// CounterGenerator generates a sequence of integers startCount, startCount+1, ...
// It is safe for concurrent use.
type CounterGenerator struct {
	count   atomic.Int64
	lastInt atomic.Int64
}

func NewCounterGenerator(startCount int64) *CounterGenerator {
	g := &CounterGenerator{}
	g.count.Store(startCount - 1)
	g.lastInt.Store(startCount - 1)
	return g
}

func (self *CounterGenerator) NextInt() int64 {
	ret := self.count.Add(1)
	self.lastInt.Store(ret)
	return ret
}

func (self *CounterGenerator) LastInt() int64 {
	return self.lastInt.Load()
}

func (self *CounterGenerator) NextString() string {
	return strconv.FormatInt(self.NextInt(), 10)
}

func (self *CounterGenerator) LastString() string {
	return strconv.FormatInt(self.LastInt(), 10)
}

func (self *CounterGenerator) Mean() float64 {
	panic("unsupported operation")
}
