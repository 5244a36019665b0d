package txbench

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/pkg/errors"
)

type WorkerState int32

const (
	WorkerIdle WorkerState = iota
	WorkerRunning
	WorkerStopping
	WorkerDone
)

func (self WorkerState) String() string {
	switch self {
	case WorkerIdle:
		return "IDLE"
	case WorkerRunning:
		return "RUNNING"
	case WorkerStopping:
		return "STOPPING"
	case WorkerDone:
		return "DONE"
	default:
		return "UNKNOWN_STATE"
	}
}

// WorkerStats is owned by exactly one worker while it runs. The padding
// keeps the counters of neighbouring workers off each other's cache lines.
type WorkerStats struct {
	_       [64]byte
	Commits int64
	Reads   int64
	Writes  int64
	Retries int64
	_       [64]byte
}

// Worker runs transactions against a shared store until the stop flag is
// raised. Every worker owns its counters, histogram and routine state; the
// only shared mutable value it reads is the stop flag.
type Worker struct {
	id        int
	config    *WorkloadConfig
	store     Store
	stop      *atomic.Bool
	stats     *WorkerStats
	histogram *hdrhistogram.Histogram
	abort     func(error)
	state     atomic.Int32
}

// NewWorker creates a worker. abort is called with the error that made the
// worker give up; the worker exits right after.
func NewWorker(
	id int, config *WorkloadConfig, store Store, stop *atomic.Bool,
	stats *WorkerStats, histogram *hdrhistogram.Histogram, abort func(error)) *Worker {

	return &Worker{
		id:        id,
		config:    config,
		store:     store,
		stop:      stop,
		stats:     stats,
		histogram: histogram,
		abort:     abort,
	}
}

func (self *Worker) ID() int {
	return self.id
}

func (self *Worker) State() WorkerState {
	return WorkerState(self.state.Load())
}

func (self *Worker) setState(state WorkerState) {
	self.state.Store(int32(state))
}

// Run is the worker loop. The stop flag is checked only between
// transactions, so a transaction is never left half applied. Cancelling ctx
// interrupts the rate limiter wait; running transactions ignore it.
func (self *Worker) Run(ctx context.Context) {
	defer self.setState(WorkerDone)
	state := self.config.InitRoutine(self.id)
	txnCtx := context.WithoutCancel(ctx)
	self.setState(WorkerRunning)
	Debugf("worker %d running", self.id)
	for {
		err := state.Throttle(ctx)
		if self.stop.Load() || ctx.Err() != nil {
			self.setState(WorkerStopping)
			break
		}
		if err != nil {
			self.abort(errors.Wrapf(err, "worker %d throttle", self.id))
			break
		}
		if err := self.runTransaction(txnCtx, state); err != nil {
			self.abort(errors.Wrapf(err, "worker %d", self.id))
			break
		}
	}
	Debugf("worker %d done, %d commits", self.id, self.stats.Commits)
}

// runTransaction runs one transaction, retrying conflicts within the
// configured budget, and accounts for it once it commits.
func (self *Worker) runTransaction(ctx context.Context, state *RoutineState) error {
	start := time.Now()
	var retries int64
	for {
		txnStats, err := self.config.DoTransaction(ctx, self.store, state)
		if err == nil {
			self.stats.Commits++
			self.stats.Reads += txnStats.Reads
			self.stats.Writes += txnStats.Writes
			self.stats.Retries += retries
			latency := NanosecondToMicrosecond(int64(time.Since(start)))
			if self.histogram != nil {
				// latencies past the trackable range count at the top bucket
				if max := self.histogram.HighestTrackableValue(); latency > max {
					latency = max
				}
				if err := self.histogram.RecordValue(latency); err != nil {
					Warnf("worker %d dropped latency %d us: %s", self.id, latency, err)
				}
			}
			return nil
		}
		if !errors.Is(err, ErrConflict) || retries >= self.config.RetryLimit {
			return err
		}
		retries++
		Verbosef("worker %d retry %d after: %s", self.id, retries, err)
		if self.config.RetryInterval > 0 {
			// sleep for a random time in [0.8, 1.2) * RetryInterval
			factor := 0.8 + 0.4*state.Random.NextFloat64()
			time.Sleep(time.Duration(float64(self.config.RetryInterval) * factor))
		}
	}
}
