package txbench

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// AggregateResult is the outcome of one measured run.
type AggregateResult struct {
	RunID         string
	ThreadCount   int
	Duration      time.Duration
	TotalCommits  int64
	AggregateTPS  float64
	PerWorkerTPS  float64
	WorkerCommits []int64
	Reads         int64
	Writes        int64
	Retries       int64
	// Started is when the workers were launched, Stopped when the stop flag
	// was raised and Finished when the last worker joined.
	Started  time.Time
	Stopped  time.Time
	Finished time.Time
	// Latency is the transaction latency in microseconds over all workers.
	Latency *hdrhistogram.Histogram
}

// Elapsed is the wall-clock time from launch to the last join.
func (self *AggregateResult) Elapsed() time.Duration {
	return self.Finished.Sub(self.Started)
}

// Coordinator owns the stop flag and the per-worker counters of a run. It
// launches the workers, sleeps for the configured duration, raises the flag
// once, joins every worker and only then reads their counters.
type Coordinator struct {
	config *WorkloadConfig
	store  Store
	props  Properties

	// Abort is called once, with the first worker failure. The default logs
	// the failure and exits the process, since a failed transaction
	// invalidates the measurement.
	Abort func(error)

	stop      atomic.Bool
	cancel    context.CancelFunc
	abortOnce sync.Once
	errLock   sync.Mutex
	err       error
}

func NewCoordinator(config *WorkloadConfig, store Store) *Coordinator {
	return &Coordinator{
		config: config,
		store:  store,
		Abort: func(err error) {
			Fatalf("benchmark aborted: %+v", err)
		},
	}
}

// SetMeasurementProperties sets the properties the latency histograms are
// built from.
func (self *Coordinator) SetMeasurementProperties(p Properties) {
	self.props = p
}

// Err returns the failure that aborted the run, if any.
func (self *Coordinator) Err() error {
	self.errLock.Lock()
	defer self.errLock.Unlock()
	return self.err
}

func (self *Coordinator) abort(err error) {
	self.abortOnce.Do(func() {
		self.errLock.Lock()
		self.err = err
		self.errLock.Unlock()
		// drain the other workers
		self.halt()
		if self.Abort != nil {
			self.Abort(err)
		}
	})
}

// halt raises the stop flag and wakes the workers waiting on the limiter.
func (self *Coordinator) halt() {
	self.stop.Store(true)
	if self.cancel != nil {
		self.cancel()
	}
}

// Run runs the benchmark with config against store.
func Run(config *WorkloadConfig, store Store) *AggregateResult {
	return NewCoordinator(config, store).Run()
}

// Run executes one measured run and aggregates the worker counters. An
// invalid config aborts the run before any worker starts.
func (self *Coordinator) Run() *AggregateResult {
	self.abortOnce = sync.Once{}
	self.errLock.Lock()
	self.err = nil
	self.errLock.Unlock()
	self.stop.Store(false)
	self.cancel = nil

	if err := self.config.Validate(); err != nil {
		self.abort(errors.Wrap(err, "invalid workload config"))
		now := time.Now()
		return &AggregateResult{
			RunID:    uuid.NewString(),
			Duration: self.config.Duration,
			Started:  now,
			Stopped:  now,
			Finished: now,
			Latency:  NewLatencyHistogram(self.props),
		}
	}

	threads := self.config.ThreadCount
	stats := make([]*WorkerStats, threads)
	histograms := make([]*hdrhistogram.Histogram, threads)
	for i := 0; i < threads; i++ {
		stats[i] = &WorkerStats{}
		histograms[i] = NewLatencyHistogram(self.props)
	}

	result := &AggregateResult{
		RunID:       uuid.NewString(),
		ThreadCount: threads,
		Duration:    self.config.Duration,
	}
	Infof("run %s: %s", result.RunID, self.config)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	self.cancel = cancel
	var wg sync.WaitGroup
	result.Started = time.Now()
	for i := 0; i < threads; i++ {
		w := NewWorker(i, self.config, self.store, &self.stop, stats[i], histograms[i], self.abort)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
	}

	self.sleep(self.config.Duration)
	self.halt()
	result.Stopped = time.Now()
	wg.Wait()
	result.Finished = time.Now()

	// every worker has joined, so its counters are final and visible here
	result.WorkerCommits = make([]int64, threads)
	result.Latency = NewLatencyHistogram(self.props)
	for i, s := range stats {
		result.WorkerCommits[i] = s.Commits
		result.TotalCommits += s.Commits
		result.Reads += s.Reads
		result.Writes += s.Writes
		result.Retries += s.Retries
		result.Latency.Merge(histograms[i])
	}
	result.AggregateTPS = float64(result.TotalCommits) / self.config.Duration.Seconds()
	result.PerWorkerTPS = result.AggregateTPS / float64(threads)
	Infof("run %s finished: %d commits in %s", result.RunID, result.TotalCommits, result.Elapsed())
	return result
}

// sleep waits for d, returning early if the run is aborted.
func (self *Coordinator) sleep(d time.Duration) {
	deadline := time.Now().Add(d)
	step := 10 * time.Millisecond
	for {
		left := time.Until(deadline)
		if left <= 0 || self.stop.Load() {
			return
		}
		if left < step {
			time.Sleep(left)
		} else {
			time.Sleep(step)
		}
	}
}
