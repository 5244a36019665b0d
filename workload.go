package txbench

import (
	"context"
	"math"
	"strconv"
	"time"

	g "github.com/hhkbp2/txbench/generator"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	OperationRead   = "READ"
	OperationUpdate = "UPDATE"
)

var (
	// PopulateValue is the value every key holds after population.
	PopulateValue = []byte("a")
	// UpdateValue is the sentinel value written by updates.
	UpdateValue = []byte("z")
)

// WorkloadConfig holds the parameters of one benchmark run. It is built once
// before any worker starts and shared read-only by all of them.
//
// Properties to control the workload:
//   scale_factor: table size is 1000 * scale_factor keys (default: 1)
//   zipf_theta: skew of the request distribution in [0, 1) (default: 0)
//   operation_count: operations per transaction (default: 1)
//   update_ratio: probability an operation is an update (default: 0)
//   thread_count: number of worker goroutines (default: 1)
//   duration: measurement window in seconds (default: 10)
//   request_distribution: zipfian, uniform or hotspot (default: zipfian)
//   seed: seed of the worker random sources, 0 for time based (default: 0)
//   target: transactions per second over all workers, 0 for no limit (default: 0)
//   txn.retrylimit: retries of a conflicting transaction (default: 0)
type WorkloadConfig struct {
	TableSize           int64
	ZipfTheta           float64
	OperationCount      int64
	UpdateRatio         float64
	ThreadCount         int
	Duration            time.Duration
	RequestDistribution string
	HotsetFraction      float64
	HotOpnFraction      float64
	Seed                uint64
	TargetTPS           float64
	RetryLimit          int64
	RetryInterval       time.Duration
	PopulateBatchSize   int64

	zipfian *g.ZipfianParams
}

// NewWorkloadConfig parses and validates the workload properties. Any
// returned error is a configuration error.
func NewWorkloadConfig(p Properties) (*WorkloadConfig, error) {
	scaleFactor, err := p.GetFloat64(PropertyScaleFactor, PropertyScaleFactorDefault)
	if err != nil {
		return nil, err
	}
	zipfTheta, err := p.GetFloat64(PropertyZipfTheta, PropertyZipfThetaDefault)
	if err != nil {
		return nil, err
	}
	operationCount, err := p.GetInt64(PropertyOperationCount, PropertyOperationCountDefault)
	if err != nil {
		return nil, err
	}
	updateRatio, err := p.GetFloat64(PropertyUpdateRatio, PropertyUpdateRatioDefault)
	if err != nil {
		return nil, err
	}
	threadCount, err := p.GetInt64(PropertyThreadCount, PropertyThreadCountDefault)
	if err != nil {
		return nil, err
	}
	seconds, err := p.GetFloat64(PropertyDuration, PropertyDurationDefault)
	if err != nil {
		return nil, err
	}
	hotsetFraction, err := p.GetFloat64(HotspotDataFraction, HotspotDataFractionDefault)
	if err != nil {
		return nil, err
	}
	hotOpnFraction, err := p.GetFloat64(HotspotOpnFraction, HotspotOpnFractionDefault)
	if err != nil {
		return nil, err
	}
	seed, err := p.GetUint64(PropertySeed, PropertySeedDefault)
	if err != nil {
		return nil, err
	}
	target, err := p.GetFloat64(PropertyTarget, PropertyTargetDefault)
	if err != nil {
		return nil, err
	}
	retryLimit, err := p.GetInt64(PropertyTxnRetryLimit, PropertyTxnRetryLimitDefault)
	if err != nil {
		return nil, err
	}
	retryInterval, err := p.GetInt64(PropertyTxnRetryInterval, PropertyTxnRetryIntervalDefault)
	if err != nil {
		return nil, err
	}
	batchSize, err := p.GetInt64(PropertyPopulationBatchSize, PropertyPopulationBatchSizeDefault)
	if err != nil {
		return nil, err
	}

	if !(scaleFactor > 0) || math.IsInf(scaleFactor, 0) {
		return nil, errors.Errorf("invalid %s %g, must be > 0", PropertyScaleFactor, scaleFactor)
	}
	if operationCount < 1 {
		return nil, errors.Errorf("invalid %s %d, must be >= 1", PropertyOperationCount, operationCount)
	}
	if !(updateRatio >= 0 && updateRatio <= 1) {
		return nil, errors.Errorf("invalid %s %g, must be in [0, 1]", PropertyUpdateRatio, updateRatio)
	}
	if threadCount < 1 || threadCount > math.MaxInt32 {
		return nil, errors.Errorf("invalid %s %d, must be >= 1", PropertyThreadCount, threadCount)
	}
	if !(seconds > 0) || math.IsInf(seconds, 0) {
		return nil, errors.Errorf("invalid %s %g, must be > 0", PropertyDuration, seconds)
	}
	if !(target >= 0) || math.IsInf(target, 0) {
		return nil, errors.Errorf("invalid %s %g, must be >= 0", PropertyTarget, target)
	}
	if retryLimit < 0 || retryInterval < 0 || batchSize < 0 {
		return nil, errors.Errorf("%s, %s and %s must not be negative",
			PropertyTxnRetryLimit, PropertyTxnRetryInterval, PropertyPopulationBatchSize)
	}

	self := &WorkloadConfig{
		TableSize:           int64(float64(BaseTableSize) * scaleFactor),
		ZipfTheta:           zipfTheta,
		OperationCount:      operationCount,
		UpdateRatio:         updateRatio,
		ThreadCount:         int(threadCount),
		Duration:            SecondsToDuration(seconds),
		RequestDistribution: p.GetDefault(PropertyRequestDistribution, PropertyRequestDistributionDefault),
		HotsetFraction:      hotsetFraction,
		HotOpnFraction:      hotOpnFraction,
		Seed:                seed,
		TargetTPS:           target,
		RetryLimit:          retryLimit,
		RetryInterval:       time.Duration(MillisecondToNanosecond(retryInterval)),
		PopulateBatchSize:   batchSize,
	}
	if err := self.Validate(); err != nil {
		return nil, err
	}
	return self, nil
}

// Validate checks the fields of a config built by hand and precomputes the
// zipfian parameters. It must be called before the config is shared.
func (self *WorkloadConfig) Validate() error {
	switch {
	case self.OperationCount < 1:
		return errors.Errorf("invalid operation count %d, must be >= 1", self.OperationCount)
	case !(self.UpdateRatio >= 0 && self.UpdateRatio <= 1):
		return errors.Errorf("invalid update ratio %g, must be in [0, 1]", self.UpdateRatio)
	case self.ThreadCount < 1:
		return errors.Errorf("invalid thread count %d, must be >= 1", self.ThreadCount)
	case self.Duration <= 0:
		return errors.Errorf("invalid duration %s, must be > 0", self.Duration)
	}
	if self.RequestDistribution == "" {
		self.RequestDistribution = PropertyRequestDistributionDefault
	}
	switch self.RequestDistribution {
	case "zipfian":
		params, err := g.NewZipfianParams(self.TableSize, self.ZipfTheta)
		if err != nil {
			return errors.Wrap(err, "invalid zipfian request distribution")
		}
		self.zipfian = params
	case "uniform", "hotspot":
		if self.TableSize < 1 {
			return errors.Errorf("invalid table size %d, must be >= 1", self.TableSize)
		}
	default:
		return errors.Errorf("unknown request distribution %s", self.RequestDistribution)
	}
	return nil
}

// String returns a one line description for logs.
func (self *WorkloadConfig) String() string {
	return "table_size=" + strconv.FormatInt(self.TableSize, 10) +
		" thread_count=" + strconv.Itoa(self.ThreadCount) +
		" operation_count=" + strconv.FormatInt(self.OperationCount, 10) +
		" update_ratio=" + strconv.FormatFloat(self.UpdateRatio, 'g', -1, 64) +
		" zipf_theta=" + strconv.FormatFloat(self.ZipfTheta, 'g', -1, 64) +
		" request_distribution=" + self.RequestDistribution +
		" duration=" + self.Duration.String()
}

// RoutineState is the state owned by a single worker: its random source,
// key chooser, operation chooser and optional rate limiter. It must never be
// shared between goroutines.
type RoutineState struct {
	ID               int
	Random           *g.Random
	keyChooser       g.IntegerGenerator
	operationChooser *g.DiscreteGenerator
	limiter          *rate.Limiter
}

// InitRoutine creates the state of the worker with the given id.
func (self *WorkloadConfig) InitRoutine(id int) *RoutineState {
	var random *g.Random
	if self.Seed != 0 {
		random = g.NewRandom(self.Seed + uint64(id))
	} else {
		random = g.NewRandomFor(int64(id))
	}

	var keyChooser g.IntegerGenerator
	switch {
	case self.TableSize == 1:
		keyChooser = g.NewConstantIntegerGenerator(1)
	case self.RequestDistribution == "uniform":
		keyChooser = g.NewUniformIntegerGenerator(1, self.TableSize, random)
	case self.RequestDistribution == "hotspot":
		keyChooser = g.NewHotspotIntegerGenerator(1, self.TableSize,
			self.HotsetFraction, self.HotOpnFraction, random)
	default:
		keyChooser = g.NewZipfianGenerator(self.zipfian, random)
	}

	operationChooser := g.NewDiscreteGenerator(random)
	operationChooser.AddValue(1-self.UpdateRatio, OperationRead)
	operationChooser.AddValue(self.UpdateRatio, OperationUpdate)

	var limiter *rate.Limiter
	if self.TargetTPS > 0 {
		perWorker := self.TargetTPS / float64(self.ThreadCount)
		limiter = rate.NewLimiter(rate.Limit(perWorker), 1)
	}

	return &RoutineState{
		ID:               id,
		Random:           random,
		keyChooser:       keyChooser,
		operationChooser: operationChooser,
		limiter:          limiter,
	}
}

// NextKey samples the next key. Choosers draw from [1, table_size]; keys
// are the zero based decimal index.
func (self *RoutineState) NextKey() string {
	return strconv.FormatInt(self.keyChooser.NextInt()-1, 10)
}

// NextOperation decides whether the next operation is a read or an update.
func (self *RoutineState) NextOperation() string {
	return self.operationChooser.NextString()
}

// Throttle blocks until the rate limiter admits another transaction.
func (self *RoutineState) Throttle(ctx context.Context) error {
	if self.limiter == nil {
		return nil
	}
	return self.limiter.Wait(ctx)
}

// TxnStats counts the operations of one transaction attempt.
type TxnStats struct {
	Reads  int64
	Writes int64
}

// DoTransaction runs one transaction: operation_count reads or updates on
// sampled keys, then commit. On failure the transaction is rolled back and
// the returned error names the failed operation.
func (self *WorkloadConfig) DoTransaction(ctx context.Context, store Store, state *RoutineState) (TxnStats, error) {
	var stats TxnStats
	txn, err := store.Begin(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "BEGIN")
	}
	for i := int64(0); i < self.OperationCount; i++ {
		key := state.NextKey()
		switch state.NextOperation() {
		case OperationUpdate:
			if err = txn.Put(ctx, key, UpdateValue); err != nil {
				txn.Rollback(ctx)
				return stats, errors.Wrapf(err, "UPDATE key %s", key)
			}
			stats.Writes++
		default:
			_, found, err := txn.Get(ctx, key)
			if err == nil && !found {
				err = ErrNotFound
			}
			if err != nil {
				txn.Rollback(ctx)
				return stats, errors.Wrapf(err, "READ key %s", key)
			}
			stats.Reads++
		}
	}
	if err = txn.Commit(ctx); err != nil {
		txn.Rollback(ctx)
		return stats, errors.Wrap(err, "COMMIT")
	}
	return stats, nil
}
