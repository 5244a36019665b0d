package txbench

const (
	// Workload
	// The number of keys in the table when the scale factor is 1.
	BaseTableSize = int64(1000)
	// The multiplier applied to `BaseTableSize` to get the table size.
	PropertyScaleFactor        = "scale_factor"
	PropertyScaleFactorDefault = "1"
	// The skew of the zipfian request distribution, in [0, 1).
	// 0 is uniform, values closer to 1 are more skewed.
	PropertyZipfTheta        = "zipf_theta"
	PropertyZipfThetaDefault = "0"
	// The number of operations performed in each transaction.
	PropertyOperationCount        = "operation_count"
	PropertyOperationCountDefault = "1"
	// The probability that an operation is an update rather than a read.
	PropertyUpdateRatio        = "update_ratio"
	PropertyUpdateRatioDefault = "0"
	// The number of client goroutines to run.
	PropertyThreadCount        = "thread_count"
	PropertyThreadCountDefault = "1"
	// The wall-clock length of the measurement window in seconds.
	PropertyDuration        = "duration"
	PropertyDurationDefault = "10"
	// The name of the property for the distribution of requests
	// across the keyspace. Options are "zipfian", "uniform" and "hotspot".
	PropertyRequestDistribution        = "request_distribution"
	PropertyRequestDistributionDefault = "zipfian"
	// Percentage data items that constitute the hot set.
	HotspotDataFraction        = "hotspotdatafraction"
	HotspotDataFractionDefault = "0.2"
	// Percentage opertions that access the hot set.
	HotspotOpnFraction        = "hotspotopnfraction"
	HotspotOpnFractionDefault = "0.8"
	// The seed for the per-worker random sources. 0 seeds every worker from
	// its identity and the wall clock.
	PropertySeed        = "seed"
	PropertySeedDefault = "0"
	// Target number of transactions per second over all workers. 0 means
	// no throttling.
	PropertyTarget        = "target"
	PropertyTargetDefault = "0"
	// How many times to retry a transaction the store reported as conflicting.
	PropertyTxnRetryLimit        = "txn.retrylimit"
	PropertyTxnRetryLimitDefault = "0"
	// On average, how long to wait between the retries, in milliseconds.
	PropertyTxnRetryInterval        = "txn.retryinterval"
	PropertyTxnRetryIntervalDefault = "10"

	// Population
	// How many keys are written per population transaction. 0 writes the
	// whole table in a single transaction.
	PropertyPopulationBatchSize        = "population.batchsize"
	PropertyPopulationBatchSizeDefault = "0"
	// Skip the population phase of the run command.
	PropertySkipLoad        = "skip_load"
	PropertySkipLoadDefault = "false"

	// Store
	// The store binding to be used.
	PropertyDB        = "db"
	PropertyDBDefault = "memory"
	// The path of an embedded store.
	PropertyStorePath        = "store.path"
	PropertyStorePathDefault = "/tmp/txbench"
	// Whether an embedded store is created when the path does not exist.
	PropertyStoreCreateIfMissing        = "store.createifmissing"
	PropertyStoreCreateIfMissingDefault = "true"

	// MemoryStore
	ConfigMemoryVerbose               = "memory.verbose"
	ConfigMemoryVerboseDefault        = "false"
	ConfigMemorySimulateDelay         = "memory.simulatedelay"
	ConfigMemorySimulateDelayDefault  = "0"
	ConfigMemoryRandomizeDelay        = "memory.randomizedelay"
	ConfigMemoryRandomizeDelayDefault = "true"

	// Client
	// The log level, one of verbose, debug, info, warn, error and quiet.
	PropertyLogLevel        = "log_level"
	PropertyLogLevelDefault = "info"
	// The exporter class to be used.
	PropertyExporter        = "exporter"
	PropertyExporterDefault = "TextMeasurementExporter"
	// If set to the path of a file, this file will be written instead of stdout.
	// strftime patterns such as %Y%m%d-%H%M%S are expanded with the start time.
	PropertyExportFile = "exportfile"

	// measurement
	// The name of the property for deciding what percentile values to output.
	PropertyPercentiles = "hdrhistogram.percentiles"
	// The default value of `PropertyPercentiles`
	PropertyPercentilesDefault = "50,95,99"
	// The largest latency the histograms track, in microseconds.
	PropertyHdrHistogramMax        = "hdrhistogram.max"
	PropertyHdrHistogramMaxDefault = "60000000"
	// The number of significant figures the histograms keep.
	PropertyHdrHistogramSig        = "hdrhistogram.sig"
	PropertyHdrHistogramSigDefault = "3"
)
