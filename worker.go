package shifu

// An Iteration is the per-round input a coordinator supplies to one worker:
// the current global weight vector plus the round's control signals. The
// seed is passed explicitly so crossover reseeding stays reproducible; the
// worker never reads the clock itself.
type Iteration struct {
	// Weights is the coordinator-issued global weight vector. A nil vector
	// on a non-first iteration is a missing coordinator result; the worker
	// logs a warning and emits no report for the round.
	Weights []float64
	// First marks the first iteration of a job, which is always a no-op so
	// every worker starts real optimization from identical weights
	First bool
	// Dry forces a no-op iteration regardless of worker configuration
	Dry bool
	// Seed reseeds the engine's randomness when crossover mode is enabled
	Seed int64
}

// A TrainingWorker is one participant in a bulk-synchronous iterative
// training job. Workers execute strictly sequentially: a load phase, then
// repeated compute rounds driven by an external coordinator. Each worker
// exclusively owns its Datasets and GradientEngine; peers share no state.
type TrainingWorker interface {
	// Init loads configuration and constructs the worker's Sampler and
	// Datasets. Configuration or dataset I/O failure here is fatal and
	// aborts worker startup.
	Init() error
	// Ingest routes one raw string row through normalization and sampling
	// into the training or validation partition. Valid only while loading.
	Ingest(row []string) error
	// FinalizeLoad freezes both partitions and logs load statistics,
	// transitioning the worker from loading to idle
	FinalizeLoad() error
	// Compute runs one iteration: load the coordinator's weights, run the
	// configured local epochs, report gradients and errors. Dry-run and
	// first iterations return the empty no-op report; a missing coordinator
	// weight vector returns no report at all (nil, nil).
	Compute(it *Iteration) (*Params, error)
	// Close disposes both partitions, releasing every disk handle, and logs
	// final statistics. Close is idempotent and must run on all exit paths.
	Close() error
	// ID returns this worker's unique identity, used for log correlation
	ID() string
	// State returns the worker's current lifecycle state
	State() string
	// Architecture returns the model architecture the worker derived from
	// its configuration. Valid after Init.
	Architecture() Architecture
	// Statistics returns the worker's runtime statistics
	Statistics() TrainingStatistics
}
