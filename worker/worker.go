// Package worker implements the training-side participant of a
// bulk-synchronous job: a load phase which samples raw rows into training
// and validation partitions, followed by coordinator-driven gradient
// iterations over the frozen data.
package worker

import (
	"math/rand"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/looplab/fsm"

	"github.com/xiangpingbu/shifu"
	"github.com/xiangpingbu/shifu/config"
	"github.com/xiangpingbu/shifu/dataset"
	"github.com/xiangpingbu/shifu/engine"
	"github.com/xiangpingbu/shifu/errors"
	"github.com/xiangpingbu/shifu/logging"
	"github.com/xiangpingbu/shifu/sampler"
	"github.com/xiangpingbu/shifu/schema"
	"github.com/xiangpingbu/shifu/stats"
)

// Lifecycle states a worker moves through. Every worker runs created →
// loading → ready, then alternates ready ↔ computing until it is closed.
const (
	StateCreated   = "created"
	StateLoading   = "loading"
	StateReady     = "ready"
	StateComputing = "computing"
	StateClosed    = "closed"
)

const (
	eventInit     = "init"
	eventFinalize = "finalize"
	eventCompute  = "compute"
	eventComplete = "complete"
	eventClose    = "close"
)

// Conf configures a training worker
type Conf struct {
	ID      string                 // worker identity for log correlation; empty generates one
	Model   *config.ModelConfig    // job configuration (required)
	Columns []*config.ColumnConfig // column metadata (required)
	Props   *config.RuntimeProps   // runtime properties; nil loads environment defaults
	Engine  shifu.EngineFactory    // gradient kernel; nil uses the least-squares engine
	Seed    int64                  // seeds sampling randomness; zero draws from the clock
}

func ensureDefaults(conf *Conf) error {
	if conf.Model == nil {
		return errors.MissingConfigError{Name: "ModelConfig"}
	}
	if len(conf.Columns) == 0 {
		return errors.MissingConfigError{Name: "ColumnConfig"}
	}
	if conf.Props == nil {
		props, err := config.LoadRuntimeProps("")
		if err != nil {
			return err
		}
		conf.Props = props
	}
	if conf.Engine == nil {
		conf.Engine = engine.CreateLeastSquares
	}
	if len(conf.ID) == 0 {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		conf.ID = id.String()
	}
	if conf.Seed == 0 {
		conf.Seed = time.Now().UnixNano()
	}
	return nil
}

// worker is the single implementation of shifu.TrainingWorker. Workers are
// driven sequentially by one goroutine; they do not lock.
type worker struct {
	id          string
	conf        *Conf
	log         *logging.SugaredLoggerOnWith
	lifecycle   *fsm.FSM
	statistics  *stats.TrainStatistics
	vectorizer  *schema.Vectorizer
	sampler     shifu.Sampler
	training    shifu.Dataset
	validation  shifu.Dataset
	engine      shifu.GradientEngine
	arch        shifu.Architecture
	rng         *rand.Rand
	baggingRate float64
	fixInitial  bool
	epochs      int
	dryRun      bool
	crossOver   bool
}

// CreateWorker builds a training worker in the created state. Nothing is
// allocated until Init.
func CreateWorker(conf *Conf) (shifu.TrainingWorker, error) {
	if err := ensureDefaults(conf); err != nil {
		return nil, err
	}
	w := &worker{
		id:         conf.ID,
		conf:       conf,
		log:        logging.WithWorker(conf.ID),
		statistics: stats.CreateTrainStatistics(),
	}
	w.lifecycle = fsm.NewFSM(
		StateCreated,
		fsm.Events{
			{Name: eventInit, Src: []string{StateCreated}, Dst: StateLoading},
			{Name: eventFinalize, Src: []string{StateLoading}, Dst: StateReady},
			{Name: eventCompute, Src: []string{StateReady}, Dst: StateComputing},
			{Name: eventComplete, Src: []string{StateComputing}, Dst: StateReady},
			{Name: eventClose, Src: []string{StateCreated, StateLoading, StateReady, StateComputing}, Dst: StateClosed},
		},
		fsm.Callbacks{
			eventInit: func(e *fsm.Event) {
				w.log.Infof("worker state is %s", e.FSM.Current())
			},
			eventFinalize: func(e *fsm.Event) {
				w.log.Infof("worker state is %s", e.FSM.Current())
			},
			eventClose: func(e *fsm.Event) {
				w.log.Infof("worker state is %s", e.FSM.Current())
			},
		},
	)
	return w, nil
}

// transition fires a lifecycle event, mapping rejection to a typed error
// naming the operation a caller misused
func (w *worker) transition(op string, event string) error {
	if err := w.lifecycle.Event(event); err != nil {
		return errors.InvalidTransitionError{Op: op, State: w.lifecycle.Current()}
	}
	return nil
}

// Init derives the model architecture from configuration and constructs the
// worker's sampler and datasets
func (w *worker) Init() error {
	if err := w.transition("Init", eventInit); err != nil {
		return err
	}
	mc := w.conf.Model
	props := w.conf.Props

	vectorizer, err := schema.CreateVectorizer(mc, w.conf.Columns)
	if err != nil {
		return err
	}
	w.vectorizer = vectorizer

	params, err := mc.Train.DecodeParams()
	if err != nil {
		return err
	}
	if params.NumHiddenLayers > 0 && len(params.NumHiddenNodes) != params.NumHiddenLayers {
		return errors.InvalidArchitectureError{Reason: "hidden node counts do not match the hidden layer count"}
	}
	w.arch = shifu.Architecture{
		InputCount:   vectorizer.InputCount(),
		OutputCount:  vectorizer.OutputCount(),
		HiddenCounts: params.NumHiddenNodes,
		Activations:  params.ActivationFunc,
		LearningRate: params.LearningRate,
		CrossOver:    mc.Train.IsCrossOver || props.CrossOver,
	}

	strategy := shifu.TieredStrategy
	var budget int64
	if mc.Train.TrainOnDisk || props.TrainOnDisk {
		strategy = shifu.DiskStrategy
	} else {
		budget, err = dataset.AvailableMemoryBudget(props.MemoryFraction)
		if err != nil {
			return err
		}
	}
	validRate := mc.Train.ValidSetRate
	w.training, err = dataset.Create(strategy, &dataset.Conf{
		InputCount:  w.arch.InputCount,
		IdealCount:  w.arch.OutputCount,
		MemoryBytes: int64(float64(budget) * (1 - validRate)),
		TempDir:     props.TempDir,
	})
	if err != nil {
		return err
	}
	w.validation, err = dataset.Create(strategy, &dataset.Conf{
		InputCount:  w.arch.InputCount,
		IdealCount:  w.arch.OutputCount,
		MemoryBytes: int64(float64(budget) * validRate),
		TempDir:     props.TempDir,
	})
	if err != nil {
		return err
	}

	w.sampler = sampler.Create(&sampler.Conf{
		ValidationRate:         validRate,
		FixInitialInput:        mc.Train.FixInitialInput,
		BaggingWithReplacement: mc.Train.BaggingWithReplacement,
		PoissonSampling:        props.PoissonSampling,
		Training:               w.training,
		Validation:             w.validation,
		Seed:                   w.conf.Seed,
	})

	w.rng = rand.New(rand.NewSource(w.conf.Seed))
	w.baggingRate = mc.Train.BaggingSampleRate
	if w.baggingRate <= 0 || w.baggingRate > 1 {
		w.baggingRate = 1
	}
	w.fixInitial = mc.Train.FixInitialInput
	w.epochs = mc.Train.EpochsPerIteration
	if w.epochs <= 0 {
		w.epochs = props.EpochsPerIteration
	}
	w.dryRun = props.DryRun
	w.crossOver = w.arch.CrossOver

	w.statistics.Start()
	w.log.Infof("initialized for %d inputs and %d outputs with strategy %d", w.arch.InputCount, w.arch.OutputCount, strategy)
	return nil
}

// Ingest routes one raw row into a partition. Rows which cannot be
// vectorized are counted as seen and skipped; sampling decisions which drop
// a row are not errors.
func (w *worker) Ingest(row []string) error {
	if !w.lifecycle.Is(StateLoading) {
		return errors.InvalidTransitionError{Op: "Ingest", State: w.lifecycle.Current()}
	}
	w.statistics.RecordSeen()

	inputs, ideal, err := w.vectorizer.Vectorize(row)
	if err != nil {
		w.log.Warnf("skipping row: %v", err)
		return nil
	}
	rec := shifu.NewRecord(inputs, ideal)
	hash := dataset.Fingerprint(rec)

	// bagging gate: deterministic by record hash when inputs are fixed,
	// random otherwise
	if w.fixInitial {
		if hash%100 >= uint64(w.baggingRate*100) {
			return nil
		}
	} else if w.rng.Float64() >= w.baggingRate {
		return nil
	}

	placement := w.sampler.Place(hash, rec)
	if !placement.Emit {
		return nil
	}
	rec.Significance *= placement.SignificanceScale
	if placement.FromPosition >= 0 {
		if err := w.readCombined(placement.FromPosition, rec); err != nil {
			return err
		}
	}
	target := w.training
	if placement.Partition == shifu.ValidationPartition {
		target = w.validation
	}
	if err := target.Append(rec); err != nil {
		return err
	}
	w.statistics.RecordSampled()
	return nil
}

// readCombined reads the record at a position in the combined
// training+validation range, training positions first
func (w *worker) readCombined(position int64, rec *shifu.Record) error {
	if position < w.training.Count() {
		return w.training.ReadAt(position, rec)
	}
	return w.validation.ReadAt(position-w.training.Count(), rec)
}

// FinalizeLoad freezes both partitions and logs load statistics
func (w *worker) FinalizeLoad() error {
	if err := w.transition("FinalizeLoad", eventFinalize); err != nil {
		return err
	}
	if err := w.training.FinalizeLoad(); err != nil {
		return err
	}
	if err := w.validation.FinalizeLoad(); err != nil {
		return err
	}
	w.log.Infof("loaded %d of %d records: %d training (%d in memory, %d on disk), %d validation",
		w.statistics.GetNumRecordsSampled(), w.statistics.GetNumRecordsSeen(),
		w.training.Count(), w.training.MemoryCount(), w.training.DiskCount(),
		w.validation.Count())
	return nil
}

// Compute runs one iteration against the coordinator-issued weights
func (w *worker) Compute(it *shifu.Iteration) (*shifu.Params, error) {
	if err := w.transition("Compute", eventCompute); err != nil {
		return nil, err
	}
	defer func() {
		if w.lifecycle.Is(StateComputing) {
			_ = w.lifecycle.Event(eventComplete)
		}
	}()
	w.statistics.StartIteration()
	defer w.statistics.EndIteration()

	if w.dryRun || it.Dry || it.First {
		return shifu.EmptyParams(), nil
	}
	if it.Weights == nil {
		w.log.Warnf("no weights received from the coordinator, skipping iteration %d", w.statistics.GetNumIterations())
		return nil, nil
	}

	if w.engine == nil {
		eng, err := w.conf.Engine(w.training, w.validation, w.arch)
		if err != nil {
			return nil, err
		}
		w.engine = eng
	}
	if w.crossOver {
		w.engine.Reseed(it.Seed)
	}
	w.engine.SetWeights(it.Weights)

	var trainError float64
	var err error
	for epoch := 0; epoch < w.epochs; epoch++ {
		trainError, err = w.engine.RunEpoch()
		if err != nil {
			return nil, err
		}
	}
	testError := trainError
	if w.validation.Count() > 0 {
		testError, err = w.engine.ValidationError()
		if err != nil {
			return nil, err
		}
	}
	w.statistics.RecordErrors(trainError, testError)
	logging.WithWorkerAndIteration(w.id, w.statistics.GetNumIterations()).Infof(
		"train error %f, validation error %f", trainError, testError)

	// weights stay empty in reports: they are coordinator-owned
	return &shifu.Params{
		Gradients:  w.engine.Gradients(),
		TrainError: trainError,
		TestError:  testError,
		Weights:    []float64{},
		TrainCount: w.training.Count(),
	}, nil
}

// Close disposes both partitions and freezes statistics. Close is idempotent.
func (w *worker) Close() error {
	if w.lifecycle.Is(StateClosed) {
		return nil
	}
	if err := w.transition("Close", eventClose); err != nil {
		return err
	}
	var result *multierror.Error
	if w.training != nil {
		result = multierror.Append(result, w.training.Dispose())
	}
	if w.validation != nil {
		result = multierror.Append(result, w.validation.Dispose())
	}
	w.statistics.Finish()
	w.log.Infof("closed after %s and %d iterations", w.statistics.GetRuntime(), w.statistics.GetNumIterations())
	return result.ErrorOrNil()
}

// ID returns this worker's unique identity
func (w *worker) ID() string {
	return w.id
}

// State returns the worker's current lifecycle state
func (w *worker) State() string {
	return w.lifecycle.Current()
}

// Architecture returns the model architecture derived from configuration
func (w *worker) Architecture() shifu.Architecture {
	return w.arch
}

// Statistics returns the worker's runtime statistics
func (w *worker) Statistics() shifu.TrainingStatistics {
	return w.statistics
}
