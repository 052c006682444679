package shifu

// Architecture describes the shape of the model a GradientEngine trains,
// derived from the train configuration
type Architecture struct {
	InputCount   int
	OutputCount  int
	HiddenCounts []int
	Activations  []string
	LearningRate float64
	// CrossOver randomizes train/validation crossover per iteration rather
	// than fixing it for the whole job
	CrossOver bool
}

// A GradientEngine is the opaque numeric kernel which computes gradients and
// errors for a model over a worker's data. Engines are constructed once per
// job, bound to the worker's training and validation partitions, and reused
// across iterations.
type GradientEngine interface {
	// SetWeights loads a weight vector into the engine
	SetWeights(weights []float64)
	// Weights returns the engine's current weight vector
	Weights() []float64
	// RunEpoch performs one local optimization epoch over the training
	// partition and returns the running training error
	RunEpoch() (float64, error)
	// Gradients returns the gradient vector accumulated by the most recent
	// epoch
	Gradients() []float64
	// ValidationError computes the error of the current weights over a full
	// pass of the validation partition
	ValidationError() (float64, error)
	// Reseed replaces the engine's source of randomness. Passed explicitly
	// per iteration so that crossover behavior is reproducible in tests.
	Reseed(seed int64)
}

// An EngineFactory constructs a GradientEngine bound to a worker's training
// and validation partitions
type EngineFactory func(training Dataset, validation Dataset, arch Architecture) (GradientEngine, error)
