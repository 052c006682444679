package shifu

// DryRunError is the sentinel train/test error reported for dry-run and
// first-iteration no-op computations
const DryRunError = -1.0

// Params is one worker's contribution for a single iteration: the local
// gradient vector plus train/validation errors. Weights are always empty in
// reports because they are coordinator-owned; workers report only gradients.
type Params struct {
	Gradients  []float64
	TrainError float64
	TestError  float64
	Weights    []float64
	TrainCount int64
}

// EmptyParams returns the no-op report used for dry runs and first
// iterations: zero-length gradients and weights, sentinel error values
func EmptyParams() *Params {
	return &Params{
		Gradients:  []float64{},
		Weights:    []float64{},
		TrainError: DryRunError,
		TestError:  DryRunError,
	}
}
