package shifu

// Algorithm names the model family a job trains or scores with
type Algorithm string

const (
	// AlgNeuralNet is a fully-connected feed-forward neural network
	AlgNeuralNet Algorithm = "NN"
	// AlgSVM is a linear support vector machine
	AlgSVM Algorithm = "SVM"
	// AlgLogisticRegression is a logistic regression model
	AlgLogisticRegression Algorithm = "LR"
	// AlgGBDT is a gradient-boosted decision tree ensemble
	AlgGBDT Algorithm = "GBT"
	// AlgRandomForest is a random forest decision tree ensemble
	AlgRandomForest Algorithm = "RF"
)

// IsTreeEnsemble returns true for the tree-ensemble algorithm families,
// which use composite models with per-tree weighting
func (a Algorithm) IsTreeEnsemble() bool {
	return a == AlgGBDT || a == AlgRandomForest
}

// EnsembleKind distinguishes how a tree ensemble weights and combines its
// per-tree outputs
type EnsembleKind int

const (
	// RandomForest weights every tree uniformly and averages
	RandomForest EnsembleKind = iota
	// GradientBoosted weights the first tree fully and every subsequent tree
	// by the learning rate, summing the results
	GradientBoosted
)

// A Model is anything which can score a vectorized record. Models are
// immutable during scoring and safe for concurrent Compute calls.
type Model interface {
	// InputCount returns the input width this model expects
	InputCount() int
	// Compute runs the model against one input vector, producing one or more
	// outputs
	Compute(input []float64) ([]float64, error)
}
