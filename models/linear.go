package models

import (
	"github.com/xiangpingbu/shifu"
	"github.com/xiangpingbu/shifu/errors"
)

// Linear is a weight-vector-plus-bias model covering two algorithm kinds:
// an SVM computes the raw margin, logistic regression applies the sigmoid
// link to it. The flat vector layout is the weights followed by a trailing
// bias, matching the least-squares engine.
type Linear struct {
	// Kind is the algorithm this model scores as, SVM or LR
	Kind shifu.Algorithm `msgpack:"kind"`
	// Weights holds one weight per input
	Weights []float64 `msgpack:"weights"`
	// Bias is the constant term
	Bias float64 `msgpack:"bias"`
}

// CreateLinear builds a linear model of the given kind
func CreateLinear(kind shifu.Algorithm, weights []float64, bias float64) (*Linear, error) {
	if kind != shifu.AlgSVM && kind != shifu.AlgLogisticRegression {
		return nil, errors.UnsupportedAlgorithmError{Alg: string(kind)}
	}
	if len(weights) == 0 {
		return nil, errors.InvalidArchitectureError{Reason: "a linear model needs at least one weight"}
	}
	return &Linear{
		Kind:    kind,
		Weights: append([]float64{}, weights...),
		Bias:    bias,
	}, nil
}

// CreateLinearFromVector builds a linear model from a flat trained vector,
// splitting off the trailing bias
func CreateLinearFromVector(kind shifu.Algorithm, vector []float64) (*Linear, error) {
	if len(vector) < 2 {
		return nil, errors.InvalidArchitectureError{Reason: "a flat linear vector holds at least one weight and a trailing bias"}
	}
	return CreateLinear(kind, vector[:len(vector)-1], vector[len(vector)-1])
}

// InputCount returns the input width this model expects
func (m *Linear) InputCount() int {
	return len(m.Weights)
}

// Compute scores one input vector, producing a single output
func (m *Linear) Compute(input []float64) ([]float64, error) {
	if len(input) != len(m.Weights) {
		return nil, errors.IncompatibleRecordError{}
	}
	margin := m.Bias
	for i, v := range input {
		margin += m.Weights[i] * v
	}
	if m.Kind == shifu.AlgLogisticRegression {
		return []float64{sigmoid(margin)}, nil
	}
	return []float64{margin}, nil
}

// FlatWeights returns the weights followed by the trailing bias
func (m *Linear) FlatWeights() []float64 {
	flat := make([]float64, 0, len(m.Weights)+1)
	flat = append(flat, m.Weights...)
	return append(flat, m.Bias)
}

// SetFlatWeights replaces the weights and bias from a flat vector of
// InputCount+1 values
func (m *Linear) SetFlatWeights(weights []float64) error {
	if len(weights) != len(m.Weights)+1 {
		return errors.InvalidArchitectureError{Reason: "flat vector length does not match this model's input width"}
	}
	copy(m.Weights, weights[:len(weights)-1])
	m.Bias = weights[len(weights)-1]
	return nil
}
