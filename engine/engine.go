// Package engine provides the reference GradientEngine: a
// significance-weighted least-squares kernel over a linear model. Any kernel
// satisfying the root interface plugs into a worker in its place.
package engine

import (
	"math/rand"

	"github.com/xiangpingbu/shifu"
	"github.com/xiangpingbu/shifu/errors"
)

// DefaultLearningRate is used when the architecture does not supply one
const DefaultLearningRate = 0.1

// WeightCount returns the weight vector length the least-squares kernel uses
// for an architecture: one weight per input plus a trailing bias
func WeightCount(arch shifu.Architecture) int {
	return arch.InputCount + 1
}

// leastSquares trains a linear model by gradient descent on the weighted
// mean squared error. Reported gradients are pre-scaled by the learning
// rate, so an aggregator applying a plain averaged step descends at the
// configured rate.
type leastSquares struct {
	training   shifu.Dataset
	validation shifu.Dataset
	rate       float64
	crossOver  bool
	weights    []float64
	gradients  []float64
	rng        *rand.Rand
}

// CreateLeastSquares builds a least-squares engine bound to a worker's
// training and validation partitions. It satisfies shifu.EngineFactory.
func CreateLeastSquares(training shifu.Dataset, validation shifu.Dataset, arch shifu.Architecture) (shifu.GradientEngine, error) {
	if training == nil {
		return nil, errors.MissingConfigError{Name: "training Dataset"}
	}
	if validation == nil {
		return nil, errors.MissingConfigError{Name: "validation Dataset"}
	}
	rate := arch.LearningRate
	if rate <= 0 {
		rate = DefaultLearningRate
	}
	count := WeightCount(arch)
	return &leastSquares{
		training:   training,
		validation: validation,
		rate:       rate,
		crossOver:  arch.CrossOver,
		weights:    make([]float64, count),
		gradients:  make([]float64, count),
		rng:        rand.New(rand.NewSource(0)),
	}, nil
}

// SetWeights loads a weight vector into the engine. The engine keeps its own
// copy; the caller's slice is never retained.
func (e *leastSquares) SetWeights(weights []float64) {
	for i := range e.weights {
		e.weights[i] = 0
	}
	copy(e.weights, weights)
}

// Weights returns a copy of the engine's current weight vector
func (e *leastSquares) Weights() []float64 {
	weights := make([]float64, len(e.weights))
	copy(weights, e.weights)
	return weights
}

// Gradients returns a copy of the gradient vector accumulated by the most
// recent epoch, pre-scaled by the learning rate
func (e *leastSquares) Gradients() []float64 {
	gradients := make([]float64, len(e.gradients))
	copy(gradients, e.gradients)
	return gradients
}

// Reseed replaces the engine's source of randomness
func (e *leastSquares) Reseed(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
}

// RunEpoch performs one gradient-descent epoch over the training partition
// and returns its weighted mean squared error under the pre-step weights.
// With crossover enabled, half of all epochs (by seeded draw) train over the
// validation partition instead, so a static split does not overfit.
func (e *leastSquares) RunEpoch() (float64, error) {
	train := e.training
	if e.crossOver && e.validation.Count() > 0 && e.rng.Float64() < 0.5 {
		train = e.validation
	}
	for i := range e.gradients {
		e.gradients[i] = 0
	}
	var totalError, totalSignificance float64
	err := train.Scan(func(rec *shifu.Record) error {
		residual := e.predict(rec.Inputs) - rec.Ideal[0]
		totalError += rec.Significance * residual * residual
		totalSignificance += rec.Significance
		scale := 2 * rec.Significance * residual
		for j, v := range rec.Inputs {
			e.gradients[j] += scale * v
		}
		e.gradients[len(e.gradients)-1] += scale
		return nil
	})
	if err != nil {
		return 0, err
	}
	if totalSignificance == 0 {
		return 0, nil
	}
	for j := range e.gradients {
		e.gradients[j] = e.rate * e.gradients[j] / totalSignificance
		e.weights[j] -= e.gradients[j]
	}
	return totalError / totalSignificance, nil
}

// ValidationError computes the weighted mean squared error of the current
// weights over a full pass of the validation partition
func (e *leastSquares) ValidationError() (float64, error) {
	var totalError, totalSignificance float64
	err := e.validation.Scan(func(rec *shifu.Record) error {
		residual := e.predict(rec.Inputs) - rec.Ideal[0]
		totalError += rec.Significance * residual * residual
		totalSignificance += rec.Significance
		return nil
	})
	if err != nil {
		return 0, err
	}
	if totalSignificance == 0 {
		return 0, nil
	}
	return totalError / totalSignificance, nil
}

func (e *leastSquares) predict(inputs []float64) float64 {
	sum := e.weights[len(e.weights)-1]
	for j, v := range inputs {
		sum += e.weights[j] * v
	}
	return sum
}
