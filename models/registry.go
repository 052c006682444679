package models

import (
	"fmt"
	"sync"

	"github.com/xiangpingbu/shifu"
	"github.com/xiangpingbu/shifu/config"
	"github.com/xiangpingbu/shifu/errors"
)

// A Builder constructs an untrained model shell for an input width and a set
// of decoded train parameters
type Builder func(inputCount int, params *config.TrainParams) (shifu.Model, error)

var (
	registryMu sync.RWMutex
	registry   = map[shifu.Algorithm]Builder{}
)

// Register makes a Builder available to New under an algorithm name,
// replacing any previous registration
func Register(alg shifu.Algorithm, builder Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[alg] = builder
}

// New builds an untrained model shell by algorithm name. Tree ensembles are
// loaded from trained artifacts rather than built from train parameters, so
// they have no registered Builder.
func New(alg shifu.Algorithm, inputCount int, params *config.TrainParams) (shifu.Model, error) {
	registryMu.RLock()
	builder, ok := registry[alg]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.UnsupportedAlgorithmError{Alg: string(alg)}
	}
	if params == nil {
		params = &config.TrainParams{}
	}
	return builder(inputCount, params)
}

func init() {
	Register(shifu.AlgNeuralNet, buildNeuralNet)
	Register(shifu.AlgSVM, func(inputCount int, params *config.TrainParams) (shifu.Model, error) {
		return CreateLinear(shifu.AlgSVM, make([]float64, inputCount), 0)
	})
	Register(shifu.AlgLogisticRegression, func(inputCount int, params *config.TrainParams) (shifu.Model, error) {
		return CreateLinear(shifu.AlgLogisticRegression, make([]float64, inputCount), 0)
	})
}

func buildNeuralNet(inputCount int, params *config.TrainParams) (shifu.Model, error) {
	hidden := params.NumHiddenNodes
	if params.NumHiddenLayers > 0 && params.NumHiddenLayers != len(hidden) {
		return nil, errors.InvalidArchitectureError{Reason: fmt.Sprintf("%d hidden layers configured but %d node counts supplied", params.NumHiddenLayers, len(hidden))}
	}
	sizes := make([]int, 0, len(hidden)+2)
	sizes = append(sizes, inputCount)
	sizes = append(sizes, hidden...)
	sizes = append(sizes, 1)
	activations := params.ActivationFunc
	if len(activations) == len(hidden) && len(hidden) > 0 {
		// configured activations cover the hidden layers; the output layer
		// defaults to sigmoid
		activations = append(append([]string{}, activations...), "sigmoid")
	}
	return CreateNeuralNet(sizes, activations)
}
