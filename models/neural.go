package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/xiangpingbu/shifu/errors"
)

// NeuralNet is a fully-connected feed-forward network. Weights are stored as
// one flat vector, layer-major: for each non-input layer, each output node
// contributes its input weights followed by a trailing bias, so a network
// with sizes [in, out] holds out*(in+1) values. The flat layout is shared
// with gradient engines so trained vectors load directly.
type NeuralNet struct {
	// Sizes lists the node count of every layer, input first
	Sizes []int `msgpack:"sizes"`
	// Activations names the activation of every non-input layer
	Activations []string `msgpack:"activations"`
	// Weights is the flat layer-major weight vector
	Weights []float64 `msgpack:"weights"`
}

// CreateNeuralNet builds an untrained network with the given layer sizes and
// per-layer activations. An empty activation list defaults every layer to
// sigmoid; otherwise one name per non-input layer is required.
func CreateNeuralNet(sizes []int, activations []string) (*NeuralNet, error) {
	if len(sizes) < 2 {
		return nil, errors.InvalidArchitectureError{Reason: "a network needs an input and an output layer"}
	}
	for _, size := range sizes {
		if size <= 0 {
			return nil, errors.InvalidArchitectureError{Reason: fmt.Sprintf("layer size %d is not positive", size)}
		}
	}
	switch len(activations) {
	case 0:
		activations = make([]string, len(sizes)-1)
		for i := range activations {
			activations[i] = "sigmoid"
		}
	case len(sizes) - 1:
		for _, name := range activations {
			if _, err := activation(name); err != nil {
				return nil, err
			}
		}
	default:
		return nil, errors.InvalidArchitectureError{Reason: fmt.Sprintf("%d activations for %d non-input layers", len(activations), len(sizes)-1)}
	}
	n := &NeuralNet{
		Sizes:       append([]int{}, sizes...),
		Activations: append([]string{}, activations...),
	}
	n.Weights = make([]float64, n.WeightCount())
	return n, nil
}

// InputCount returns the width of the network's input layer
func (n *NeuralNet) InputCount() int {
	return n.Sizes[0]
}

// OutputCount returns the width of the network's output layer
func (n *NeuralNet) OutputCount() int {
	return n.Sizes[len(n.Sizes)-1]
}

// WeightCount returns the length of the flat weight vector this network's
// shape requires
func (n *NeuralNet) WeightCount() int {
	count := 0
	for layer := 1; layer < len(n.Sizes); layer++ {
		count += n.Sizes[layer] * (n.Sizes[layer-1] + 1)
	}
	return count
}

// FlatWeights returns a copy of the network's flat weight vector
func (n *NeuralNet) FlatWeights() []float64 {
	weights := make([]float64, len(n.Weights))
	copy(weights, n.Weights)
	return weights
}

// SetFlatWeights replaces the network's weights from a flat vector of
// exactly WeightCount values
func (n *NeuralNet) SetFlatWeights(weights []float64) error {
	if len(weights) != n.WeightCount() {
		return errors.InvalidArchitectureError{Reason: fmt.Sprintf("weight vector length %d does not match the %d this shape requires", len(weights), n.WeightCount())}
	}
	n.Weights = append([]float64{}, weights...)
	return nil
}

// Compute runs a forward pass over one input vector. It allocates its own
// intermediate buffers, so concurrent calls are safe.
func (n *NeuralNet) Compute(input []float64) ([]float64, error) {
	if len(input) != n.Sizes[0] {
		return nil, errors.IncompatibleRecordError{}
	}
	if len(n.Weights) != n.WeightCount() {
		return nil, errors.InvalidArchitectureError{Reason: fmt.Sprintf("weight vector length %d does not match the %d this shape requires", len(n.Weights), n.WeightCount())}
	}
	current := input
	offset := 0
	for layer := 1; layer < len(n.Sizes); layer++ {
		fn, err := activation(n.Activations[layer-1])
		if err != nil {
			return nil, err
		}
		in := n.Sizes[layer-1]
		out := n.Sizes[layer]
		next := make([]float64, out)
		for j := 0; j < out; j++ {
			row := offset + j*(in+1)
			sum := n.Weights[row+in]
			for i := 0; i < in; i++ {
				sum += n.Weights[row+i] * current[i]
			}
			next[j] = fn(sum)
		}
		offset += out * (in + 1)
		current = next
	}
	return current, nil
}

func activation(name string) (func(float64) float64, error) {
	switch strings.ToLower(name) {
	case "sigmoid":
		return sigmoid, nil
	case "tanh":
		return math.Tanh, nil
	case "linear":
		return identity, nil
	case "relu":
		return relu, nil
	}
	return nil, errors.InvalidArchitectureError{Reason: fmt.Sprintf("unknown activation %s", name)}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func identity(x float64) float64 {
	return x
}

func relu(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
