package models

import (
	"github.com/xiangpingbu/shifu"
)

// A WeightedModel exposes its trainable parameters as a single flat vector,
// matching the layout a GradientEngine trains. Loading a trained weight
// vector into a model shell is how training output becomes a scoreable
// artifact.
type WeightedModel interface {
	shifu.Model
	// FlatWeights returns a copy of the model's parameters as one vector
	FlatWeights() []float64
	// SetFlatWeights replaces the model's parameters from one vector
	SetFlatWeights(weights []float64) error
}
