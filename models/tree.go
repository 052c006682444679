package models

import (
	"fmt"

	"github.com/xiangpingbu/shifu"
	"github.com/xiangpingbu/shifu/errors"
)

// A TreeNode is one node of a decision tree stored in a flat array. Interior
// nodes split on a feature and name their children by array index; leaves
// carry the tree's output.
type TreeNode struct {
	// FeatureIndex is the input vector position this node splits on
	FeatureIndex int `msgpack:"feature"`
	// Threshold is the split value. Numeric features go left when strictly
	// below it; categorical features go left when their encoded bin index
	// equals it.
	Threshold float64 `msgpack:"threshold"`
	// Left and Right are child indexes into the tree's node array
	Left  int `msgpack:"left"`
	Right int `msgpack:"right"`
	// IsLeaf marks terminal nodes
	IsLeaf bool `msgpack:"leaf"`
	// Output is the value a leaf contributes
	Output float64 `msgpack:"output"`
}

// A Tree is one decision tree as a flat node array, rooted at index 0
type Tree struct {
	Nodes []TreeNode `msgpack:"nodes"`
}

func (t *Tree) walk(input []float64, categorical []bool) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, errors.InvalidArchitectureError{Reason: "tree has no nodes"}
	}
	node := t.Nodes[0]
	for !node.IsLeaf {
		if node.FeatureIndex < 0 || node.FeatureIndex >= len(input) {
			return 0, errors.IncompatibleRecordError{}
		}
		value := input[node.FeatureIndex]
		left := value < node.Threshold
		if node.FeatureIndex < len(categorical) && categorical[node.FeatureIndex] {
			left = int64(value) == int64(node.Threshold)
		}
		next := node.Right
		if left {
			next = node.Left
		}
		if next < 0 || next >= len(t.Nodes) {
			return 0, errors.InvalidArchitectureError{Reason: fmt.Sprintf("tree node reference %d is out of range", next)}
		}
		node = t.Nodes[next]
	}
	return node.Output, nil
}

// TreeEnsembleConf configures a composite tree model
type TreeEnsembleConf struct {
	Kind         shifu.EnsembleKind // how per-tree outputs are weighted and combined
	LearningRate float64            // GBDT weight for every tree after the first; zero uses the default
	InputCount   int                // input vector width the ensemble expects
	Categorical  []bool             // per-position categorical flags; nil treats every feature as numeric
	Trees        []Tree             // the member trees, applied in order
}

// TreeEnsemble is a composite model over a list of decision trees. A
// gradient-boosted ensemble sums its trees' outputs under the per-tree
// weights; a random forest averages them.
type TreeEnsemble struct {
	Kind         shifu.EnsembleKind `msgpack:"kind"`
	LearningRate float64            `msgpack:"learningRate"`
	Inputs       int                `msgpack:"inputs"`
	Categorical  []bool             `msgpack:"categorical"`
	Trees        []Tree             `msgpack:"trees"`
}

// CreateTreeEnsemble builds a composite tree model from conf
func CreateTreeEnsemble(conf *TreeEnsembleConf) (*TreeEnsemble, error) {
	if len(conf.Trees) == 0 {
		return nil, errors.EmptyEnsembleError{}
	}
	if conf.InputCount <= 0 {
		return nil, errors.InvalidArchitectureError{Reason: fmt.Sprintf("input width %d is not positive", conf.InputCount)}
	}
	rate := conf.LearningRate
	if rate <= 0 {
		rate = 0.1
	}
	return &TreeEnsemble{
		Kind:         conf.Kind,
		LearningRate: rate,
		Inputs:       conf.InputCount,
		Categorical:  append([]bool{}, conf.Categorical...),
		Trees:        append([]Tree{}, conf.Trees...),
	}, nil
}

// InputCount returns the input width this ensemble expects
func (t *TreeEnsemble) InputCount() int {
	return t.Inputs
}

// TreeWeights returns the per-tree weights the ensemble kind dictates:
// uniform 1.0 under random forest, 1.0 for the first tree and the learning
// rate for every subsequent tree under gradient boosting
func (t *TreeEnsemble) TreeWeights() []float64 {
	weights := make([]float64, len(t.Trees))
	for i := range weights {
		if t.Kind == shifu.GradientBoosted && i > 0 {
			weights[i] = t.LearningRate
		} else {
			weights[i] = 1.0
		}
	}
	return weights
}

// Compute applies every tree to the input and combines their outputs into a
// single scalar: a weighted sum for gradient boosting, an average for random
// forest
func (t *TreeEnsemble) Compute(input []float64) ([]float64, error) {
	return t.ComputeWeighted(input, t.TreeWeights())
}

// ComputeWeighted applies every tree under caller-supplied per-tree weights.
// An ensemble scorer derives these from the job configuration instead of the
// persisted artifact, so a historical model can be rescored under a different
// learning rate.
func (t *TreeEnsemble) ComputeWeighted(input []float64, weights []float64) ([]float64, error) {
	if len(t.Trees) == 0 {
		return nil, errors.EmptyEnsembleError{}
	}
	if len(weights) != len(t.Trees) {
		return nil, errors.InvalidArchitectureError{Reason: fmt.Sprintf("%d tree weights for %d trees", len(weights), len(t.Trees))}
	}
	sum := 0.0
	for i := range t.Trees {
		output, err := t.Trees[i].walk(input, t.Categorical)
		if err != nil {
			return nil, err
		}
		sum += weights[i] * output
	}
	if t.Kind == shifu.RandomForest {
		sum /= float64(len(t.Trees))
	}
	return []float64{sum}, nil
}
