// Package scorer combines heterogeneous trained models into a single
// calibrated integer score per record.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/xiangpingbu/shifu"
	"github.com/xiangpingbu/shifu/config"
	"github.com/xiangpingbu/shifu/errors"
	"github.com/xiangpingbu/shifu/logging"
	"github.com/xiangpingbu/shifu/models"
	"github.com/xiangpingbu/shifu/schema"
)

// ScoreScale fixes the integer representation of raw model outputs at three
// decimal digits of precision, keeping downstream consumers in integer
// arithmetic
const ScoreScale = 1000

// ToScore converts one raw model output to its fixed-point integer score,
// rounding half away from zero
func ToScore(raw float64) int32 {
	return int32(math.Round(raw * ScoreScale))
}

// A Scorer applies an ensemble of trained models to records, producing the
// per-model integer scores tied to each record's ground-truth tag. Scorers
// are immutable after construction and safe for concurrent use, provided no
// model is mutated during compute.
type Scorer struct {
	algorithm   shifu.Algorithm
	binary      bool
	vectorizer  *schema.Vectorizer
	models      []shifu.Model
	tree        *models.TreeEnsemble
	treeWeights []float64
}

// Create builds a Scorer for the given job configuration and trained models.
// A nil ModelConfig is a fatal construction error. Tree-ensemble jobs score
// through exactly one composite tree model whose per-tree weights derive
// from the configured algorithm; every other job iterates the model list.
func Create(mc *config.ModelConfig, columns []*config.ColumnConfig, ensemble []shifu.Model) (*Scorer, error) {
	if mc == nil {
		return nil, errors.MissingConfigError{Name: "ModelConfig"}
	}
	vectorizer, err := schema.CreateVectorizer(mc, columns)
	if err != nil {
		return nil, err
	}
	s := &Scorer{
		algorithm:  shifu.Algorithm(strings.ToUpper(mc.Train.Algorithm)),
		binary:     mc.IsBinaryClassification(),
		vectorizer: vectorizer,
		models:     ensemble,
	}
	if s.algorithm.IsTreeEnsemble() {
		if err := s.bindTreeModel(mc, ensemble); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// bindTreeModel resolves the single composite tree model a GBDT or RF job
// scores with and derives its per-tree weights: uniform 1.0 under random
// forest, 1.0 for the first tree and the configured learning rate for every
// subsequent tree under gradient boosting.
func (s *Scorer) bindTreeModel(mc *config.ModelConfig, ensemble []shifu.Model) error {
	if len(ensemble) == 0 {
		return errors.EmptyEnsembleError{}
	}
	tree, ok := ensemble[0].(*models.TreeEnsemble)
	if !ok || len(ensemble) != 1 {
		return fmt.Errorf("a %s job scores with exactly one composite tree model", s.algorithm)
	}
	params, err := mc.Train.DecodeParams()
	if err != nil {
		return err
	}
	weights := make([]float64, len(tree.Trees))
	for i := range weights {
		if s.algorithm == shifu.AlgGBDT && i > 0 {
			weights[i] = params.LearningRate
		} else {
			weights[i] = 1.0
		}
	}
	s.tree = tree
	s.treeWeights = weights
	return nil
}

// Score scores one pre-vectorized record. A record no model could score
// returns an absent (nil) result, which callers must treat as "cannot
// score", never as zero; an unrecognized model kind is an unrecoverable
// error.
func (s *Scorer) Score(inputs []float64, ideal []float64) (*shifu.ScoreObject, error) {
	var scores []int32
	if s.tree != nil {
		outputs, err := s.tree.ComputeWeighted(inputs, s.treeWeights)
		if err != nil {
			return nil, err
		}
		scores = append(scores, ToScore(outputs[0]))
	} else {
		for i, model := range s.models {
			alg, err := models.AlgorithmOf(model)
			if err != nil {
				return nil, err
			}
			if model.InputCount() != len(inputs) {
				logging.WithModel(i, string(alg)).Errorf("model expects %d inputs but the record vectorized to %d, skipping", model.InputCount(), len(inputs))
				continue
			}
			outputs, err := model.Compute(inputs)
			if err != nil {
				return nil, err
			}
			if alg == shifu.AlgNeuralNet && !s.binary {
				// multi-class networks contribute one score per output node
				for _, output := range outputs {
					scores = append(scores, ToScore(output))
				}
			} else {
				scores = append(scores, ToScore(outputs[0]))
			}
		}
	}
	if len(scores) == 0 {
		logging.Errorf("no model of %d produced a score for this record", len(s.models))
		return nil, nil
	}
	result := &shifu.ScoreObject{Scores: scores}
	if len(ideal) > 0 {
		result.Tag = int32(ideal[0])
	}
	return result, nil
}

// ScoreRaw vectorizes one raw string row and scores it. Tree-ensemble jobs
// vectorize categorical values to bin indices; every other job normalizes.
func (s *Scorer) ScoreRaw(row []string) (*shifu.ScoreObject, error) {
	var inputs, ideal []float64
	var err error
	if s.algorithm.IsTreeEnsemble() {
		inputs, ideal, err = s.vectorizer.VectorizeBins(row)
	} else {
		inputs, ideal, err = s.vectorizer.Vectorize(row)
	}
	if err != nil {
		return nil, err
	}
	return s.Score(inputs, ideal)
}

// InputCount returns the vectorized input width this Scorer produces
func (s *Scorer) InputCount() int {
	return s.vectorizer.InputCount()
}
