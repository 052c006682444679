package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xiangpingbu/shifu"
	"github.com/xiangpingbu/shifu/dataset"
	"github.com/xiangpingbu/shifu/errors"
)

func createFinalizedDataset(t *testing.T, inputCount int, records ...*shifu.Record) shifu.Dataset {
	ds, err := dataset.Create(shifu.TieredStrategy, &dataset.Conf{InputCount: inputCount, IdealCount: 1, TempDir: t.TempDir()})
	require.Nil(t, err)
	for _, rec := range records {
		err = ds.Append(rec)
		require.Nil(t, err)
	}
	err = ds.FinalizeLoad()
	require.Nil(t, err)
	return ds
}

func TestRunEpochComputesExactGradient(t *testing.T) {
	training := createFinalizedDataset(t, 2,
		&shifu.Record{Inputs: []float64{1, 2}, Ideal: []float64{1}, Significance: 1})
	validation := createFinalizedDataset(t, 2)
	defer training.Dispose()
	defer validation.Dispose()
	e, err := CreateLeastSquares(training, validation, shifu.Architecture{InputCount: 2, OutputCount: 1, LearningRate: 0.5})
	require.Nil(t, err)
	e.SetWeights([]float64{0.5, -0.5, 0.25})
	// prediction 0.5 - 1.0 + 0.25 = -0.25, residual -1.25
	trainErr, err := e.RunEpoch()
	require.Nil(t, err)
	require.Equal(t, trainErr, 1.5625)
	require.Equal(t, e.Gradients(), []float64{-1.25, -2.5, -1.25})
	// one descent step at rate 0.5
	require.Equal(t, e.Weights(), []float64{1.75, 2.0, 1.5})
}

func TestSignificanceMatchesDuplication(t *testing.T) {
	weighted := createFinalizedDataset(t, 1,
		&shifu.Record{Inputs: []float64{1}, Ideal: []float64{0}, Significance: 2})
	duplicated := createFinalizedDataset(t, 1,
		&shifu.Record{Inputs: []float64{1}, Ideal: []float64{0}, Significance: 1},
		&shifu.Record{Inputs: []float64{1}, Ideal: []float64{0}, Significance: 1})
	empty := createFinalizedDataset(t, 1)
	defer weighted.Dispose()
	defer duplicated.Dispose()
	defer empty.Dispose()
	arch := shifu.Architecture{InputCount: 1, OutputCount: 1, LearningRate: 0.5}
	first, err := CreateLeastSquares(weighted, empty, arch)
	require.Nil(t, err)
	second, err := CreateLeastSquares(duplicated, empty, arch)
	require.Nil(t, err)
	first.SetWeights([]float64{1, 0})
	second.SetWeights([]float64{1, 0})
	// a significance of 2 contributes exactly like two copies of the record
	firstErr, err := first.RunEpoch()
	require.Nil(t, err)
	secondErr, err := second.RunEpoch()
	require.Nil(t, err)
	require.Equal(t, firstErr, secondErr)
	require.Equal(t, firstErr, 1.0)
	require.Equal(t, first.Gradients(), second.Gradients())
	require.Equal(t, first.Weights(), second.Weights())
}

func TestValidationError(t *testing.T) {
	training := createFinalizedDataset(t, 1)
	validation := createFinalizedDataset(t, 1,
		&shifu.Record{Inputs: []float64{1}, Ideal: []float64{0.5}, Significance: 1},
		&shifu.Record{Inputs: []float64{2}, Ideal: []float64{0}, Significance: 3})
	defer training.Dispose()
	defer validation.Dispose()
	e, err := CreateLeastSquares(training, validation, shifu.Architecture{InputCount: 1, OutputCount: 1})
	require.Nil(t, err)
	e.SetWeights([]float64{0.5, 0})
	// residuals 0 and 1, significance-weighted mean (0 + 3) / 4
	validErr, err := e.ValidationError()
	require.Nil(t, err)
	require.Equal(t, validErr, 0.75)
}

func TestEmptyPartitions(t *testing.T) {
	training := createFinalizedDataset(t, 1)
	validation := createFinalizedDataset(t, 1)
	defer training.Dispose()
	defer validation.Dispose()
	e, err := CreateLeastSquares(training, validation, shifu.Architecture{InputCount: 1, OutputCount: 1})
	require.Nil(t, err)
	trainErr, err := e.RunEpoch()
	require.Nil(t, err)
	require.Equal(t, trainErr, 0.0)
	require.Equal(t, e.Gradients(), []float64{0, 0})
	validErr, err := e.ValidationError()
	require.Nil(t, err)
	require.Equal(t, validErr, 0.0)
}

func TestDefaultLearningRate(t *testing.T) {
	training := createFinalizedDataset(t, 1,
		&shifu.Record{Inputs: []float64{1}, Ideal: []float64{1}, Significance: 1})
	validation := createFinalizedDataset(t, 1)
	defer training.Dispose()
	defer validation.Dispose()
	// a zero learning rate falls back to the default
	e, err := CreateLeastSquares(training, validation, shifu.Architecture{InputCount: 1, OutputCount: 1})
	require.Nil(t, err)
	_, err = e.RunEpoch()
	require.Nil(t, err)
	require.Equal(t, e.Gradients(), []float64{-0.2, -0.2})
	require.Equal(t, e.Weights(), []float64{0.2, 0.2})
}

func TestEngineOwnsItsVectors(t *testing.T) {
	training := createFinalizedDataset(t, 1)
	validation := createFinalizedDataset(t, 1)
	defer training.Dispose()
	defer validation.Dispose()
	e, err := CreateLeastSquares(training, validation, shifu.Architecture{InputCount: 1, OutputCount: 1})
	require.Nil(t, err)
	supplied := []float64{1, 2}
	e.SetWeights(supplied)
	supplied[0] = 99
	require.Equal(t, e.Weights(), []float64{1, 2})
	returned := e.Weights()
	returned[1] = 99
	require.Equal(t, e.Weights(), []float64{1, 2})
}

func TestCrossOverIsSeedDeterministic(t *testing.T) {
	runEpochs := func(e shifu.GradientEngine) []float64 {
		errs := make([]float64, 0, 40)
		for i := 0; i < 40; i++ {
			// reset so the epoch error identifies which partition trained
			e.SetWeights([]float64{0, 0})
			trainErr, err := e.RunEpoch()
			require.Nil(t, err)
			errs = append(errs, trainErr)
		}
		return errs
	}
	arch := shifu.Architecture{InputCount: 1, OutputCount: 1, LearningRate: 0.5, CrossOver: true}
	createEngine := func() shifu.GradientEngine {
		training := createFinalizedDataset(t, 1,
			&shifu.Record{Inputs: []float64{1}, Ideal: []float64{0}, Significance: 1})
		validation := createFinalizedDataset(t, 1,
			&shifu.Record{Inputs: []float64{1}, Ideal: []float64{10}, Significance: 1})
		t.Cleanup(func() {
			training.Dispose()
			validation.Dispose()
		})
		e, err := CreateLeastSquares(training, validation, arch)
		require.Nil(t, err)
		return e
	}
	first := createEngine()
	second := createEngine()
	first.Reseed(7)
	second.Reseed(7)
	firstErrs := runEpochs(first)
	secondErrs := runEpochs(second)
	// identical seeds swap partitions on identical epochs
	require.Equal(t, firstErrs, secondErrs)
	swapped := 0
	for _, trainErr := range firstErrs {
		if trainErr == 100.0 {
			swapped++
		} else {
			require.Equal(t, trainErr, 0.0)
		}
	}
	require.True(t, swapped > 0 && swapped < 40)
}

func TestCrossOverDisabledNeverSwaps(t *testing.T) {
	training := createFinalizedDataset(t, 1,
		&shifu.Record{Inputs: []float64{1}, Ideal: []float64{0}, Significance: 1})
	validation := createFinalizedDataset(t, 1,
		&shifu.Record{Inputs: []float64{1}, Ideal: []float64{10}, Significance: 1})
	defer training.Dispose()
	defer validation.Dispose()
	e, err := CreateLeastSquares(training, validation, shifu.Architecture{InputCount: 1, OutputCount: 1, LearningRate: 0.5})
	require.Nil(t, err)
	for i := 0; i < 10; i++ {
		e.SetWeights([]float64{0, 0})
		trainErr, err := e.RunEpoch()
		require.Nil(t, err)
		require.Equal(t, trainErr, 0.0)
	}
}

func TestCreateRequiresPartitions(t *testing.T) {
	training := createFinalizedDataset(t, 1)
	defer training.Dispose()
	_, err := CreateLeastSquares(nil, training, shifu.Architecture{InputCount: 1})
	require.NotNil(t, err)
	_, ok := err.(errors.MissingConfigError)
	require.True(t, ok)
	_, err = CreateLeastSquares(training, nil, shifu.Architecture{InputCount: 1})
	require.NotNil(t, err)
	_, ok = err.(errors.MissingConfigError)
	require.True(t, ok)
}

func TestWeightCount(t *testing.T) {
	require.Equal(t, WeightCount(shifu.Architecture{InputCount: 5}), 6)
}
