package training

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xiangpingbu/shifu"
	"github.com/xiangpingbu/shifu/config"
	"github.com/xiangpingbu/shifu/datasource/memory"
	"github.com/xiangpingbu/shifu/datasource/parser/dsv"
	"github.com/xiangpingbu/shifu/errors"
)

func trainingConfig() *config.ModelConfig {
	return &config.ModelConfig{
		Normalize: config.NormalizeConf{StdDevCutOff: 4.0},
		Train: config.TrainConf{
			Algorithm:         "NN",
			BaggingSampleRate: 1.0,
			FixInitialInput:   true,
		},
	}
}

func trainingColumns() []*config.ColumnConfig {
	return []*config.ColumnConfig{
		{ColumnNum: 0, ColumnName: "x", Role: config.RoleCandidate, Mean: 0, StdDev: 1},
		{ColumnNum: 1, ColumnName: "y", Role: config.RoleTarget},
	}
}

func trainingProps(t *testing.T) *config.RuntimeProps {
	return &config.RuntimeProps{
		EpochsPerIteration: 1,
		MemoryFraction:     0.5,
		TempDir:            t.TempDir(),
	}
}

// linearShard carries the noiseless relation y = 2x + 1 over centered inputs
func linearShard() [][]string {
	return [][]string{
		{"-1", "-1"},
		{"-0.5", "0"},
		{"0", "1"},
		{"0.5", "2"},
		{"1", "3"},
	}
}

func TestRunLocalConvergesOnLinearTarget(t *testing.T) {
	conf := &Conf{
		Model:   trainingConfig(),
		Columns: trainingColumns(),
		Props:   trainingProps(t),
		Rounds:  101,
		Seed:    42,
	}
	result, err := RunLocal(context.Background(), conf, [][][]string{linearShard()})
	require.Nil(t, err)
	require.NotNil(t, result)

	// the first round is a no-op, leaving 100 reporting rounds
	require.Equal(t, 100, len(result.TrainErrors))
	require.Equal(t, 100, len(result.TestErrors))
	// the first reporting round sees the zero weights: mean((0-y)^2) = 3
	require.InDelta(t, 3.0, result.TrainErrors[0], 1e-9)
	require.True(t, result.TrainErrors[99] < 1e-6)

	// gradient descent recovers slope 2 and intercept 1
	require.Equal(t, 2, len(result.Weights))
	require.InDelta(t, 2.0, result.Weights[0], 0.01)
	require.InDelta(t, 1.0, result.Weights[1], 0.01)
}

func TestRunLocalAveragesAcrossWorkers(t *testing.T) {
	conf := &Conf{
		Model:   trainingConfig(),
		Columns: trainingColumns(),
		Props:   trainingProps(t),
		Rounds:  101,
		Seed:    42,
	}
	// identical shards report identical gradients, so the averaged step
	// follows the single-worker trajectory exactly
	result, err := RunLocal(context.Background(), conf, [][][]string{linearShard(), linearShard()})
	require.Nil(t, err)
	require.InDelta(t, 3.0, result.TrainErrors[0], 1e-9)
	require.InDelta(t, 2.0, result.Weights[0], 0.01)
	require.InDelta(t, 1.0, result.Weights[1], 0.01)
}

func TestRunLocalFirstRoundIsNoOp(t *testing.T) {
	conf := &Conf{
		Model:   trainingConfig(),
		Columns: trainingColumns(),
		Props:   trainingProps(t),
		Rounds:  1,
		Seed:    42,
	}
	result, err := RunLocal(context.Background(), conf, [][][]string{linearShard()})
	require.Nil(t, err)
	// no reporting rounds: the weights never move off their initial zeros
	require.Equal(t, 0, len(result.TrainErrors))
	require.Equal(t, []float64{0, 0}, result.Weights)
}

func TestRunLocalHonorsInitialWeights(t *testing.T) {
	conf := &Conf{
		Model:          trainingConfig(),
		Columns:        trainingColumns(),
		Props:          trainingProps(t),
		Rounds:         2,
		InitialWeights: []float64{2, 1},
		Seed:           42,
	}
	result, err := RunLocal(context.Background(), conf, [][][]string{linearShard()})
	require.Nil(t, err)
	require.Equal(t, 1, len(result.TrainErrors))
	// starting at the optimum, the first reporting round measures zero error
	require.InDelta(t, 0.0, result.TrainErrors[0], 1e-12)
	require.InDelta(t, 2.0, result.Weights[0], 1e-9)
	require.InDelta(t, 1.0, result.Weights[1], 1e-9)
}

func TestRunLocalSources(t *testing.T) {
	parser := dsv.CreateParser(&dsv.ParserConf{Delimiter: '|'})
	chunk := []byte("-1|-1\n-0.5|0\n0|1\n0.5|2\n1|3\n")
	sources := []shifu.RowSource{
		memory.CreateDataSource([][]byte{chunk}, parser),
		memory.CreateDataSource([][]byte{chunk}, parser),
	}
	conf := &Conf{
		Model:   trainingConfig(),
		Columns: trainingColumns(),
		Props:   trainingProps(t),
		Rounds:  3,
		Seed:    42,
	}
	result, err := RunLocalSources(context.Background(), conf, sources)
	require.Nil(t, err)
	require.Equal(t, 2, len(result.TrainErrors))
	require.True(t, result.TrainErrors[1] < result.TrainErrors[0])
}

func TestRunLocalValidatesConfig(t *testing.T) {
	_, err := RunLocalSources(context.Background(), &Conf{Model: trainingConfig()}, nil)
	require.NotNil(t, err)

	_, err = RunLocal(context.Background(), &Conf{}, [][][]string{linearShard()})
	require.IsType(t, errors.MissingConfigError{}, err)
}

func TestRunLocalHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conf := &Conf{
		Model:   trainingConfig(),
		Columns: trainingColumns(),
		Props:   trainingProps(t),
		Rounds:  10,
		Seed:    42,
	}
	_, err := RunLocal(ctx, conf, [][][]string{linearShard()})
	require.NotNil(t, err)
}
