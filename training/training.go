// Package training provides an in-process bulk-synchronous harness which
// drives a set of workers through their load phase and iteration rounds. It
// stands in for an external coordinator in tests and local experiments; it
// is not a distributed master.
package training

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xiangpingbu/shifu"
	"github.com/xiangpingbu/shifu/config"
	"github.com/xiangpingbu/shifu/engine"
	"github.com/xiangpingbu/shifu/errors"
	"github.com/xiangpingbu/shifu/logging"
	"github.com/xiangpingbu/shifu/worker"
)

// Conf configures a local training run
type Conf struct {
	Model   *config.ModelConfig    // job configuration (required)
	Columns []*config.ColumnConfig // column metadata (required)
	Props   *config.RuntimeProps   // runtime properties; nil loads environment defaults
	Engine  shifu.EngineFactory    // gradient kernel; nil uses the least-squares engine
	// Rounds is the number of global iterations, the first no-op included.
	// Zero falls back to the configured NumTrainEpochs.
	Rounds int
	// InitialWeights is the starting global weight vector. Nil derives a
	// zero vector sized for the built-in least-squares kernel; supply
	// explicit weights when a custom engine uses a different layout.
	InitialWeights []float64
	Seed           int64 // seeds worker sampling and per-round crossover; zero draws from the clock
}

// Result is the outcome of a local training run
type Result struct {
	Weights     []float64 // final global weight vector
	TrainErrors []float64 // per-round training error averaged over reporting workers
	TestErrors  []float64 // per-round validation error averaged over reporting workers
}

// sliceSource adapts an in-memory shard to the RowSource contract
type sliceSource [][]string

func (s sliceSource) Stream(fn func(row []string) error) error {
	for _, row := range s {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// RunLocal trains over in-memory shards, one worker per shard
func RunLocal(ctx context.Context, conf *Conf, shards [][][]string) (*Result, error) {
	sources := make([]shifu.RowSource, len(shards))
	for i, shard := range shards {
		sources[i] = sliceSource(shard)
	}
	return RunLocalSources(ctx, conf, sources)
}

// RunLocalSources trains over row sources, one worker per source. Ingestion
// runs concurrently; iteration rounds are bulk-synchronous barriers where
// every worker reports before the global weights move.
func RunLocalSources(ctx context.Context, conf *Conf, sources []shifu.RowSource) (*Result, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("a local run needs at least one data source")
	}
	if conf.Model == nil {
		return nil, errors.MissingConfigError{Name: "ModelConfig"}
	}
	seed := conf.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	workers := make([]shifu.TrainingWorker, len(sources))
	for i := range sources {
		w, err := worker.CreateWorker(&worker.Conf{
			Model:   conf.Model,
			Columns: conf.Columns,
			Props:   conf.Props,
			Engine:  conf.Engine,
			Seed:    seed + int64(i),
		})
		if err != nil {
			return nil, err
		}
		workers[i] = w
	}
	defer func() {
		for _, w := range workers {
			if err := w.Close(); err != nil {
				logging.Errorf("unable to close worker %s: %v", w.ID(), err)
			}
		}
	}()
	for _, w := range workers {
		if err := w.Init(); err != nil {
			return nil, err
		}
	}

	// load phase: one goroutine per worker, each owning its worker exclusively
	g, _ := errgroup.WithContext(ctx)
	for i := range workers {
		i := i
		g.Go(func() error {
			if err := sources[i].Stream(workers[i].Ingest); err != nil {
				return err
			}
			return workers[i].FinalizeLoad()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	weights := append([]float64{}, conf.InitialWeights...)
	if conf.InitialWeights == nil {
		weights = make([]float64, engine.WeightCount(workers[0].Architecture()))
	}
	rounds := conf.Rounds
	if rounds <= 0 {
		rounds = conf.Model.Train.NumTrainEpochs
	}

	result := &Result{}
	for round := 0; round < rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		it := &shifu.Iteration{
			Weights: weights,
			First:   round == 0,
			Seed:    seed + int64(round),
		}
		reports := make([]*shifu.Params, len(workers))
		g, _ := errgroup.WithContext(ctx)
		for i := range workers {
			i := i
			g.Go(func() error {
				report, err := workers[i].Compute(it)
				if err != nil {
					return err
				}
				reports[i] = report
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		next, trainError, testError, reporting, err := aggregate(weights, reports)
		if err != nil {
			return nil, err
		}
		if reporting > 0 {
			weights = next
			result.TrainErrors = append(result.TrainErrors, trainError)
			result.TestErrors = append(result.TestErrors, testError)
			logging.Debugf("round %d of %d: train error %f, validation error %f", round, rounds, trainError, testError)
		}
	}
	result.Weights = weights
	return result, nil
}

// aggregate folds the round's worker reports into the next global weight
// vector, w' = w - Σ gradients / reporting workers, and averages the
// reported errors. No-op and missing reports contribute nothing.
func aggregate(weights []float64, reports []*shifu.Params) ([]float64, float64, float64, int, error) {
	sum := make([]float64, len(weights))
	var trainError, testError float64
	reporting := 0
	for _, report := range reports {
		if report == nil || len(report.Gradients) == 0 {
			continue
		}
		if len(report.Gradients) != len(weights) {
			return nil, 0, 0, 0, errors.InvalidArchitectureError{
				Reason: fmt.Sprintf("a worker reported %d gradients for %d weights", len(report.Gradients), len(weights)),
			}
		}
		for j, gradient := range report.Gradients {
			sum[j] += gradient
		}
		trainError += report.TrainError
		testError += report.TestError
		reporting++
	}
	if reporting == 0 {
		return weights, 0, 0, 0, nil
	}
	next := make([]float64, len(weights))
	for j := range next {
		next[j] = weights[j] - sum[j]/float64(reporting)
	}
	return next, trainError / float64(reporting), testError / float64(reporting), reporting, nil
}
