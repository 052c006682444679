// Package stats tracks runtime statistics for one worker's training job
package stats

import (
	"time"
)

const statisticRollingWindows = 5

// TrainStatistics contains statistics about one training job. Each worker
// owns exactly one instance, constructed fresh per job; counters are never
// process-global.
type TrainStatistics struct {
	started                  bool
	finished                 bool
	startTime                time.Time
	totalRuntime             time.Duration
	recordsSeen              int64
	recordsSampled           int64
	iterations               int
	recentIterationTimes     []int64 // for rolling average of recent iteration compute times
	recentIterationTimesHead int
	trainErrors              []float64
	testErrors               []float64

	// temp vars
	currentIterationStartTime time.Time
}

// CreateTrainStatistics builds empty statistics for one training job
func CreateTrainStatistics() *TrainStatistics {
	return &TrainStatistics{
		recentIterationTimes: make([]int64, statisticRollingWindows),
	}
}

// Start triggers statistics tracking, if it hasn't been started already
func (ts *TrainStatistics) Start() {
	if !ts.started {
		ts.started = true
		ts.startTime = time.Now()
	}
}

// Finish completes statistics tracking
func (ts *TrainStatistics) Finish() {
	if !ts.finished {
		ts.finished = true
		ts.totalRuntime = time.Since(ts.startTime)
	}
}

// RecordSeen tracks one raw record offered to the worker during the load phase
func (ts *TrainStatistics) RecordSeen() {
	ts.recordsSeen++
}

// RecordSampled tracks one record sampled into either partition
func (ts *TrainStatistics) RecordSampled() {
	ts.recordsSampled++
}

// StartIteration tracks the beginning of one compute iteration
func (ts *TrainStatistics) StartIteration() {
	ts.iterations++
	ts.currentIterationStartTime = time.Now()
}

// EndIteration tracks the end of one compute iteration
func (ts *TrainStatistics) EndIteration() {
	ts.recentIterationTimes[ts.recentIterationTimesHead] = time.Since(ts.currentIterationStartTime).Nanoseconds()
	ts.recentIterationTimesHead = (ts.recentIterationTimesHead + 1) % len(ts.recentIterationTimes)
}

// RecordErrors tracks the errors reported by one non-empty iteration
func (ts *TrainStatistics) RecordErrors(trainError float64, testError float64) {
	ts.trainErrors = append(ts.trainErrors, trainError)
	ts.testErrors = append(ts.testErrors, testError)
}

// GetStartTime returns the start time of the job
func (ts *TrainStatistics) GetStartTime() time.Time {
	return ts.startTime
}

// GetRuntime returns the running time of the job
func (ts *TrainStatistics) GetRuntime() time.Duration {
	if ts.finished {
		return ts.totalRuntime
	}
	if !ts.started {
		return 0
	}
	return time.Since(ts.startTime)
}

// GetNumRecordsSeen returns the number of raw records offered to the worker
// during the load phase
func (ts *TrainStatistics) GetNumRecordsSeen() int64 {
	return ts.recordsSeen
}

// GetNumRecordsSampled returns the number of records which were sampled into
// either partition
func (ts *TrainStatistics) GetNumRecordsSampled() int64 {
	return ts.recordsSampled
}

// GetNumIterations returns the number of compute iterations performed so far,
// no-op iterations included
func (ts *TrainStatistics) GetNumIterations() int {
	return ts.iterations
}

// GetRecentIterationTime returns a rolling average of recent iteration
// compute times
func (ts *TrainStatistics) GetRecentIterationTime() time.Duration {
	var total, windows int64
	for _, d := range ts.recentIterationTimes {
		if d > 0 {
			total += d
			windows++
		}
	}
	if windows == 0 {
		return 0
	}
	return time.Duration(total / windows)
}

// GetTrainErrors returns the training error reported by each non-empty
// iteration, oldest first
func (ts *TrainStatistics) GetTrainErrors() []float64 {
	return ts.trainErrors
}

// GetTestErrors returns the validation error reported by each non-empty
// iteration, oldest first
func (ts *TrainStatistics) GetTestErrors() []float64 {
	return ts.testErrors
}
