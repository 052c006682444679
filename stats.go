package shifu

import "time"

// TrainingStatistics facilitates the retrieval of statistics about one
// worker's training job
type TrainingStatistics interface {
	// GetStartTime returns the start time of the job
	GetStartTime() time.Time
	// GetRuntime returns the running time of the job
	GetRuntime() time.Duration
	// GetNumRecordsSeen returns the number of raw records offered to the
	// worker during the load phase
	GetNumRecordsSeen() int64
	// GetNumRecordsSampled returns the number of records which were sampled
	// into either partition
	GetNumRecordsSampled() int64
	// GetNumIterations returns the number of compute iterations performed so
	// far, no-op iterations included
	GetNumIterations() int
	// GetRecentIterationTime returns a rolling average of recent iteration
	// compute times
	GetRecentIterationTime() time.Duration
	// GetTrainErrors returns the training error reported by each non-empty
	// iteration, oldest first
	GetTrainErrors() []float64
	// GetTestErrors returns the validation error reported by each non-empty
	// iteration, oldest first
	GetTestErrors() []float64
}
