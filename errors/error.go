package errors

import (
	"fmt"
)

// DatasetFinalizedError occurs when a Record is appended to a Dataset after FinalizeLoad,
// or when FinalizeLoad is invoked a second time
type DatasetFinalizedError struct{}

// Error returns a textual representation of this DatasetFinalizedError
func (e DatasetFinalizedError) Error() string {
	return "Dataset has already been finalized"
}

// DatasetNotFinalizedError occurs when a Dataset is read before FinalizeLoad
type DatasetNotFinalizedError struct{}

// Error returns a textual representation of this DatasetNotFinalizedError
func (e DatasetNotFinalizedError) Error() string {
	return "Dataset has not been finalized"
}

// DatasetDisposedError occurs when a Dataset is used after Dispose
type DatasetDisposedError struct{}

// Error returns a textual representation of this DatasetDisposedError
func (e DatasetDisposedError) Error() string {
	return "Dataset has been disposed"
}

// PositionOutOfRangeError occurs when a positional read falls outside a Dataset's record range
type PositionOutOfRangeError struct {
	Position int64
	Count    int64
}

// Error returns a textual representation of this PositionOutOfRangeError
func (e PositionOutOfRangeError) Error() string {
	return fmt.Sprintf("Position %d is out of range for a Dataset of %d records", e.Position, e.Count)
}

// IncompatibleRecordError occurs when a Record's vector widths do not match the Dataset it is appended to
type IncompatibleRecordError struct{}

// Error returns a textual representation of this IncompatibleRecordError
func (e IncompatibleRecordError) Error() string {
	return "Record width is not compatible with Dataset"
}

// MissingConfigError occurs when a component is constructed without a required configuration object
type MissingConfigError struct{ Name string }

// Error returns a textual representation of this MissingConfigError
func (e MissingConfigError) Error() string {
	return fmt.Sprintf("%s is required and was not supplied", e.Name)
}

// UnsupportedAlgorithmError occurs when a model algorithm name is not recognized
type UnsupportedAlgorithmError struct{ Alg string }

// Error returns a textual representation of this UnsupportedAlgorithmError
func (e UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("Unsupported model algorithm %s", e.Alg)
}

// InvalidArchitectureError occurs when a model is constructed with an impossible shape
type InvalidArchitectureError struct{ Reason string }

// Error returns a textual representation of this InvalidArchitectureError
func (e InvalidArchitectureError) Error() string {
	return fmt.Sprintf("Invalid model architecture: %s", e.Reason)
}

// EmptyEnsembleError occurs when scoring is attempted against an ensemble with no models
type EmptyEnsembleError struct{}

// Error returns a textual representation of this EmptyEnsembleError
func (e EmptyEnsembleError) Error() string {
	return "Ensemble contains no models"
}

// InvalidTransitionError occurs when a worker lifecycle operation is invoked from the wrong state
type InvalidTransitionError struct {
	Op    string
	State string
}

// Error returns a textual representation of this InvalidTransitionError
func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("Operation %s is not valid in worker state %s", e.Op, e.State)
}
