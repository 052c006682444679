// Package shifu contains the core types and interfaces for training
// predictive models in a distributed, iterative, master/worker fashion, and
// for scoring records with trained model ensembles. Implementations of these
// interfaces are found in subpackages of this module.
package shifu
