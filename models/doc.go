// Package models implements the trained model variants an ensemble can
// score with: feed-forward neural networks, linear models (SVM and logistic
// regression), and flat-node tree ensembles (gradient-boosted and random
// forest). Models serialize to lz4-compressed binary artifacts and can be
// constructed by algorithm name through the package registry.
package models
