package schema

import (
	"strconv"

	"github.com/xiangpingbu/shifu/config"
)

// DefaultStdDevCutOff bounds z-scores when no cutoff is configured
const DefaultStdDevCutOff = 4.0

// Normalizer turns one raw column value into a model-ready float. Numeric
// columns are z-score normalized and clamped to the configured cutoff;
// categorical columns map to their bin's positive rate.
type Normalizer struct {
	cutoff  float64
	encoder *CategoricalEncoder
}

// CreateNormalizer builds a Normalizer over the given columns. A cutoff of
// zero or below selects the default.
func CreateNormalizer(columns []*config.ColumnConfig, cutoff float64) *Normalizer {
	if cutoff <= 0 {
		cutoff = DefaultStdDevCutOff
	}
	return &Normalizer{
		cutoff:  cutoff,
		encoder: CreateCategoricalEncoder(columns),
	}
}

// Normalize converts a raw value of the given column into its normalized form
func (n *Normalizer) Normalize(column *config.ColumnConfig, raw string) float64 {
	if column.Categorical {
		return n.normalizeCategorical(column, raw)
	}
	return n.normalizeNumeric(column, raw)
}

func (n *Normalizer) normalizeNumeric(column *config.ColumnConfig, raw string) float64 {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// unparseable values sit at the mean
		value = column.Mean
	}
	stdDev := column.StdDev
	if stdDev <= 0 {
		stdDev = 1
	}
	z := (value - column.Mean) / stdDev
	if z > n.cutoff {
		return n.cutoff
	}
	if z < -n.cutoff {
		return -n.cutoff
	}
	return z
}

func (n *Normalizer) normalizeCategorical(column *config.ColumnConfig, raw string) float64 {
	idx, ok := n.encoder.Encode(column.ColumnNum, raw)
	if !ok || idx >= len(column.BinPosRate) {
		return 0
	}
	return column.BinPosRate[idx]
}
