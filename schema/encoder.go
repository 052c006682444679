package schema

import (
	"github.com/xiangpingbu/shifu/config"
)

// CategoricalEncoder maps raw category strings to stable bin indices, one map
// per categorical column. Bin indices are the positions previously computed in
// the column configuration; no renumbering happens at runtime. The empty
// string is the sentinel bin for null or unseen values.
type CategoricalEncoder struct {
	bins map[int]map[string]int
}

// CreateCategoricalEncoder builds an encoder covering every categorical column
// in the configuration
func CreateCategoricalEncoder(columns []*config.ColumnConfig) *CategoricalEncoder {
	encoder := &CategoricalEncoder{bins: make(map[int]map[string]int)}
	for _, column := range columns {
		if !column.Categorical {
			continue
		}
		m := make(map[string]int, len(column.BinCategory))
		for i, category := range column.BinCategory {
			m[category] = i
		}
		encoder.bins[column.ColumnNum] = m
	}
	return encoder
}

// Encode returns the bin index for a raw value of the given column. Unseen
// values fall back to the sentinel bin; the second return is false iff the
// column has no bins or the sentinel bin is also absent.
func (e *CategoricalEncoder) Encode(columnNum int, value string) (int, bool) {
	m, ok := e.bins[columnNum]
	if !ok {
		return -1, false
	}
	if idx, ok := m[value]; ok {
		return idx, true
	}
	idx, ok := m[""]
	if !ok {
		return -1, false
	}
	return idx, true
}

// HasColumn returns true iff bins exist for the given column
func (e *CategoricalEncoder) HasColumn(columnNum int) bool {
	_, ok := e.bins[columnNum]
	return ok
}
