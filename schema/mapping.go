package schema

import (
	"sort"

	"github.com/xiangpingbu/shifu/config"
	"github.com/xiangpingbu/shifu/errors"
)

// Mapping resolves which input columns are active for a job and assigns each
// one a dense vector position. It is built once from the column configuration
// and immutable afterwards.
//
// When no column has survived variable selection (or every candidate has),
// the mapping operates in "no selection" mode and includes every candidate
// column. Otherwise only final-select candidate columns are included. In both
// modes positions are assigned in configuration order.
type Mapping struct {
	positions      map[int]int
	ordered        []int
	targets        []int
	noVarSelect    bool
	candidateCount int
	selectedCount  int
}

// CreateMapping builds a Mapping from the full ordered column configuration.
// A nil or empty configuration is a fatal construction error.
func CreateMapping(columns []*config.ColumnConfig) (*Mapping, error) {
	if len(columns) == 0 {
		return nil, errors.MissingConfigError{Name: "ColumnConfig list"}
	}
	m := &Mapping{positions: make(map[int]int)}
	for _, column := range columns {
		if column.IsTarget() {
			m.targets = append(m.targets, column.ColumnNum)
			continue
		}
		if !column.IsCandidate() {
			continue
		}
		m.candidateCount++
		if column.FinalSelect {
			m.selectedCount++
		}
	}
	m.noVarSelect = m.selectedCount == 0 || m.selectedCount == m.candidateCount
	index := 0
	for _, column := range columns {
		if !column.IsCandidate() {
			continue
		}
		if m.noVarSelect || column.FinalSelect {
			m.positions[column.ColumnNum] = index
			m.ordered = append(m.ordered, column.ColumnNum)
			index++
		}
	}
	sort.Ints(m.targets)
	return m, nil
}

// Position returns the dense vector position for a column, if the column is active
func (m *Mapping) Position(columnNum int) (int, bool) {
	pos, ok := m.positions[columnNum]
	return pos, ok
}

// Columns returns the active column numbers in position order
func (m *Mapping) Columns() []int {
	return m.ordered
}

// Targets returns the target column numbers in configuration order
func (m *Mapping) Targets() []int {
	return m.targets
}

// InputCount returns the width of the dense input vector
func (m *Mapping) InputCount() int {
	return len(m.ordered)
}

// OutputCount returns the width of the ideal vector
func (m *Mapping) OutputCount() int {
	return len(m.targets)
}

// CandidateCount returns the number of candidate columns in the configuration
func (m *Mapping) CandidateCount() int {
	return m.candidateCount
}

// SelectedCount returns the number of final-select candidate columns
func (m *Mapping) SelectedCount() int {
	return m.selectedCount
}

// NoVarSelect returns true iff the mapping includes every candidate column
func (m *Mapping) NoVarSelect() bool {
	return m.noVarSelect
}
