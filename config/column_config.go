package config

import (
	"encoding/json"
	"fmt"
	"io"
)

// ColumnRole describes how a column participates in training
type ColumnRole = string

const (
	// RoleMeta indicates a bookkeeping column excluded from model inputs
	RoleMeta ColumnRole = "meta"
	// RoleTarget indicates the column holding the training label
	RoleTarget ColumnRole = "target"
	// RoleCandidate indicates a column eligible to become a model input
	RoleCandidate ColumnRole = "candidate"
)

// ColumnConfig holds one column's metadata, loaded once per job and read-only
// thereafter. The order of BinCategory defines the stable bin index for each
// categorical value.
type ColumnConfig struct {
	ColumnNum   int       `json:"columnNum"`   // position of this column within a raw row
	ColumnName  string    `json:"columnName"`  // name of this column
	Role        ColumnRole `json:"role"`       // meta, target or candidate
	Categorical bool      `json:"categorical"` // iff true, raw values are category strings rather than numbers
	BinCategory []string  `json:"binCategory"` // ordered category values; position defines the bin index
	BinPosRate  []float64 `json:"binPosRate"`  // positive rate per bin, indexed like BinCategory
	Mean        float64   `json:"mean"`        // mean of the raw numeric values
	StdDev      float64   `json:"stdDev"`      // standard deviation of the raw numeric values
	FinalSelect bool      `json:"finalSelect"` // iff true, this column survived variable selection
}

// IsCandidate returns true iff this column is eligible to be a model input
func (c *ColumnConfig) IsCandidate() bool {
	return c.Role == RoleCandidate
}

// IsTarget returns true iff this column holds the training label
func (c *ColumnConfig) IsTarget() bool {
	return c.Role == RoleTarget
}

// IsMeta returns true iff this column is bookkeeping only
func (c *ColumnConfig) IsMeta() bool {
	return c.Role == RoleMeta
}

// ParseColumnConfigs decodes an ordered JSON array of column configurations
func ParseColumnConfigs(r io.Reader) ([]*ColumnConfig, error) {
	var columns []*ColumnConfig
	if err := json.NewDecoder(r).Decode(&columns); err != nil {
		return nil, fmt.Errorf("unable to parse column config: %w", err)
	}
	for _, column := range columns {
		if len(column.Role) == 0 {
			column.Role = RoleCandidate
		}
	}
	return columns, nil
}

// LoadColumnConfigs reads and decodes column configurations from the given source
func LoadColumnConfigs(path string, source SourceType, props *RuntimeProps) ([]*ColumnConfig, error) {
	r, err := OpenSource(path, source, props)
	if err != nil {
		return nil, fmt.Errorf("unable to open column config %s: %w", path, err)
	}
	defer r.Close()
	return ParseColumnConfigs(r)
}
