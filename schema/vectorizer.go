package schema

import (
	"fmt"
	"strconv"

	"github.com/xiangpingbu/shifu/config"
	"github.com/xiangpingbu/shifu/errors"
)

// Vectorizer turns one raw string row into dense input and ideal vectors,
// combining the Mapping and Normalizer for a job. Rows shorter than the
// configuration are padded with the missing-value sentinel.
type Vectorizer struct {
	mapping    *Mapping
	normalizer *Normalizer
	encoder    *CategoricalEncoder
	columns    map[int]*config.ColumnConfig
	posTags    map[string]bool
	negTags    map[string]bool
	binary     bool
}

// CreateVectorizer builds a Vectorizer for the given job configuration
func CreateVectorizer(mc *config.ModelConfig, columns []*config.ColumnConfig) (*Vectorizer, error) {
	if mc == nil {
		return nil, errors.MissingConfigError{Name: "ModelConfig"}
	}
	mapping, err := CreateMapping(columns)
	if err != nil {
		return nil, err
	}
	v := &Vectorizer{
		mapping:    mapping,
		normalizer: CreateNormalizer(columns, mc.Normalize.StdDevCutOff),
		encoder:    CreateCategoricalEncoder(columns),
		columns:    make(map[int]*config.ColumnConfig, len(columns)),
		posTags:    make(map[string]bool, len(mc.DataSet.PosTags)),
		negTags:    make(map[string]bool, len(mc.DataSet.NegTags)),
		binary:     mc.IsBinaryClassification(),
	}
	for _, column := range columns {
		v.columns[column.ColumnNum] = column
	}
	for _, tag := range mc.DataSet.PosTags {
		v.posTags[tag] = true
	}
	for _, tag := range mc.DataSet.NegTags {
		v.negTags[tag] = true
	}
	return v, nil
}

// Vectorize normalizes one raw row into (inputs, ideal) vectors. Rows whose
// target value cannot be interpreted return an error and should be skipped.
func (v *Vectorizer) Vectorize(row []string) ([]float64, []float64, error) {
	inputs := make([]float64, v.mapping.InputCount())
	for i, columnNum := range v.mapping.Columns() {
		inputs[i] = v.normalizer.Normalize(v.columns[columnNum], v.valueAt(row, columnNum))
	}
	ideal := make([]float64, 0, v.mapping.OutputCount())
	for _, columnNum := range v.mapping.Targets() {
		tag, err := v.parseTag(v.valueAt(row, columnNum))
		if err != nil {
			return nil, nil, err
		}
		ideal = append(ideal, tag)
	}
	return inputs, ideal, nil
}

// VectorizeBins turns one raw row into the input form tree ensembles split
// on: categorical values become their encoded bin index, numeric values stay
// raw (unparseable ones sit at the column mean, unseen categories at -1).
// The ideal vector is parsed exactly as in Vectorize.
func (v *Vectorizer) VectorizeBins(row []string) ([]float64, []float64, error) {
	inputs := make([]float64, v.mapping.InputCount())
	for i, columnNum := range v.mapping.Columns() {
		column := v.columns[columnNum]
		raw := v.valueAt(row, columnNum)
		if column.Categorical {
			idx, ok := v.encoder.Encode(columnNum, raw)
			if !ok {
				idx = -1
			}
			inputs[i] = float64(idx)
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			value = column.Mean
		}
		inputs[i] = value
	}
	ideal := make([]float64, 0, v.mapping.OutputCount())
	for _, columnNum := range v.mapping.Targets() {
		tag, err := v.parseTag(v.valueAt(row, columnNum))
		if err != nil {
			return nil, nil, err
		}
		ideal = append(ideal, tag)
	}
	return inputs, ideal, nil
}

func (v *Vectorizer) valueAt(row []string, columnNum int) string {
	if columnNum < 0 || columnNum >= len(row) {
		return ""
	}
	return row[columnNum]
}

func (v *Vectorizer) parseTag(raw string) (float64, error) {
	if v.binary {
		if v.posTags[raw] {
			return 1, nil
		}
		if v.negTags[raw] {
			return 0, nil
		}
		return 0, fmt.Errorf("target value %q is neither a positive nor a negative tag", raw)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse target value %q: %w", raw, err)
	}
	return value, nil
}

// InputCount returns the width of produced input vectors
func (v *Vectorizer) InputCount() int {
	return v.mapping.InputCount()
}

// OutputCount returns the width of produced ideal vectors
func (v *Vectorizer) OutputCount() int {
	return v.mapping.OutputCount()
}

// Mapping returns the column mapping backing this Vectorizer
func (v *Vectorizer) Mapping() *Mapping {
	return v.mapping
}
