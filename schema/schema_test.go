package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xiangpingbu/shifu/config"
	"github.com/xiangpingbu/shifu/errors"
)

func createTestColumns() []*config.ColumnConfig {
	return []*config.ColumnConfig{
		{ColumnNum: 0, ColumnName: "id", Role: config.RoleMeta},
		{ColumnNum: 1, ColumnName: "amount", Role: config.RoleCandidate, Mean: 10, StdDev: 2},
		{ColumnNum: 2, ColumnName: "country", Role: config.RoleCandidate, Categorical: true,
			BinCategory: []string{"US", "CA", ""}, BinPosRate: []float64{0.5, 0.25, 0.05}},
		{ColumnNum: 3, ColumnName: "score", Role: config.RoleCandidate, Mean: 0, StdDev: 1},
		{ColumnNum: 4, ColumnName: "label", Role: config.RoleTarget},
	}
}

func TestCreateMappingNoSelection(t *testing.T) {
	// no column is final-select, so every candidate participates
	columns := createTestColumns()
	mapping, err := CreateMapping(columns)
	require.Nil(t, err)
	require.True(t, mapping.NoVarSelect())
	require.Equal(t, mapping.InputCount(), 3)
	require.Equal(t, mapping.CandidateCount(), 3)
	require.Equal(t, mapping.Columns(), []int{1, 2, 3})
	require.Equal(t, mapping.Targets(), []int{4})
	// positions increase in configuration order
	for i, columnNum := range mapping.Columns() {
		pos, ok := mapping.Position(columnNum)
		require.True(t, ok)
		require.Equal(t, pos, i)
	}
	// meta and target columns have no position
	_, ok := mapping.Position(0)
	require.False(t, ok)
	_, ok = mapping.Position(4)
	require.False(t, ok)
}

func TestCreateMappingAllSelected(t *testing.T) {
	// selecting every candidate is equivalent to selecting none
	columns := createTestColumns()
	for _, column := range columns {
		if column.IsCandidate() {
			column.FinalSelect = true
		}
	}
	mapping, err := CreateMapping(columns)
	require.Nil(t, err)
	require.True(t, mapping.NoVarSelect())
	require.Equal(t, mapping.InputCount(), 3)
}

func TestCreateMappingPostSelection(t *testing.T) {
	// only final-select candidates participate
	columns := createTestColumns()
	columns[1].FinalSelect = true
	columns[3].FinalSelect = true
	mapping, err := CreateMapping(columns)
	require.Nil(t, err)
	require.False(t, mapping.NoVarSelect())
	require.Equal(t, mapping.InputCount(), 2)
	require.Equal(t, mapping.SelectedCount(), 2)
	require.Equal(t, mapping.Columns(), []int{1, 3})
	_, ok := mapping.Position(2)
	require.False(t, ok)
}

func TestCreateMappingRequiresColumns(t *testing.T) {
	_, err := CreateMapping(nil)
	require.NotNil(t, err)
	_, ok := err.(errors.MissingConfigError)
	require.True(t, ok)
}

func TestCategoricalEncoder(t *testing.T) {
	encoder := CreateCategoricalEncoder(createTestColumns())
	require.True(t, encoder.HasColumn(2))
	require.False(t, encoder.HasColumn(1))
	// known categories map to their stable bin index
	idx, ok := encoder.Encode(2, "US")
	require.True(t, ok)
	require.Equal(t, idx, 0)
	idx, ok = encoder.Encode(2, "CA")
	require.True(t, ok)
	require.Equal(t, idx, 1)
	// unseen categories fall back to the sentinel bin
	idx, ok = encoder.Encode(2, "FR")
	require.True(t, ok)
	require.Equal(t, idx, 2)
	// numeric columns have no bins at all
	_, ok = encoder.Encode(1, "10")
	require.False(t, ok)
}

func TestCategoricalEncoderWithoutSentinel(t *testing.T) {
	columns := []*config.ColumnConfig{
		{ColumnNum: 0, Role: config.RoleCandidate, Categorical: true,
			BinCategory: []string{"A", "B"}, BinPosRate: []float64{0.1, 0.9}},
	}
	encoder := CreateCategoricalEncoder(columns)
	_, ok := encoder.Encode(0, "C")
	require.False(t, ok)
}

func TestNormalizerNumeric(t *testing.T) {
	columns := createTestColumns()
	normalizer := CreateNormalizer(columns, 0)
	// plain z-score
	require.Equal(t, normalizer.Normalize(columns[1], "12"), 1.0)
	require.Equal(t, normalizer.Normalize(columns[1], "8"), -1.0)
	// outliers clamp at the default cutoff
	require.Equal(t, normalizer.Normalize(columns[1], "1000"), 4.0)
	require.Equal(t, normalizer.Normalize(columns[1], "-1000"), -4.0)
	// unparseable values sit at the mean
	require.Equal(t, normalizer.Normalize(columns[1], "not-a-number"), 0.0)
}

func TestNormalizerZeroStdDev(t *testing.T) {
	column := &config.ColumnConfig{ColumnNum: 0, Role: config.RoleCandidate, Mean: 5, StdDev: 0}
	normalizer := CreateNormalizer([]*config.ColumnConfig{column}, 0)
	// a zero standard deviation is treated as one
	require.Equal(t, normalizer.Normalize(column, "7"), 2.0)
}

func TestNormalizerCustomCutoff(t *testing.T) {
	columns := createTestColumns()
	normalizer := CreateNormalizer(columns, 2.0)
	require.Equal(t, normalizer.Normalize(columns[1], "1000"), 2.0)
}

func TestNormalizerCategorical(t *testing.T) {
	columns := createTestColumns()
	normalizer := CreateNormalizer(columns, 0)
	require.Equal(t, normalizer.Normalize(columns[2], "US"), 0.5)
	require.Equal(t, normalizer.Normalize(columns[2], "CA"), 0.25)
	// unseen categories use the sentinel bin's positive rate
	require.Equal(t, normalizer.Normalize(columns[2], "FR"), 0.05)
}

func createTestModelConfig() *config.ModelConfig {
	return &config.ModelConfig{
		Normalize: config.NormalizeConf{StdDevCutOff: 4.0},
		DataSet: config.DataSetConf{
			PosTags: []string{"1", "fraud"},
			NegTags: []string{"0", "ok"},
		},
	}
}

func TestVectorizeBinaryRow(t *testing.T) {
	v, err := CreateVectorizer(createTestModelConfig(), createTestColumns())
	require.Nil(t, err)
	require.Equal(t, v.InputCount(), 3)
	require.Equal(t, v.OutputCount(), 1)
	inputs, ideal, err := v.Vectorize([]string{"row-1", "12", "US", "0.5", "fraud"})
	require.Nil(t, err)
	require.Equal(t, inputs, []float64{1.0, 0.5, 0.5})
	require.Equal(t, ideal, []float64{1.0})
	// negative tags vectorize to zero
	_, ideal, err = v.Vectorize([]string{"row-2", "10", "CA", "0", "ok"})
	require.Nil(t, err)
	require.Equal(t, ideal, []float64{0.0})
}

func TestVectorizeUnknownTag(t *testing.T) {
	v, err := CreateVectorizer(createTestModelConfig(), createTestColumns())
	require.Nil(t, err)
	_, _, err = v.Vectorize([]string{"row-1", "12", "US", "0.5", "maybe"})
	require.NotNil(t, err)
}

func TestVectorizeRegressionTag(t *testing.T) {
	mc := &config.ModelConfig{Normalize: config.NormalizeConf{StdDevCutOff: 4.0}}
	v, err := CreateVectorizer(mc, createTestColumns())
	require.Nil(t, err)
	_, ideal, err := v.Vectorize([]string{"row-1", "12", "US", "0.5", "0.75"})
	require.Nil(t, err)
	require.Equal(t, ideal, []float64{0.75})
	// a non-numeric target is an error when tags are not configured
	_, _, err = v.Vectorize([]string{"row-1", "12", "US", "0.5", "bad"})
	require.NotNil(t, err)
}

func TestVectorizeShortRow(t *testing.T) {
	mc := &config.ModelConfig{
		Normalize: config.NormalizeConf{StdDevCutOff: 4.0},
		DataSet:   config.DataSetConf{PosTags: []string{"1"}, NegTags: []string{"0"}},
	}
	v, err := CreateVectorizer(mc, createTestColumns())
	require.Nil(t, err)
	// missing trailing fields read as the missing-value sentinel, including the target
	_, _, err = v.Vectorize([]string{"row-1", "12"})
	require.NotNil(t, err)
}

func TestVectorizeBins(t *testing.T) {
	v, err := CreateVectorizer(createTestModelConfig(), createTestColumns())
	require.Nil(t, err)
	inputs, ideal, err := v.VectorizeBins([]string{"row-1", "12", "CA", "0.5", "1"})
	require.Nil(t, err)
	// numeric values stay raw, categorical values become bin indices
	require.Equal(t, inputs, []float64{12.0, 1.0, 0.5})
	require.Equal(t, ideal, []float64{1.0})
	// an unseen category falls to the sentinel bin
	inputs, _, err = v.VectorizeBins([]string{"row-2", "oops", "MX", "0.5", "0"})
	require.Nil(t, err)
	require.Equal(t, inputs[0], 10.0)
	require.Equal(t, inputs[1], 2.0)
}

func TestCreateVectorizerRequiresModelConfig(t *testing.T) {
	_, err := CreateVectorizer(nil, createTestColumns())
	require.NotNil(t, err)
	_, ok := err.(errors.MissingConfigError)
	require.True(t, ok)
}
