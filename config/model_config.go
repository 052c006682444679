package config

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mitchellh/mapstructure"
)

// ModelConfig is the root configuration document for one modeling job
type ModelConfig struct {
	Basic     BasicConf     `json:"basic"`
	DataSet   DataSetConf   `json:"dataSet"`
	Normalize NormalizeConf `json:"normalize"`
	Train     TrainConf     `json:"train"`
}

// BasicConf names and describes a modeling job
type BasicConf struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DataSetConf describes where and how raw training data is stored
type DataSetConf struct {
	DataPath         string     `json:"dataPath"`         // location of the raw data
	DataDelimiter    string     `json:"dataDelimiter"`    // field delimiter within a raw row
	HeaderInFirstRow bool       `json:"headerInFirstRow"` // iff true, the first row names columns instead of carrying data
	Source           SourceType `json:"source"`           // LOCAL or HDFS
	PosTags          []string   `json:"posTags"`          // raw target values treated as the positive class
	NegTags          []string   `json:"negTags"`          // raw target values treated as the negative class
}

// NormalizeConf tunes raw-value normalization
type NormalizeConf struct {
	StdDevCutOff float64 `json:"stdDevCutOff"` // z-scores are clamped to ±StdDevCutOff
}

// TrainConf describes the training algorithm and its sampling behaviour
type TrainConf struct {
	Algorithm              string                 `json:"algorithm"`              // NN, SVM, LR, GBT or RF
	Params                 map[string]interface{} `json:"params"`                 // algorithm-specific parameters, see TrainParams
	BaggingSampleRate      float64                `json:"baggingSampleRate"`      // fraction of raw records offered to the sampler
	BaggingWithReplacement bool                   `json:"baggingWithReplacement"` // iff true, records may be duplicated or dropped while bagging
	ValidSetRate           float64                `json:"validSetRate"`           // fraction of sampled records routed to validation
	FixInitialInput        bool                   `json:"fixInitialInput"`        // iff true, train/validation membership is a deterministic hash split
	TrainOnDisk            bool                   `json:"trainOnDisk"`            // iff true, dataset tiers are disk-backed regardless of available memory
	IsCrossOver            bool                   `json:"isCrossOver"`            // iff true, engine randomness is reseeded every iteration
	EpochsPerIteration     int                    `json:"epochsPerIteration"`     // local epochs per global iteration; zero defers to runtime properties
	NumTrainEpochs         int                    `json:"numTrainEpochs"`         // total global iterations a coordinator should run
}

// TrainParams are the algorithm-specific entries of TrainConf.Params, decoded
// into typed fields. Unknown entries are ignored.
type TrainParams struct {
	NumHiddenLayers int       `mapstructure:"NumHiddenLayers"`
	NumHiddenNodes  []int     `mapstructure:"NumHiddenNodes"`
	ActivationFunc  []string  `mapstructure:"ActivationFunc"`
	LearningRate    float64   `mapstructure:"LearningRate"`
	TreeNum         int       `mapstructure:"TreeNum"`
}

// DecodeParams decodes the raw parameter map into typed TrainParams, tolerating
// JSON numbers arriving as floats for integer fields
func (t *TrainConf) DecodeParams() (*TrainParams, error) {
	params := &TrainParams{LearningRate: 0.1}
	if err := mapstructure.WeakDecode(t.Params, params); err != nil {
		return nil, fmt.Errorf("unable to decode train params: %w", err)
	}
	return params, nil
}

// IsBinaryClassification returns true iff positive and negative tags are both
// configured, making the target a two-class label
func (m *ModelConfig) IsBinaryClassification() bool {
	return len(m.DataSet.PosTags) > 0 && len(m.DataSet.NegTags) > 0
}

// ParseModelConfig decodes a model configuration document, applying defaults
// for absent fields
func ParseModelConfig(r io.Reader) (*ModelConfig, error) {
	mc := &ModelConfig{
		DataSet: DataSetConf{
			DataDelimiter: "|",
			Source:        SourceLocal,
		},
		Normalize: NormalizeConf{
			StdDevCutOff: 4.0,
		},
		Train: TrainConf{
			Algorithm:         "NN",
			BaggingSampleRate: 1.0,
			ValidSetRate:      0.2,
			NumTrainEpochs:    100,
		},
	}
	if err := json.NewDecoder(r).Decode(mc); err != nil {
		return nil, fmt.Errorf("unable to parse model config: %w", err)
	}
	return mc, nil
}

// LoadModelConfig reads and decodes a model configuration from the given source
func LoadModelConfig(path string, source SourceType, props *RuntimeProps) (*ModelConfig, error) {
	r, err := OpenSource(path, source, props)
	if err != nil {
		return nil, fmt.Errorf("unable to open model config %s: %w", path, err)
	}
	defer r.Close()
	return ParseModelConfig(r)
}
