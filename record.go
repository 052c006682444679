package shifu

// A Record is a single training or scoring example: a dense input vector, an
// ideal (target) vector, and a significance multiplier which is applied
// during error and gradient aggregation. Significance encodes resampling
// duplication without physically duplicating storage.
type Record struct {
	Inputs       []float64
	Ideal        []float64
	Significance float64
}

// NewRecord creates a Record with the default significance of 1
func NewRecord(inputs []float64, ideal []float64) *Record {
	return &Record{Inputs: inputs, Ideal: ideal, Significance: 1}
}
