package shifu

// A ScoreObject is the result of scoring one record with an ensemble of
// trained models. Scores are fixed-point integers with three decimal digits
// of precision (round(raw × 1000), half away from zero).
type ScoreObject struct {
	// Scores holds one entry per contributing model output
	Scores []int32
	// Tag is the record's integer ground-truth label, read from the first
	// value of the vectorized ideal
	Tag int32
}
