package shifu

// PartitionKind identifies which partition of a worker's data a record is
// routed to
type PartitionKind int

const (
	// TrainingPartition routes a record to the training Dataset
	TrainingPartition PartitionKind = iota
	// ValidationPartition routes a record to the validation Dataset
	ValidationPartition
)

// A Placement is a Sampler's routing decision for a single record
type Placement struct {
	// Partition is the destination for the record
	Partition PartitionKind
	// Emit is false when the record contributes no entry to either
	// partition (a bagging draw of zero)
	Emit bool
	// SignificanceScale multiplies the record's significance before storage,
	// encoding bagging duplication
	SignificanceScale float64
	// FromPosition, when non-negative, replaces the incoming record with a
	// re-read of the record at this position in the combined
	// training+validation range
	FromPosition int64
}

// A Sampler decides training-vs-validation membership and bagging
// duplication for each incoming record. Samplers are constructed once per
// job; modes are mutually exclusive.
type Sampler interface {
	// Place routes one record. The hash is a stable per-record value used by
	// deterministic splitting modes and ignored by the others.
	Place(hash uint64, rec *Record) Placement
}
