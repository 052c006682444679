package shifu

// DatasetStrategy selects the backing storage for a worker's training and
// validation data
type DatasetStrategy int

const (
	// TieredStrategy holds records in memory up to a byte budget, spilling
	// the remainder to disk
	TieredStrategy DatasetStrategy = iota
	// DiskStrategy holds every record on disk, for memory-constrained workers
	DiskStrategy
)

// A Dataset is an append-then-freeze sequence of Records backing one
// partition (training or validation) of a worker's data. Datasets are
// append-only during the load phase, become read-only after FinalizeLoad,
// and must be disposed of to release any disk resources they hold.
type Dataset interface {
	// Append adds a Record during the load phase. Appending after
	// FinalizeLoad is an error.
	Append(rec *Record) error
	// FinalizeLoad freezes this Dataset, flushing and indexing any
	// disk-backed portion. It must be called exactly once, before any
	// iteration read.
	FinalizeLoad() error
	// Count returns the total number of records across all tiers
	Count() int64
	// MemoryCount returns the number of records held in the memory tier
	MemoryCount() int64
	// DiskCount returns the number of records held in the disk tier
	DiskCount() int64
	// ReadAt reads the record at the given position into rec, uniformly
	// across the memory and disk tiers. It serves replacement sampling and
	// works during the load phase as well as after FinalizeLoad.
	ReadAt(position int64, rec *Record) error
	// Scan visits every record in position order, reusing a single Record
	// between calls. Valid only after FinalizeLoad.
	Scan(fn func(rec *Record) error) error
	// Dispose releases every resource backing this Dataset, including disk
	// handles and lock files. Dispose is idempotent and must be called on
	// all exit paths.
	Dispose() error
}
