package dataset

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/xiangpingbu/shifu"
	"github.com/xiangpingbu/shifu/errors"
)

// Conf configures a Dataset's record widths and backing storage
type Conf struct {
	InputCount  int    // width of each record's input vector
	IdealCount  int    // width of each record's ideal vector
	MemoryBytes int64  // byte budget for the memory tier; zero or below means unbounded memory
	TempDir     string // location for disk-backed storage
}

// Create builds a Dataset backed by the given strategy
func Create(strategy shifu.DatasetStrategy, conf *Conf) (shifu.Dataset, error) {
	switch strategy {
	case shifu.TieredStrategy:
		return createTieredDataset(conf), nil
	case shifu.DiskStrategy:
		return createDiskDataset(conf)
	default:
		return nil, fmt.Errorf("%d is an unknown DatasetStrategy", strategy)
	}
}

// AvailableMemoryBudget returns the given fraction of the host's available
// memory, for sizing memory tiers. Fractions outside (0, 1] fall back to one
// half.
func AvailableMemoryBudget(fraction float64) (int64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("unable to inspect available memory: %w", err)
	}
	if fraction <= 0 || fraction > 1 {
		fraction = 0.5
	}
	return int64(float64(vm.Available) * fraction), nil
}

// tieredDataset keeps records in memory until the byte budget is exhausted,
// then spills the remainder to a disk tier created on first overflow
type tieredDataset struct {
	codec     *recordCodec
	memory    *memoryTier
	disk      *diskTier
	budget    int64
	tempDir   string
	finalized bool
	disposed  bool
}

func createTieredDataset(conf *Conf) *tieredDataset {
	codec := createRecordCodec(conf.InputCount, conf.IdealCount)
	return &tieredDataset{
		codec:   codec,
		memory:  createMemoryTier(codec),
		budget:  conf.MemoryBytes,
		tempDir: conf.TempDir,
	}
}

func (t *tieredDataset) Append(rec *shifu.Record) error {
	if t.disposed {
		return errors.DatasetDisposedError{}
	}
	if t.finalized {
		return errors.DatasetFinalizedError{}
	}
	if t.budget <= 0 || t.memory.bytes()+t.codec.width() <= t.budget {
		return t.memory.append(rec)
	}
	if t.disk == nil {
		disk, err := createDiskTier(t.codec, t.tempDir)
		if err != nil {
			return err
		}
		t.disk = disk
	}
	return t.disk.append(rec)
}

func (t *tieredDataset) FinalizeLoad() error {
	if t.disposed {
		return errors.DatasetDisposedError{}
	}
	if t.finalized {
		return errors.DatasetFinalizedError{}
	}
	if t.disk != nil {
		if err := t.disk.flush(); err != nil {
			return err
		}
	}
	t.finalized = true
	return nil
}

func (t *tieredDataset) Count() int64 {
	return t.MemoryCount() + t.DiskCount()
}

func (t *tieredDataset) MemoryCount() int64 {
	return t.memory.count
}

func (t *tieredDataset) DiskCount() int64 {
	if t.disk == nil {
		return 0
	}
	return t.disk.count
}

func (t *tieredDataset) ReadAt(position int64, rec *shifu.Record) error {
	if t.disposed {
		return errors.DatasetDisposedError{}
	}
	if position < 0 || position >= t.Count() {
		return errors.PositionOutOfRangeError{Position: position, Count: t.Count()}
	}
	if position < t.memory.count {
		t.memory.readAt(position, rec)
		return nil
	}
	// load-phase reads must see buffered writes
	if !t.finalized {
		if err := t.disk.flush(); err != nil {
			return err
		}
	}
	return t.disk.readAt(position-t.memory.count, rec)
}

func (t *tieredDataset) Scan(fn func(rec *shifu.Record) error) error {
	if t.disposed {
		return errors.DatasetDisposedError{}
	}
	if !t.finalized {
		return errors.DatasetNotFinalizedError{}
	}
	rec := &shifu.Record{}
	for i := int64(0); i < t.Count(); i++ {
		if err := t.ReadAt(i, rec); err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func (t *tieredDataset) Dispose() error {
	if t.disposed {
		return nil
	}
	t.disposed = true
	t.memory.data = nil
	if t.disk != nil {
		return t.disk.dispose()
	}
	return nil
}

// diskDataset keeps every record on disk, for memory-constrained workers
type diskDataset struct {
	disk      *diskTier
	finalized bool
	disposed  bool
}

func createDiskDataset(conf *Conf) (*diskDataset, error) {
	codec := createRecordCodec(conf.InputCount, conf.IdealCount)
	disk, err := createDiskTier(codec, conf.TempDir)
	if err != nil {
		return nil, err
	}
	return &diskDataset{disk: disk}, nil
}

func (d *diskDataset) Append(rec *shifu.Record) error {
	if d.disposed {
		return errors.DatasetDisposedError{}
	}
	if d.finalized {
		return errors.DatasetFinalizedError{}
	}
	return d.disk.append(rec)
}

func (d *diskDataset) FinalizeLoad() error {
	if d.disposed {
		return errors.DatasetDisposedError{}
	}
	if d.finalized {
		return errors.DatasetFinalizedError{}
	}
	if err := d.disk.flush(); err != nil {
		return err
	}
	d.finalized = true
	return nil
}

func (d *diskDataset) Count() int64 {
	return d.disk.count
}

func (d *diskDataset) MemoryCount() int64 {
	return 0
}

func (d *diskDataset) DiskCount() int64 {
	return d.disk.count
}

func (d *diskDataset) ReadAt(position int64, rec *shifu.Record) error {
	if d.disposed {
		return errors.DatasetDisposedError{}
	}
	if position < 0 || position >= d.Count() {
		return errors.PositionOutOfRangeError{Position: position, Count: d.Count()}
	}
	if !d.finalized {
		if err := d.disk.flush(); err != nil {
			return err
		}
	}
	return d.disk.readAt(position, rec)
}

func (d *diskDataset) Scan(fn func(rec *shifu.Record) error) error {
	if d.disposed {
		return errors.DatasetDisposedError{}
	}
	if !d.finalized {
		return errors.DatasetNotFinalizedError{}
	}
	rec := &shifu.Record{}
	for i := int64(0); i < d.Count(); i++ {
		if err := d.ReadAt(i, rec); err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func (d *diskDataset) Dispose() error {
	if d.disposed {
		return nil
	}
	d.disposed = true
	return d.disk.dispose()
}
