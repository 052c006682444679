package dataset

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/xiangpingbu/shifu"
	"github.com/xiangpingbu/shifu/errors"
)

// recordCodec encodes fixed-width records as little-endian float64s: inputs
// first, then ideal values, significance last.
type recordCodec struct {
	inputCount int
	idealCount int
}

func createRecordCodec(inputCount int, idealCount int) *recordCodec {
	return &recordCodec{inputCount: inputCount, idealCount: idealCount}
}

// width returns the encoded byte size of one record
func (c *recordCodec) width() int64 {
	return int64(c.inputCount+c.idealCount+1) * 8
}

// encode appends rec's encoded form to buf, returning the extended buffer
func (c *recordCodec) encode(buf []byte, rec *shifu.Record) ([]byte, error) {
	if len(rec.Inputs) != c.inputCount || len(rec.Ideal) != c.idealCount {
		return nil, errors.IncompatibleRecordError{}
	}
	var scratch [8]byte
	for _, v := range rec.Inputs {
		binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v))
		buf = append(buf, scratch[:]...)
	}
	for _, v := range rec.Ideal {
		binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v))
		buf = append(buf, scratch[:]...)
	}
	binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(rec.Significance))
	buf = append(buf, scratch[:]...)
	return buf, nil
}

// decode reads one encoded record from buf into rec, reusing rec's vectors
// when they already have the right widths
func (c *recordCodec) decode(buf []byte, rec *shifu.Record) {
	if len(rec.Inputs) != c.inputCount {
		rec.Inputs = make([]float64, c.inputCount)
	}
	if len(rec.Ideal) != c.idealCount {
		rec.Ideal = make([]float64, c.idealCount)
	}
	offset := 0
	for i := range rec.Inputs {
		rec.Inputs[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[offset:]))
		offset += 8
	}
	for i := range rec.Ideal {
		rec.Ideal[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[offset:]))
		offset += 8
	}
	rec.Significance = math.Float64frombits(binary.LittleEndian.Uint64(buf[offset:]))
}

// Fingerprint returns a stable 64-bit hash of a record's input vector, used
// for deterministic train/validation splits. Significance does not contribute,
// so resampling weight changes never move a record across partitions.
func Fingerprint(rec *shifu.Record) uint64 {
	d := xxhash.New()
	var scratch [8]byte
	for _, v := range rec.Inputs {
		binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v))
		_, _ = d.Write(scratch[:])
	}
	return d.Sum64()
}
