package dataset

import (
	"github.com/xiangpingbu/shifu"
)

// memoryTier holds encoded records in one flat, append-grown buffer
type memoryTier struct {
	codec *recordCodec
	data  []byte
	count int64
}

func createMemoryTier(codec *recordCodec) *memoryTier {
	return &memoryTier{codec: codec}
}

func (m *memoryTier) append(rec *shifu.Record) error {
	data, err := m.codec.encode(m.data, rec)
	if err != nil {
		return err
	}
	m.data = data
	m.count++
	return nil
}

// bytes returns the current size of the backing buffer
func (m *memoryTier) bytes() int64 {
	return int64(len(m.data))
}

func (m *memoryTier) readAt(position int64, rec *shifu.Record) {
	offset := position * m.codec.width()
	m.codec.decode(m.data[offset:offset+m.codec.width()], rec)
}
