// Package memory provides a RowSource backed by in-memory buffers, primarily
// useful for testing consumers without touching disk.
package memory

import (
	"bytes"

	"github.com/xiangpingbu/shifu"
)

// DataSource streams raw rows from in-memory byte buffers, each parsed as
// one chunk of data
type DataSource struct {
	data   [][]byte
	parser shifu.RowParser
}

// CreateDataSource binds in-memory data chunks to the parser decoding them
func CreateDataSource(data [][]byte, parser shifu.RowParser) *DataSource {
	return &DataSource{data: data, parser: parser}
}

// Stream parses every chunk in order, invoking fn once per row
func (ms *DataSource) Stream(fn func(row []string) error) error {
	for _, chunk := range ms.data {
		if err := ms.parser.Parse(bytes.NewReader(chunk), fn); err != nil {
			return err
		}
	}
	return nil
}
