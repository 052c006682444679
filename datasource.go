package shifu

import "io"

// A RowParser turns a stream of raw training or scoring data into string
// rows, invoking a callback once per row. Implementations decide the wire
// format (delimiter-separated values, JSON lines); consumers decide what a
// row means. The slice passed to the callback may be reused between calls,
// so callers must copy any values they retain.
type RowParser interface {
	Parse(r io.Reader, fn func(row []string) error) error
}

// A RowSource streams raw rows to a consumer, binding stored data (files, a
// buffer) to the RowParser which decodes it. The callback row obeys the same
// reuse rule as RowParser.
type RowSource interface {
	Stream(fn func(row []string) error) error
}
