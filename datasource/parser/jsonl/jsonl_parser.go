package jsonl

import (
	"bufio"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

// ParserConf configures a JSONL Parser, suitable for JSON lines data
type ParserConf struct {
	Columns       []string // gjson paths extracted from each line, in raw-row column order
	HeaderLines   int      // The number of lines to ignore from the beginning of the data. Defaults to 0.
	MaxBufferSize int      // Maximum size in bytes of the buffer used to read lines. Defaults to bufio.MaxScanTokenSize.
}

// Parser streams positional rows from JSON lines data
type Parser struct {
	conf *ParserConf
}

// CreateParser returns a new JSONL Parser. Columns are extracted lazily from
// each line using their configured path; values which do not correspond to a
// configured column are ignored.
func CreateParser(conf *ParserConf) *Parser {
	if conf.MaxBufferSize == 0 {
		conf.MaxBufferSize = bufio.MaxScanTokenSize
	}
	return &Parser{conf: conf}
}

// Parse reads JSON lines from r, extracting the configured paths from each
// line into a positional row and invoking fn with it. Paths missing from a
// line yield the empty string. The row slice is reused between calls, so fn
// must copy any value it retains.
func (p *Parser) Parse(r io.Reader, fn func(row []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), p.conf.MaxBufferSize)

	// ignore header lines, if configured to do so
	for i := 0; i < p.conf.HeaderLines; i++ {
		if !scanner.Scan() {
			return scanner.Err()
		}
	}
	row := make([]string, len(p.conf.Columns))
	for scanner.Scan() {
		line := scanner.Text()
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		for i, path := range p.conf.Columns {
			row[i] = gjson.Get(line, path).String()
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return scanner.Err()
}
