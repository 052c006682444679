package dsv

import (
	"encoding/csv"
	"io"

	"github.com/xiangpingbu/shifu/config"
)

// ParserConf configures a DSV Parser
type ParserConf struct {
	HeaderLines int    // The number of lines to ignore from the beginning of the data. Defaults to 0.
	Delimiter   rune   // The delimiter separating columns. Defaults to ,
	Comment     rune   // Lines beginning with the comment character are ignored. Cannot be equal to the Delimiter. Defaults to no comment character.
	NilValue    string // A special string which represents nil values in the data. Parsed as the empty string. Defaults to "" (the empty string).
}

// Parser streams rows from delimiter-separated data
type Parser struct {
	conf *ParserConf
}

// CreateParser returns a new DSV Parser
func CreateParser(conf *ParserConf) *Parser {
	if conf.Delimiter == 0 {
		conf.Delimiter = ','
	}
	return &Parser{conf: conf}
}

// CreateParserForDataSet returns a DSV Parser matching a job's dataset
// configuration: its delimiter, plus one header line when the data carries
// column names in its first row
func CreateParserForDataSet(ds *config.DataSetConf) *Parser {
	conf := &ParserConf{}
	for _, r := range ds.DataDelimiter {
		conf.Delimiter = r
		break
	}
	if ds.HeaderInFirstRow {
		conf.HeaderLines = 1
	}
	return CreateParser(conf)
}

// Parse reads DSV data from r, invoking fn once per row. The row slice is
// reused between calls, so fn must copy any value it retains.
func (p *Parser) Parse(r io.Reader, fn func(row []string) error) error {
	reader := csv.NewReader(r)
	reader.Comma = p.conf.Delimiter
	reader.Comment = p.conf.Comment
	// raw rows may be ragged; width handling belongs to the vectorizer
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	// ignore header lines, if configured to do so
	for i := 0; i < p.conf.HeaderLines; i++ {
		if _, err := reader.Read(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(p.conf.NilValue) > 0 {
			for i, value := range row {
				if value == p.conf.NilValue {
					row[i] = ""
				}
			}
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}
