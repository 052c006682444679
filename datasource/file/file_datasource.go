package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xiangpingbu/shifu"
)

// DataSource streams raw rows from the files matching a glob. Files are
// visited whole and in lexical order, so shards stay contiguous.
type DataSource struct {
	glob   string
	parser shifu.RowParser
}

// CreateDataSource binds a glob of data files to the parser decoding them
func CreateDataSource(glob string, parser shifu.RowParser) *DataSource {
	return &DataSource{glob: glob, parser: parser}
}

// Files resolves the glob into the list of files this source will read. A
// glob matching nothing is an error.
func (fs *DataSource) Files() ([]string, error) {
	matches, err := filepath.Glob(fs.glob)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("glob %s produced 0 files", fs.glob)
	}
	return matches, nil
}

// Stream parses every matched file in order, invoking fn once per row
func (fs *DataSource) Stream(fn func(row []string) error) error {
	matches, err := fs.Files()
	if err != nil {
		return err
	}
	for _, path := range matches {
		if err := fs.streamFile(path, fn); err != nil {
			return fmt.Errorf("unable to stream %s: %w", path, err)
		}
	}
	return nil
}

func (fs *DataSource) streamFile(path string, fn func(row []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fs.parser.Parse(f, fn)
}
