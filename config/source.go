package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/colinmarc/hdfs/v2"

	"github.com/xiangpingbu/shifu/errors"
)

// SourceType identifies where configuration and data files are stored
type SourceType = string

const (
	// SourceLocal reads from the local filesystem
	SourceLocal SourceType = "LOCAL"
	// SourceHDFS reads from a Hadoop distributed filesystem
	SourceHDFS SourceType = "HDFS"
)

// OpenSource opens path for reading from the given source type. HDFS sources
// require namenode addresses in the supplied RuntimeProps.
func OpenSource(path string, source SourceType, props *RuntimeProps) (io.ReadCloser, error) {
	switch strings.ToUpper(source) {
	case SourceHDFS:
		return openHDFS(path, props)
	case SourceLocal, "":
		return os.Open(path)
	default:
		return nil, fmt.Errorf("%s is an unknown SourceType", source)
	}
}

func openHDFS(path string, props *RuntimeProps) (io.ReadCloser, error) {
	if props == nil || len(props.HDFSAddresses) == 0 {
		return nil, errors.MissingConfigError{Name: "RuntimeProps.HDFSAddresses"}
	}
	client, err := hdfs.NewClient(hdfs.ClientOptions{
		Addresses: props.HDFSAddresses,
		User:      props.HDFSUser,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to namenode: %w", err)
	}
	f, err := client.Open(path)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	return &hdfsFile{FileReader: f, client: client}, nil
}

// hdfsFile closes its client along with the open file
type hdfsFile struct {
	*hdfs.FileReader
	client *hdfs.Client
}

func (h *hdfsFile) Close() error {
	err := h.FileReader.Close()
	if cerr := h.client.Close(); err == nil {
		err = cerr
	}
	return err
}
