package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	uuid "github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/xiangpingbu/shifu"
)

// diskTier appends encoded records to a uuid-named file, guarded by an
// advisory lock so workers sharing a temp directory cannot collide on it
type diskTier struct {
	codec    *recordCodec
	path     string
	file     *os.File
	writer   *bufio.Writer
	lock     *flock.Flock
	scratch  []byte
	readBuf  []byte
	count    int64
	disposed bool
}

func createDiskTier(codec *recordCodec, dir string) (*diskTier, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("unable to generate dataset file name: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("shifu-dataset-%s.bin", id.String()))
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("unable to lock dataset file %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("dataset file %s is locked by another process", path)
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		lock.Unlock()
		os.Remove(lock.Path())
		return nil, fmt.Errorf("unable to create dataset file %s: %w", path, err)
	}
	return &diskTier{
		codec:   codec,
		path:    path,
		file:    file,
		writer:  bufio.NewWriterSize(file, 1<<16),
		lock:    lock,
		scratch: make([]byte, 0, codec.width()),
		readBuf: make([]byte, codec.width()),
	}, nil
}

func (d *diskTier) append(rec *shifu.Record) error {
	encoded, err := d.codec.encode(d.scratch[:0], rec)
	if err != nil {
		return err
	}
	if _, err := d.writer.Write(encoded); err != nil {
		return fmt.Errorf("unable to write record to %s: %w", d.path, err)
	}
	d.count++
	return nil
}

// flush pushes buffered writes to the file so positional reads see them
func (d *diskTier) flush() error {
	if d.writer.Buffered() == 0 {
		return nil
	}
	if err := d.writer.Flush(); err != nil {
		return fmt.Errorf("unable to flush %s: %w", d.path, err)
	}
	return nil
}

func (d *diskTier) readAt(position int64, rec *shifu.Record) error {
	if _, err := d.file.ReadAt(d.readBuf, position*d.codec.width()); err != nil {
		return fmt.Errorf("unable to read record %d from %s: %w", position, d.path, err)
	}
	d.codec.decode(d.readBuf, rec)
	return nil
}

// dispose closes, removes and unlocks the backing file. Safe to call twice.
func (d *diskTier) dispose() error {
	if d.disposed {
		return nil
	}
	d.disposed = true
	var result *multierror.Error
	if err := d.file.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := os.Remove(d.path); err != nil {
		result = multierror.Append(result, err)
	}
	if err := d.lock.Unlock(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := os.Remove(d.lock.Path()); err != nil && !os.IsNotExist(err) {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
