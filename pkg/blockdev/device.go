// Package blockdev presents an SD card as byte addressable storage: an
// io.ReaderAt and io.WriterAt over the whole card, and a seekable Partition
// able to read files from an ext4 file system.
package blockdev

import (
	"errors"
	"fmt"
	"io"
)

// BlockSize is the logical block size of the device.
const BlockSize = 512

// BlockDevice moves whole logical blocks. sdhost.Host implements it.
type BlockDevice interface {
	Read(block uint32, buf []byte) error
	Write(block uint32, buf []byte) error
	BlockCount() uint32
}

// ErrOutOfRange is returned for accesses beyond the end of the device.
var ErrOutOfRange = errors.New("offset out of range")

// Device gives byte level access to a BlockDevice. Unaligned writes read the
// partial blocks first.
type Device struct {
	dev BlockDevice
}

// New wraps dev.
func New(dev BlockDevice) *Device {
	return &Device{dev: dev}
}

// Size returns the device size in bytes.
func (d *Device) Size() int64 {
	return int64(d.dev.BlockCount()) * BlockSize
}

// span returns the first block and the block count covering [off, end).
func span(off, end int64) (uint32, int64) {
	first := off / BlockSize
	last := (end + BlockSize - 1) / BlockSize
	return uint32(first), last - first
}

func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	size := d.Size()
	if off < 0 {
		return 0, fmt.Errorf("read at %d: %w", off, ErrOutOfRange)
	}
	if off >= size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	end := off + int64(len(p))
	var eof error
	if end > size {
		end, eof = size, io.EOF
	}

	first, n := span(off, end)
	buf := make([]byte, n*BlockSize)
	if err := d.dev.Read(first, buf); err != nil {
		return 0, fmt.Errorf("read blocks %d+%d: %w", first, n, err)
	}
	skip := off - int64(first)*BlockSize
	return copy(p, buf[skip:skip+end-off]), eof
}

func (d *Device) WriteAt(p []byte, off int64) (int, error) {
	end := off + int64(len(p))
	if off < 0 || end > d.Size() {
		return 0, fmt.Errorf("write %d bytes at %d: %w", len(p), off, ErrOutOfRange)
	}
	if len(p) == 0 {
		return 0, nil
	}

	first, n := span(off, end)
	skip := off - int64(first)*BlockSize
	buf := p
	if skip != 0 || end%BlockSize != 0 {
		buf = make([]byte, n*BlockSize)
		if err := d.dev.Read(first, buf); err != nil {
			return 0, fmt.Errorf("read blocks %d+%d: %w", first, n, err)
		}
		copy(buf[skip:], p)
	}
	if err := d.dev.Write(first, buf); err != nil {
		return 0, fmt.Errorf("write blocks %d+%d: %w", first, n, err)
	}
	return len(p), nil
}
