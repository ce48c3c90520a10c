package blockdev

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dsoprea/go-ext4"
)

// ErrNotFound is returned by ReadAll when the path does not exist.
var ErrNotFound = errors.New("file not found")

// Partition is a seekable view of the device starting Offset bytes in.
type Partition struct {
	Dev    *Device
	Offset int64

	pos int64
}

// Read reads from the current position, the start of the partition until the
// first Seek.
func (d *Partition) Read(p []byte) (int, error) {
	if d.pos < d.Offset {
		d.pos = d.Offset
	}
	n, err := d.Dev.ReadAt(p, d.pos)
	d.pos += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

func (d *Partition) Seek(offset int64, whence int) (int64, error) {
	end := d.Dev.Size()

	var pos int64
	switch whence {
	case io.SeekStart:
		pos = d.Offset + offset
	case io.SeekCurrent:
		pos = d.pos + offset
	case io.SeekEnd:
		pos = end + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}

	if pos > end || pos < d.Offset {
		return 0, fmt.Errorf("invalid offset %d (%d): %w", pos, offset, ErrOutOfRange)
	}
	d.pos = pos
	return pos - d.Offset, nil
}

func (d *Partition) blockGroupDescriptor(inode int) (*ext4.BlockGroupDescriptor, error) {
	if _, err := d.Seek(ext4.Superblock0Offset, io.SeekStart); err != nil {
		return nil, err
	}
	sb, err := ext4.NewSuperblockWithReader(d)
	if err != nil {
		return nil, fmt.Errorf("superblock: %w", err)
	}
	bgdl, err := ext4.NewBlockGroupDescriptorListWithReadSeeker(d, sb)
	if err != nil {
		return nil, fmt.Errorf("block group descriptors: %w", err)
	}
	return bgdl.GetWithAbsoluteInode(inode)
}

// ReadAll returns the content of the file at fullPath in the ext4 file system
// of the partition.
func (d *Partition) ReadAll(fullPath string) ([]byte, error) {
	want := strings.Trim(fullPath, "/")

	bgd, err := d.blockGroupDescriptor(ext4.InodeRootDirectory)
	if err != nil {
		return nil, err
	}
	dw, err := ext4.NewDirectoryWalk(d, bgd, ext4.InodeRootDirectory)
	if err != nil {
		return nil, err
	}

	var inodeNumber int
	for inodeNumber == 0 {
		p, de, err := dw.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("%s: %w", fullPath, ErrNotFound)
		} else if err != nil {
			return nil, err
		}
		if p != want {
			continue
		}
		if de.IsDirectory() {
			return nil, fmt.Errorf("%s is a directory", fullPath)
		}
		inodeNumber = int(de.Data().Inode)
	}

	if bgd, err = d.blockGroupDescriptor(inodeNumber); err != nil {
		return nil, err
	}
	inode, err := ext4.NewInodeWithReadSeeker(bgd, d, inodeNumber)
	if err != nil {
		return nil, err
	}
	en := ext4.NewExtentNavigatorWithReadSeeker(d, inode)
	return io.ReadAll(ext4.NewInodeReader(en))
}

// Hash returns the SHA256 of the first numBytes of the partition.
func (d *Partition) Hash(numBytes int64) ([]byte, error) {
	if _, err := d.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek: %w", err)
	}
	h := sha256.New()
	if _, err := io.CopyN(h, d, numBytes); err != nil {
		return nil, fmt.Errorf("failed to hash: %w", err)
	}
	return h.Sum(nil), nil
}
