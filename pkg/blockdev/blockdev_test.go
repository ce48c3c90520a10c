package blockdev

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gregLibert/sdmmc/pkg/sdcard"
	"github.com/gregLibert/sdmmc/pkg/sdhost"
	"github.com/gregLibert/sdmmc/pkg/sdsim"
)

// memDevice is a block device backed by a slice, logging block accesses.
type memDevice struct {
	data   []byte
	reads  []uint32
	writes []uint32
}

func newMemDevice(blocks int) *memDevice {
	m := &memDevice{data: make([]byte, blocks*BlockSize)}
	for i := range m.data {
		m.data[i] = byte(i)
	}
	return m
}

func (m *memDevice) Read(block uint32, buf []byte) error {
	m.reads = append(m.reads, block)
	copy(buf, m.data[int(block)*BlockSize:])
	return nil
}

func (m *memDevice) Write(block uint32, buf []byte) error {
	m.writes = append(m.writes, block)
	copy(m.data[int(block)*BlockSize:], buf)
	return nil
}

func (m *memDevice) BlockCount() uint32 { return uint32(len(m.data) / BlockSize) }

func TestReadAt(t *testing.T) {
	tests := []struct {
		name    string
		off     int64
		len     int
		wantN   int
		wantErr error
	}{
		{"Aligned block", 512, 512, 512, nil},
		{"Unaligned across blocks", 500, 100, 100, nil},
		{"Short read at the end", 4*512 - 10, 64, 10, io.EOF},
		{"At the end", 4 * 512, 1, 0, io.EOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMemDevice(4)
			d := New(m)
			p := make([]byte, tt.len)
			n, err := d.ReadAt(p, tt.off)
			if n != tt.wantN || err != tt.wantErr {
				t.Fatalf("ReadAt() = %d, %v, want %d, %v", n, err, tt.wantN, tt.wantErr)
			}
			if !bytes.Equal(p[:n], m.data[tt.off:tt.off+int64(n)]) {
				t.Errorf("data mismatch")
			}
		})
	}

	if _, err := New(newMemDevice(1)).ReadAt(make([]byte, 1), -1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("negative offset: %v", err)
	}
}

func TestWriteAt(t *testing.T) {
	t.Run("Unaligned keeps the neighbours", func(t *testing.T) {
		m := newMemDevice(4)
		want := append([]byte(nil), m.data...)
		copy(want[510:], "hello")

		n, err := New(m).WriteAt([]byte("hello"), 510)
		if err != nil || n != 5 {
			t.Fatalf("WriteAt() = %d, %v", n, err)
		}
		if !bytes.Equal(m.data, want) {
			t.Error("device content mismatch")
		}
		if diff := cmp.Diff([]uint32{0}, m.reads); diff != "" {
			t.Errorf("reads mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]uint32{0}, m.writes); diff != "" {
			t.Errorf("writes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Aligned skips the read", func(t *testing.T) {
		m := newMemDevice(4)
		if _, err := New(m).WriteAt(make([]byte, 1024), 1024); err != nil {
			t.Fatal(err)
		}
		if len(m.reads) != 0 {
			t.Errorf("%d reads for an aligned write", len(m.reads))
		}
		if diff := cmp.Diff([]uint32{2}, m.writes); diff != "" {
			t.Errorf("writes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Past the end", func(t *testing.T) {
		m := newMemDevice(1)
		if _, err := New(m).WriteAt(make([]byte, 10), 510); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("WriteAt = %v, want ErrOutOfRange", err)
		}
		if len(m.writes) != 0 {
			t.Error("device written")
		}
	})
}

func TestPartitionSeek(t *testing.T) {
	p := &Partition{Dev: New(newMemDevice(4)), Offset: 1024}

	tests := []struct {
		name    string
		offset  int64
		whence  int
		want    int64
		wantErr bool
	}{
		{"Start", 10, io.SeekStart, 10, false},
		{"Current", 5, io.SeekCurrent, 15, false},
		{"End", -24, io.SeekEnd, 1000, false},
		{"Before the partition", -2000, io.SeekCurrent, 0, true},
		{"Past the end", 1, io.SeekEnd, 0, true},
		{"Bad whence", 0, 7, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Seek(tt.offset, tt.whence)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Seek() error = %v, wantErr %t", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Seek() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPartitionReadBeforeSeek(t *testing.T) {
	m := newMemDevice(4)
	p := &Partition{Dev: New(m), Offset: 1024}

	got := make([]byte, 16)
	if _, err := io.ReadFull(p, got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, m.data[1024:1040]) {
		t.Errorf("Read() = % X, want the start of the partition", got)
	}
	if pos, _ := p.Seek(0, io.SeekCurrent); pos != 16 {
		t.Errorf("position = %d, want 16", pos)
	}
}

func TestPartitionReadAndHash(t *testing.T) {
	m := newMemDevice(4)
	p := &Partition{Dev: New(m), Offset: 512}

	if _, err := p.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(p)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !bytes.Equal(got, m.data[512:]) {
		t.Error("partition content mismatch")
	}

	h, err := p.Hash(700)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	want := sha256.Sum256(m.data[512 : 512+700])
	if !bytes.Equal(h, want[:]) {
		t.Errorf("Hash() = %x, want %x", h, want)
	}

	if _, err := p.Hash(4 * 512); err == nil {
		t.Error("Expected error hashing past the end")
	}
}

func TestSimulatedCard(t *testing.T) {
	sim := sdsim.New(sdsim.Options{HighCapacity: true})
	h := sdhost.New(sim, sim.DMA(), sdcard.Timing{TicksPerMs: 1, WriteTicksPerMs: 1}, sdhost.DefaultConfig())
	if err := h.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	d := New(h)

	if d.Size() != 2048*512 {
		t.Errorf("Size() = %d", d.Size())
	}
	msg := []byte("written through the block layer")
	if _, err := d.WriteAt(msg, 3*512+300); err != nil {
		t.Fatalf("WriteAt failed: %v", err)
	}
	if !bytes.Equal(sim.Image()[3*512+300:][:len(msg)], msg) {
		t.Error("message not on the card")
	}

	got := make([]byte, len(msg))
	if _, err := d.ReadAt(got, 3*512+300); err != nil {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("ReadAt() = %q", got)
	}
}

// ext4Card loads testdata/hierarchy_32.ext4, a 1MiB ext4 file system, on a
// simulated card behind an initialized host.
func ext4Card(t *testing.T) *Partition {
	t.Helper()
	img, err := os.ReadFile("testdata/hierarchy_32.ext4")
	if err != nil {
		t.Fatal(err)
	}
	sim := sdsim.New(sdsim.Options{HighCapacity: true, Blocks: uint32(len(img) / BlockSize)})
	copy(sim.Image(), img)

	h := sdhost.New(sim, sim.DMA(), sdcard.Timing{TicksPerMs: 1, WriteTicksPerMs: 1}, sdhost.DefaultConfig())
	if err := h.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return &Partition{Dev: New(h)}
}

func TestPartitionReadAll(t *testing.T) {
	p := ext4Card(t)

	tests := []struct {
		path string
		want string
	}{
		{"/directory1/subdirectory1/fortune3", "Excellent day for putting Slinkies on an escalator.\n"},
		{"directory2/fortune9", "Courage is your greatest present need.\n"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := p.ReadAll(tt.path)
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, string(got)); diff != "" {
				t.Errorf("Mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("Multi-block file", func(t *testing.T) {
		got, err := p.ReadAll("/thejungle.txt")
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}
		sum := sha256.Sum256(got)
		if len(got) != 849597 || hex.EncodeToString(sum[:]) != "a6f532cdd131642560ef7c299c7f75f8206f03cdace072358c9dd65bc8a9b652" {
			t.Errorf("read %d bytes with SHA256 %x", len(got), sum)
		}
	})

	t.Run("Missing file", func(t *testing.T) {
		if _, err := p.ReadAll("/directory1/fortune42"); !errors.Is(err, ErrNotFound) {
			t.Errorf("ReadAll = %v, want ErrNotFound", err)
		}
	})

	t.Run("Directory", func(t *testing.T) {
		if _, err := p.ReadAll("/directory1"); err == nil {
			t.Error("Expected error reading a directory")
		}
	})
}
