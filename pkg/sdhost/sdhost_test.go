package sdhost

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-cmp/cmp"

	"github.com/gregLibert/sdmmc/pkg/sdcard"
	"github.com/gregLibert/sdmmc/pkg/sdioc"
	"github.com/gregLibert/sdmmc/pkg/sdmmc"
	"github.com/gregLibert/sdmmc/pkg/sdsim"
)

var testTiming = sdcard.Timing{TicksPerMs: 1, WriteTicksPerMs: 1}

func newHost(t *testing.T, opts sdsim.Options, cfg Config) (*Host, *sdsim.Card) {
	t.Helper()
	sim := sdsim.New(opts)
	h := New(sim, sim.DMA(), testTiming, cfg)
	if err := h.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	sim.ResetLog()
	return h, sim
}

// healOnRetry puts the card back in the slot before the first retry.
type healOnRetry struct {
	sim   *sdsim.Card
	calls int
}

func (b *healOnRetry) NextBackOff() time.Duration {
	b.calls++
	b.sim.Removed = false
	return 0
}

func (b *healOnRetry) Reset() {}

func TestInit(t *testing.T) {
	h, _ := newHost(t, sdsim.Options{HighCapacity: true, Blocks: 4096}, DefaultConfig())
	if !h.Ready() {
		t.Error("host not ready after Init")
	}
	want := sdcard.Info{
		Type:          sdcard.HighCapacity,
		Version:       sdcard.Version2x,
		Class:         0x5B5,
		RCA:           0x1234,
		BlockCount:    4096,
		BlockSize:     512,
		LogBlockCount: 4096,
		LogBlockSize:  512,
	}
	if diff := cmp.Diff(want, h.Info()); diff != "" {
		t.Errorf("Mismatch (-want +got):\n%s", diff)
	}
	if h.BlockCount() != 4096 {
		t.Errorf("BlockCount() = %d", h.BlockCount())
	}
}

func TestInitWithRetry(t *testing.T) {
	t.Run("Recovers once the card is back", func(t *testing.T) {
		sim := sdsim.New(sdsim.Options{})
		sim.Removed = true
		h := New(sim, sim.DMA(), testTiming, DefaultConfig())
		bo := &healOnRetry{sim: sim}

		if err := h.InitWithRetry(context.Background(), bo); err != nil {
			t.Fatalf("InitWithRetry failed: %v", err)
		}
		if bo.calls != 1 {
			t.Errorf("%d retries, want 1", bo.calls)
		}
		if !h.Ready() {
			t.Error("host not ready")
		}
	})

	t.Run("Gives up", func(t *testing.T) {
		sim := sdsim.New(sdsim.Options{})
		sim.Removed = true
		h := New(sim, sim.DMA(), testTiming, DefaultConfig())

		err := h.InitWithRetry(context.Background(), backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2))
		if sdioc.ResultOf(err) != sdioc.AccessRights {
			t.Errorf("InitWithRetry = %v, want AccessRights", err)
		}
		var resets int
		for _, index := range sim.Indexes() {
			if index == sdmmc.CmdGoIdleState {
				resets++
			}
		}
		if resets != 3 {
			t.Errorf("%d CMD0 sent, want 3", resets)
		}
	})

	t.Run("Invalid parameters are permanent", func(t *testing.T) {
		sim := sdsim.New(sdsim.Options{Unit: sdioc.Unit(3)})
		h := New(sim, nil, testTiming, DefaultConfig())
		bo := &healOnRetry{sim: sim}

		err := h.InitWithRetry(context.Background(), bo)
		if sdioc.ResultOf(err) != sdioc.InvalidParameter {
			t.Errorf("InitWithRetry = %v, want InvalidParameter", err)
		}
		if bo.calls != 0 {
			t.Errorf("%d retries of a permanent failure", bo.calls)
		}
		if len(sim.Commands) != 0 {
			t.Errorf("%d commands sent", len(sim.Commands))
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		sim := sdsim.New(sdsim.Options{})
		sim.Removed = true
		h := New(sim, sim.DMA(), testTiming, DefaultConfig())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := h.InitWithRetry(ctx, &backoff.ZeroBackOff{}); err == nil {
			t.Error("Expected error with a cancelled context")
		}
	})
}

func TestReadWriteChunks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBlocks = 3
	h, sim := newHost(t, sdsim.Options{HighCapacity: true}, cfg)

	data := make([]byte, 7*sdcard.BlockSize)
	for i := range data {
		data[i] = byte(i / sdcard.BlockSize)
	}
	if err := h.Write(20, data); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var writes []uint32
	for _, cmd := range sim.Commands {
		if cmd.Index == sdmmc.CmdWriteMultipleBlock || cmd.Index == sdmmc.CmdWriteSingleBlock {
			writes = append(writes, cmd.Argument)
		}
	}
	if diff := cmp.Diff([]uint32{20, 23, 26}, writes); diff != "" {
		t.Errorf("write commands mismatch (-want +got):\n%s", diff)
	}

	got := make([]byte, len(data))
	if err := h.Read(20, got); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("read back differs from written data")
	}
}

func TestReadErrors(t *testing.T) {
	h, sim := newHost(t, sdsim.Options{}, DefaultConfig())

	tests := []struct {
		name  string
		block uint32
		buf   []byte
		want  sdioc.Result
	}{
		{"Empty buffer", 0, nil, sdioc.InvalidParameter},
		{"Partial block", 0, make([]byte, 100), sdioc.InvalidParameter},
		{"Past the end", 2047, make([]byte, 2*sdcard.BlockSize), sdioc.InvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := h.Read(tt.block, tt.buf); sdioc.ResultOf(err) != tt.want {
				t.Errorf("Read = %v, want %s", err, tt.want)
			}
		})
	}
	if len(sim.Commands) != 0 {
		t.Errorf("%d commands sent for rejected reads", len(sim.Commands))
	}
}

func TestEraseAndMode(t *testing.T) {
	h, sim := newHost(t, sdsim.Options{}, DefaultConfig())
	copy(sim.Block(5), bytes.Repeat([]byte{0xFF}, sdcard.BlockSize))

	if err := h.Erase(4, 6); err != nil {
		t.Fatalf("Erase failed: %v", err)
	}
	if !bytes.Equal(sim.Block(5), make([]byte, sdcard.BlockSize)) {
		t.Error("block 5 not erased")
	}

	if err := h.SetDeviceMode(sdcard.PollingMode); err != nil {
		t.Fatal(err)
	}
	if h.DeviceMode() != sdcard.PollingMode {
		t.Errorf("DeviceMode() = %s", h.DeviceMode())
	}
	if err := h.SetDeviceMode(sdcard.DeviceMode(9)); sdioc.ResultOf(err) != sdioc.InvalidParameter {
		t.Errorf("SetDeviceMode = %v", err)
	}
	if h.ErrorCode() != sdcard.CodeNone {
		t.Errorf("ErrorCode() = %s", h.ErrorCode().Verbose())
	}
}
