package sdsim

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gregLibert/sdmmc/pkg/bits"
	"github.com/gregLibert/sdmmc/pkg/sdioc"
	"github.com/gregLibert/sdmmc/pkg/sdmmc"
)

func TestCSDBuilders(t *testing.T) {
	t.Run("Version 2.0", func(t *testing.T) {
		w := CSDv2(1000000, 0x5B5)
		b := bits.LittleEndian(w[:]...)
		want := map[int]byte{5: 0x40, 6: 0x42, 7: 0x0F, 9: 0x59, 10: 0x5B, 14: 0x40}
		for i, v := range b {
			if v != want[i] {
				t.Errorf("byte %d = %02X, want %02X", i, v, want[i])
			}
		}
	})

	t.Run("Version 1.0", func(t *testing.T) {
		w := CSDv1(0xFFF, 7, 9, 0x5B5)
		b := bits.LittleEndian(w[:]...)
		want := map[int]byte{4: 0x80, 5: 0x03, 6: 0xC0, 7: 0xFF, 8: 0x03, 9: 0x59, 10: 0x5B}
		for i, v := range b {
			if v != want[i] {
				t.Errorf("byte %d = %02X, want %02X", i, v, want[i])
			}
		}
	})

	t.Run("Derived from block count", func(t *testing.T) {
		if diff := cmp.Diff(CSDv1(3, 7, 9, 0x5B5), csdForBlocks(2048, 0x5B5)); diff != "" {
			t.Errorf("Mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestIdentification(t *testing.T) {
	sim := New(Options{HighCapacity: true, ReadyAfter: 2})

	steps := []struct {
		cmd      sdioc.Command
		wantErr  bool
		wantResp uint32
	}{
		{sdioc.Command{Index: sdmmc.CmdGoIdleState}, false, 0},
		{sdioc.Command{Index: sdmmc.CmdSendIfCond, Argument: 0x1AA}, false, 0x1AA},
		{sdioc.Command{Index: sdmmc.CmdAppCmd}, false, uint32(sdmmc.NewCardStatus(sdmmc.StateIdle, sdmmc.StatusReadyForData|sdmmc.StatusAppCmd))},
		{sdioc.Command{Index: sdmmc.AppCmdSDSendOpCond, Argument: 0x40100000}, false, 0x00FF8000},
		{sdioc.Command{Index: sdmmc.CmdAppCmd}, false, uint32(sdmmc.NewCardStatus(sdmmc.StateIdle, sdmmc.StatusReadyForData|sdmmc.StatusAppCmd))},
		{sdioc.Command{Index: sdmmc.AppCmdSDSendOpCond, Argument: 0x40100000}, false, 0xC0FF8000},
		{sdioc.Command{Index: sdmmc.CmdSendRelativeAddr}, false, 0x12340300},
		{sdioc.Command{Index: sdmmc.CmdSendCSD, Argument: 0x43210000}, true, 0},
	}

	for i, s := range steps {
		if err := sim.SendCommand(s.cmd); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got := sim.IrqFlag(sdioc.ErrorInt); got != s.wantErr {
			t.Errorf("step %d (%s): error interrupt %t", i, s.cmd, got)
		}
		if got := sim.Response(sdioc.Resp01); got != s.wantResp {
			t.Errorf("step %d (%s): response %08X, want %08X", i, s.cmd, got, s.wantResp)
		}
	}
	if sim.State() != sdmmc.StateStby {
		t.Errorf("state = %s", sim.State())
	}
}

func TestFIFOTransfer(t *testing.T) {
	sim := New(Options{})
	copy(sim.Image()[512:], []byte("block one"))

	if err := sim.ConfigureData(sdioc.DataConfig{BlockCount: 1, BlockSize: 512}); err != nil {
		t.Fatal(err)
	}
	sim.SendCommand(sdioc.Command{Index: sdmmc.CmdReadSingleBlock, Argument: 512, DataPresent: true})

	if !sim.Status(sdioc.BufferReadEnable) || !sim.IrqFlag(sdioc.BufferReadReady) {
		t.Fatal("no data in the FIFO")
	}
	if sim.IrqFlag(sdioc.TransferComplete) {
		t.Error("transfer complete before the FIFO was drained")
	}
	buf := make([]byte, 512)
	if err := sim.ReadBuffer(buf); err != nil {
		t.Fatal(err)
	}
	if string(buf[:9]) != "block one" {
		t.Errorf("read %q", buf[:9])
	}
	if !sim.IrqFlag(sdioc.TransferComplete) {
		t.Error("no transfer complete after the last block")
	}
	if err := sim.ReadBuffer(buf); err == nil {
		t.Error("Expected error reading an empty FIFO")
	}
}

func TestMisalignedStandardCapacityAddress(t *testing.T) {
	sim := New(Options{})
	sim.ConfigureData(sdioc.DataConfig{BlockCount: 1, BlockSize: 512})
	sim.SendCommand(sdioc.Command{Index: sdmmc.CmdReadSingleBlock, Argument: 100, DataPresent: true})

	status := sdmmc.CardStatus(sim.Response(sdioc.Resp01))
	if status&sdmmc.StatusAddressError == 0 {
		t.Errorf("status %s", status.Verbose())
	}
	if sim.Status(sdioc.BufferReadEnable) {
		t.Error("data offered for a rejected command")
	}
}

func TestDMAChannelChecks(t *testing.T) {
	ch := New(Options{}).DMA()
	tests := []struct {
		name string
		cfg  sdioc.ChannelConfig
	}{
		{"Two buffers", sdioc.ChannelConfig{Source: sdioc.Endpoint{Buffer: make([]byte, 512)}, Destination: sdioc.Endpoint{Buffer: make([]byte, 512)}, BlockSize: 128, Count: 1, Width: sdioc.Width32}},
		{"Two FIFOs", sdioc.ChannelConfig{Source: sdioc.Endpoint{FIFO: sdioc.Unit1}, Destination: sdioc.Endpoint{FIFO: sdioc.Unit1}, BlockSize: 128, Count: 1, Width: sdioc.Width32}},
		{"Short buffer", sdioc.ChannelConfig{Source: sdioc.Endpoint{FIFO: sdioc.Unit1}, Destination: sdioc.Endpoint{Buffer: make([]byte, 100)}, BlockSize: 128, Count: 1, Width: sdioc.Width32}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ch.Configure(tt.cfg); sdioc.ResultOf(err) != sdioc.InvalidParameter {
				t.Errorf("Configure = %v, want InvalidParameter", err)
			}
		})
	}
}
