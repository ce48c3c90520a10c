// Package sdsim simulates an SD card behind an SDIOC controller. Card
// implements sdioc.Controller and its Channel implements sdioc.DMA, so a
// session can be driven end to end without hardware: identification, bus and
// speed setup, block transfers in polling or DMA mode, erase and register
// reads all act on an in-memory image.
//
// A Card is not safe for concurrent use.
package sdsim

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/gregLibert/sdmmc/pkg/sdioc"
	"github.com/gregLibert/sdmmc/pkg/sdmmc"
)

// BlockSize is the size of one block of the image.
const BlockSize = 512

// Options describes the simulated card.
type Options struct {
	// Unit is the controller instance, Unit1 when zero.
	Unit sdioc.Unit
	// Blocks is the capacity in 512-byte blocks, 2048 when zero.
	Blocks uint32
	// HighCapacity makes a block addressed SDHC card. It is ignored for
	// version 1.x cards.
	HighCapacity bool
	// Version1 makes a card that does not answer CMD8.
	Version1 bool
	// ReadyAfter is the ACMD41 call that first reports power-up done, 1 when zero.
	ReadyAfter int
	// RCA is the published relative address, 0x1234 when zero.
	RCA uint16
	CID [4]uint32
	// CSD overrides the register derived from the capacity.
	CSD *[4]uint32
	// Class is the command class mask, 0x5B5 when zero.
	Class uint16
	// Locked sets CARD_IS_LOCKED in every R1 response.
	Locked bool
	// HighSpeed makes the card accept the CMD6 high speed switch.
	HighSpeed bool
	// BusyPolls is how long DAT0 stays low after a write or an erase.
	BusyPolls int
	// NotReadyPolls is how many CMD13 answers after a write or an erase lack
	// READY_FOR_DATA.
	NotReadyPolls int
}

func (o Options) withDefaults() Options {
	if o.Unit == 0 {
		o.Unit = sdioc.Unit1
	}
	if o.Blocks == 0 {
		o.Blocks = 2048
	}
	if o.Version1 {
		o.HighCapacity = false
	}
	if o.ReadyAfter == 0 {
		o.ReadyAfter = 1
	}
	if o.RCA == 0 {
		o.RCA = 0x1234
	}
	if o.Class == 0 {
		o.Class = 0x5B5
	}
	if o.CID == [4]uint32{} {
		o.CID = [4]uint32{0x0A000000, 0x30303132, 0x53443136, 0x035344}
	}
	return o
}

// Card is the simulated card together with its controller.
type Card struct {
	opts  Options
	image []byte
	csd   [4]uint32
	dma   *Channel

	host        sdioc.HostConfig
	busWidth    sdioc.BusWidth
	speed       sdioc.SpeedMode
	clock       sdioc.Clock
	dataTimeout sdioc.DataTimeout
	data        sdioc.DataConfig

	state       sdmmc.CardState
	appCmd      bool
	opCondCalls int
	eraseStart  uint64
	eraseEnd    uint64

	irq      sdioc.IrqFlag
	resp     [4]uint32
	tcDelay  bool
	rx       []byte
	txOff    uint64
	txLeft   int
	busy     int
	notReady int

	// Removed makes the card detect logic report an empty slot.
	Removed bool
	// Stalled freezes every data phase: no FIFO data, no transfer complete.
	Stalled bool
	// Commands lists every command sent, in order.
	Commands []sdioc.Command
}

// New creates a card with a zeroed image.
func New(opts Options) *Card {
	opts = opts.withDefaults()
	c := &Card{
		opts:  opts,
		image: make([]byte, uint64(opts.Blocks)*BlockSize),
		clock: sdioc.Clock400K,
	}
	c.dma = &Channel{card: c}
	switch {
	case opts.CSD != nil:
		c.csd = *opts.CSD
	case opts.HighCapacity:
		c.csd = CSDv2(opts.Blocks/1024-1, opts.Class)
	default:
		c.csd = csdForBlocks(opts.Blocks, opts.Class)
	}
	return c
}

// DMA returns the DMA channel wired to the card FIFO.
func (c *Card) DMA() *Channel { return c.dma }

// Image exposes the card content.
func (c *Card) Image() []byte { return c.image }

// Block returns a copy of one block of the image.
func (c *Card) Block(n uint32) []byte {
	off := uint64(n) * BlockSize
	return append([]byte(nil), c.image[off:off+BlockSize]...)
}

// State returns the current card state.
func (c *Card) State() sdmmc.CardState { return c.state }

// BusWidth returns the controller bus width.
func (c *Card) BusWidth() sdioc.BusWidth { return c.busWidth }

// Clock returns the controller card clock.
func (c *Card) Clock() sdioc.Clock { return c.clock }

// SpeedMode returns the controller speed mode.
func (c *Card) SpeedMode() sdioc.SpeedMode { return c.speed }

// DataConfig returns the last programmed data path.
func (c *Card) DataConfig() sdioc.DataConfig { return c.data }

// Indexes lists the indexes of the commands sent so far.
func (c *Card) Indexes() []uint8 {
	out := make([]uint8, len(c.Commands))
	for i, cmd := range c.Commands {
		out[i] = cmd.Index
	}
	return out
}

// ResetLog forgets the commands sent so far.
func (c *Card) ResetLog() { c.Commands = nil }

func (c *Card) Unit() sdioc.Unit { return c.opts.Unit }

func (c *Card) Init(cfg sdioc.HostConfig) error {
	if cfg.Clock == 0 {
		return fmt.Errorf("host clock: %w", sdioc.InvalidParameter)
	}
	c.host = cfg
	c.clock = cfg.Clock
	c.busWidth = cfg.BusWidth
	c.speed = cfg.SpeedMode
	c.irq = 0
	return nil
}

func (c *Card) Response(reg sdioc.ResponseRegister) uint32 {
	switch reg {
	case sdioc.Resp23:
		return c.resp[1]
	case sdioc.Resp45:
		return c.resp[2]
	case sdioc.Resp67:
		return c.resp[3]
	default:
		return c.resp[0]
	}
}

func (c *Card) Status(flag sdioc.StatusFlag) bool {
	switch flag {
	case sdioc.BufferReadEnable:
		return len(c.rx) > 0
	case sdioc.BufferWriteEnable:
		return c.txLeft > 0
	case sdioc.CardInserted, sdioc.CardDetectPinLvl:
		return !c.Removed
	case sdioc.CardStateStable, sdioc.CmdPinLvl:
		return true
	case sdioc.Data0PinLvl:
		if c.busy > 0 {
			c.busy--
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Card) IrqFlag(flag sdioc.IrqFlag) bool {
	switch flag {
	case sdioc.BufferReadReady:
		return len(c.rx) > 0
	case sdioc.BufferWriteReady:
		return c.txLeft > 0
	case sdioc.TransferComplete:
		// A DMA transfer completes one poll after the command phase.
		if c.tcDelay {
			c.tcDelay = false
			c.irq |= sdioc.TransferComplete
			return false
		}
	}
	return c.irq&flag != 0
}

func (c *Card) ClearIrqFlag(flag sdioc.IrqFlag) {
	c.irq &^= flag
}

func (c *Card) ConfigureData(cfg sdioc.DataConfig) error {
	if cfg.BlockCount == 0 || cfg.BlockSize == 0 || cfg.BlockSize > BlockSize {
		return fmt.Errorf("data config %+v: %w", cfg, sdioc.InvalidParameter)
	}
	c.data = cfg
	return nil
}

func (c *Card) SetDataTimeout(t sdioc.DataTimeout) error {
	if t > sdioc.DataTimeout2e27 {
		return fmt.Errorf("data timeout %d: %w", t, sdioc.InvalidParameter)
	}
	c.dataTimeout = t
	return nil
}

func (c *Card) ReadBuffer(p []byte) error {
	if len(c.rx) < len(p) {
		return fmt.Errorf("read %d bytes, %d pending: %w", len(p), len(c.rx), sdioc.Error)
	}
	copy(p, c.rx)
	c.rx = c.rx[len(p):]
	if len(c.rx) == 0 {
		c.rx = nil
		c.irq |= sdioc.TransferComplete
		c.state = sdmmc.StateTran
	}
	return nil
}

func (c *Card) WriteBuffer(p []byte) error {
	if c.txLeft < len(p) {
		return fmt.Errorf("write %d bytes, %d expected: %w", len(p), c.txLeft, sdioc.Error)
	}
	copy(c.image[c.txOff:], p)
	c.txOff += uint64(len(p))
	c.txLeft -= len(p)
	if c.txLeft == 0 {
		c.programmed()
	}
	return nil
}

func (c *Card) SetBusWidth(w sdioc.BusWidth) error {
	if w > sdioc.BusWidth1Bit {
		return fmt.Errorf("bus width %d: %w", w, sdioc.InvalidParameter)
	}
	c.busWidth = w
	return nil
}

func (c *Card) SetSpeedMode(m sdioc.SpeedMode) {
	c.speed = m
}

func (c *Card) SetClock(clk sdioc.Clock) error {
	if clk == 0 {
		return fmt.Errorf("clock: %w", sdioc.InvalidParameter)
	}
	c.clock = clk
	return nil
}

// programmed ends a write: transfer complete, then the busy phase.
func (c *Card) programmed() {
	c.irq |= sdioc.TransferComplete
	c.busy = c.opts.BusyPolls
	c.notReady = c.opts.NotReadyPolls
	c.state = sdmmc.StatePrg
	glog.V(3).Infof("sdsim: data programmed")
}
