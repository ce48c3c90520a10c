package sdcard

import (
	"fmt"

	"github.com/gregLibert/sdmmc/pkg/sdioc"
	"github.com/gregLibert/sdmmc/pkg/sdmmc"
)

// BlockSize is the logical block size exposed to callers.
const BlockSize = 512

// CardType is the capacity class of the card, decided during power-on.
type CardType uint8

const (
	StandardCapacity CardType = 0
	HighCapacity     CardType = 1
	SecuredCard      CardType = 3
)

func (t CardType) String() string {
	switch t {
	case StandardCapacity:
		return "SDSC"
	case HighCapacity:
		return "SDHC/SDXC"
	case SecuredCard:
		return "Secured"
	default:
		return fmt.Sprintf("CardType(%d)", uint8(t))
	}
}

// CardVersion is the physical layer version class.
type CardVersion uint8

const (
	Version1x CardVersion = 0
	Version2x CardVersion = 1
)

func (v CardVersion) String() string {
	if v == Version2x {
		return "2.0+"
	}
	return "1.x"
}

// DeviceMode selects how data blocks move between the FIFO and memory.
type DeviceMode uint8

const (
	PollingMode DeviceMode = 0
	DMAMode     DeviceMode = 1
)

func (m DeviceMode) String() string {
	if m == DMAMode {
		return "DMA"
	}
	return "polling"
}

// Context records the kind of the last transfer started.
type Context uint32

const (
	ContextNone               Context = 0x00
	ContextReadSingleBlock    Context = 0x01
	ContextReadMultipleBlock  Context = 0x02
	ContextInterrupt          Context = 0x08
	ContextWriteSingleBlock   Context = 0x10
	ContextWriteMultipleBlock Context = 0x20
	ContextDMA                Context = 0x80
)

// Info is what the session knows about the card once initialized.
type Info struct {
	Type    CardType
	Version CardVersion
	// Class is the 12-bit command class support mask from the CSD.
	Class uint16
	RCA   uint16
	// BlockCount and BlockSize are in the card's native read block length.
	BlockCount uint32
	BlockSize  uint32
	// LogBlockCount and LogBlockSize are in 512-byte logical blocks.
	LogBlockCount uint32
	LogBlockSize  uint32
}

// Capacity returns the card size in bytes.
func (i Info) Capacity() uint64 {
	return uint64(i.LogBlockCount) * uint64(i.LogBlockSize)
}

// Registers holds the raw card registers captured during initialization.
type Registers struct {
	OCR uint32
	CID [4]uint32
	CSD [4]uint32
	SCR [2]uint32
	RCA uint16
}

// Config is the set of parameters applied by Init.
type Config struct {
	BusWidth  sdioc.BusWidth
	Clock     sdioc.Clock
	SpeedMode sdioc.SpeedMode
	// Host configures the controller before the card is touched.
	Host sdioc.HostConfig
}

// DefaultConfig is a 4-bit normal speed setup at 25MHz with a 400kHz
// identification clock.
func DefaultConfig() Config {
	return Config{
		BusWidth:  sdioc.BusWidth4Bit,
		Clock:     sdioc.Clock25M,
		SpeedMode: sdioc.NormalSpeed,
		Host: sdioc.HostConfig{
			Clock:     sdioc.Clock400K,
			BusWidth:  sdioc.BusWidth1Bit,
			SpeedMode: sdioc.NormalSpeed,
		},
	}
}

// Timing converts millisecond timeouts into poll counts. Reads and commands
// use TicksPerMs, the write path spins on a slower loop and uses WriteTicksPerMs.
type Timing struct {
	TicksPerMs      uint32
	WriteTicksPerMs uint32
}

// TimingForCoreClock derives the poll rates for a core running at hz.
func TimingForCoreClock(hz uint32) Timing {
	return Timing{TicksPerMs: hz / 8 / 1000, WriteTicksPerMs: hz / 50 / 1000}
}

// Card is one SD card session bound to a controller unit and, optionally, a
// DMA channel. It is not safe for concurrent use.
type Card struct {
	ctrl   sdioc.Controller
	dma    sdioc.DMA
	cmd    *sdmmc.Client
	timing Timing
	cfg    Config

	mode      DeviceMode
	errorCode ErrorCode
	context   Context
	status    sdmmc.CardStatus
	info      Info
	regs      Registers
}

// New creates a session. dma may be nil, in which case transfers fall back to
// polling. The session starts in DMA mode.
func New(ctrl sdioc.Controller, dma sdioc.DMA, timing Timing) *Card {
	return &Card{
		ctrl:   ctrl,
		dma:    dma,
		cmd:    sdmmc.NewClient(ctrl, timing.TicksPerMs),
		timing: timing,
		mode:   DMAMode,
	}
}

// Commands exposes the command layer of the session, e.g. to record a trace.
func (c *Card) Commands() *sdmmc.Client { return c.cmd }

// Info returns the card information gathered so far.
func (c *Card) Info() Info { return c.info }

// Registers returns the raw registers gathered so far.
func (c *Card) Registers() Registers { return c.regs }

// ErrorCode returns the sticky diagnostic flags.
func (c *Card) ErrorCode() ErrorCode { return c.errorCode }

// Context returns the kind of the last transfer started.
func (c *Card) Context() Context { return c.context }

// CardStatus returns the last R1 status the card reported.
func (c *Card) CardStatus() sdmmc.CardStatus { return c.status }

// Config returns the configuration of the last Init.
func (c *Card) Config() Config { return c.cfg }

// Mode returns the transfer strategy.
func (c *Card) Mode() DeviceMode { return c.mode }

// SetMode selects the transfer strategy used by ReadBlocks and WriteBlocks.
func (c *Card) SetMode(m DeviceMode) error {
	if m != PollingMode && m != DMAMode {
		return fmt.Errorf("device mode %d: %w", m, sdioc.InvalidParameter)
	}
	c.mode = m
	return nil
}

func (c *Card) valid() bool {
	return c != nil && c.ctrl != nil && c.ctrl.Unit().IsValid()
}

// track keeps the last status and folds the failure into the error code.
func (c *Card) track(status sdmmc.CardStatus, err error) error {
	if status != 0 {
		c.status = status
	}
	if err != nil {
		c.errorCode |= codeFromError(err)
	}
	return err
}

// cardAddress converts a logical block index to the command argument.
// Standard capacity cards are byte addressed.
func (c *Card) cardAddress(block uint32) uint32 {
	if c.info.Type != HighCapacity {
		return block * BlockSize
	}
	return block
}

func (c *Card) budget(timeoutMs, ticksPerMs uint32) uint64 {
	return uint64(timeoutMs) * uint64(ticksPerMs)
}
