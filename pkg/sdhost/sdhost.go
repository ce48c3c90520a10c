// Package sdhost binds one SDIOC controller unit, its DMA channel and an SD
// card session into a single handle with simple init, read, write and erase
// calls. Several hosts may coexist, one per controller unit.
package sdhost

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/glog"

	"github.com/gregLibert/sdmmc/pkg/sdcard"
	"github.com/gregLibert/sdmmc/pkg/sdioc"
)

// Config holds the card configuration and the default operation timeouts.
type Config struct {
	Card sdcard.Config
	Mode sdcard.DeviceMode

	ReadTimeoutMs  uint32
	WriteTimeoutMs uint32
	EraseTimeoutMs uint32

	// MaxBlocks caps the blocks moved by one read or write command. Longer
	// buffers are split.
	MaxBlocks uint16
}

// DefaultConfig returns the card defaults, DMA transfers and 20000 ms
// timeouts.
func DefaultConfig() Config {
	return Config{
		Card:           sdcard.DefaultConfig(),
		Mode:           sdcard.DMAMode,
		ReadTimeoutMs:  20000,
		WriteTimeoutMs: 20000,
		EraseTimeoutMs: 20000,
		MaxBlocks:      128,
	}
}

// Host is an SD card behind one controller unit. It is not safe for
// concurrent use; callers serialize.
type Host struct {
	card *sdcard.Card
	cfg  Config
	unit sdioc.Unit

	ready bool
}

// New creates a host. dma may be nil for polling only operation.
func New(ctrl sdioc.Controller, dma sdioc.DMA, timing sdcard.Timing, cfg Config) *Host {
	h := &Host{
		card: sdcard.New(ctrl, dma, timing),
		cfg:  cfg,
	}
	if ctrl != nil {
		h.unit = ctrl.Unit()
	}
	if h.cfg.MaxBlocks == 0 {
		h.cfg.MaxBlocks = 1
	}
	return h
}

// Card returns the underlying session.
func (h *Host) Card() *sdcard.Card { return h.card }

// Ready reports whether the last Init succeeded.
func (h *Host) Ready() bool { return h.ready }

// Init applies the device mode and initializes the card.
func (h *Host) Init() error {
	h.ready = false
	if err := h.card.SetMode(h.cfg.Mode); err != nil {
		return err
	}
	if err := h.card.Init(h.cfg.Card); err != nil {
		return fmt.Errorf("sdhost %s: %w", h.unit, err)
	}
	h.ready = true
	info := h.card.Info()
	glog.V(1).Infof("sdhost %s: %s card ready, %d MiB", h.unit, info.Type, info.Capacity()>>20)
	return nil
}

// InitWithRetry calls Init until it succeeds, bo gives up or ctx is done.
// Invalid parameters are not retried.
func (h *Host) InitWithRetry(ctx context.Context, bo backoff.BackOff) error {
	operation := func() error {
		err := h.Init()
		if sdioc.ResultOf(err) == sdioc.InvalidParameter {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), func(err error, d time.Duration) {
		glog.V(1).Infof("sdhost %s: init failed, retrying in %s: %v", h.unit, d, err)
	})
}

// Read fills buf with the blocks starting at block. len(buf) must be a
// multiple of the block size.
func (h *Host) Read(block uint32, buf []byte) error {
	return h.chunked(block, buf, func(addr uint32, n uint16, p []byte) error {
		return h.card.ReadBlocks(addr, n, p, h.cfg.ReadTimeoutMs)
	})
}

// Write stores buf on the card starting at block. len(buf) must be a
// multiple of the block size.
func (h *Host) Write(block uint32, buf []byte) error {
	return h.chunked(block, buf, func(addr uint32, n uint16, p []byte) error {
		return h.card.WriteBlocks(addr, n, p, h.cfg.WriteTimeoutMs)
	})
}

func (h *Host) chunked(block uint32, buf []byte, op func(addr uint32, n uint16, p []byte) error) error {
	if len(buf) == 0 || len(buf)%sdcard.BlockSize != 0 {
		return fmt.Errorf("sdhost %s: buffer of %d bytes: %w", h.unit, len(buf), sdioc.InvalidParameter)
	}
	for len(buf) > 0 {
		n := len(buf) / sdcard.BlockSize
		if n > int(h.cfg.MaxBlocks) {
			n = int(h.cfg.MaxBlocks)
		}
		if err := op(block, uint16(n), buf[:n*sdcard.BlockSize]); err != nil {
			return fmt.Errorf("sdhost %s: %w", h.unit, err)
		}
		block += uint32(n)
		buf = buf[n*sdcard.BlockSize:]
	}
	return nil
}

// Erase erases the blocks from start to end, both included.
func (h *Host) Erase(start, end uint32) error {
	if err := h.card.Erase(start, end, h.cfg.EraseTimeoutMs); err != nil {
		return fmt.Errorf("sdhost %s: %w", h.unit, err)
	}
	return nil
}

// SetDeviceMode switches between DMA and polling transfers.
func (h *Host) SetDeviceMode(m sdcard.DeviceMode) error {
	if err := h.card.SetMode(m); err != nil {
		return err
	}
	h.cfg.Mode = m
	return nil
}

// DeviceMode returns the current transfer strategy.
func (h *Host) DeviceMode() sdcard.DeviceMode { return h.card.Mode() }

// Info returns the card information.
func (h *Host) Info() sdcard.Info { return h.card.Info() }

// ErrorCode returns the diagnostic flags of the last operation.
func (h *Host) ErrorCode() sdcard.ErrorCode { return h.card.ErrorCode() }

// BlockCount returns the number of logical blocks of the card.
func (h *Host) BlockCount() uint32 { return h.card.Info().LogBlockCount }
