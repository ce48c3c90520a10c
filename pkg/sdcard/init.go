package sdcard

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/gregLibert/sdmmc/pkg/bits"
	"github.com/gregLibert/sdmmc/pkg/sdioc"
	"github.com/gregLibert/sdmmc/pkg/sdmmc"
)

// INITIALIZATION:
// Init walks the card from power-up to a configured transfer state:
//
// 1. Host: configure the controller (identification clock, 1-bit bus).
//
// 2. Power on: CMD0, then CMD8 decides the version class. A card that does
//    not answer CMD8 is a 1.x card and is only offered standard capacity
//    through ACMD41. A 2.0 card is offered high capacity and the CCS bit of the
//    final OCR decides SDSC or SDHC. ACMD41 repeats until the busy bit is set,
//    at most MaxVoltageTrials times.
//
// 3. Identification: CMD2 (CID), CMD3 (RCA), CMD9 (CSD), CSD decode, then
//    CMD7 selects the card.
//
// 4. Bus width: ACMD6 then the controller width.
//
// 5. Speed: CMD6 switch to high speed when requested, then the controller
//    speed mode and clock.
//
// The first failing step ends Init and its error is returned.

// MaxVoltageTrials bounds the ACMD41 power-up loop.
const MaxVoltageTrials = 0xFFFF

// Switch function arguments for access mode group 1.
const (
	SwitchHighSpeed      uint32 = 0x80FFFF01
	SwitchCheckHighSpeed uint32 = 0x00FFFF01
)

const (
	switchStatusLen      = 64
	speedSwitchTimeoutMs = 2000
)

// Init brings the card into transfer state with the given configuration.
func (c *Card) Init(cfg Config) error {
	if !c.valid() {
		return fmt.Errorf("init: %w", sdioc.InvalidParameter)
	}
	c.cfg = cfg

	steps := []struct {
		name string
		run  func() error
	}{
		{"host init", c.initHost},
		{"power on", c.powerOn},
		{"card init", c.initCard},
		{"bus width", func() error { return c.SetBusWidth(cfg.BusWidth) }},
		{"speed", func() error { return c.SetSpeed(cfg.SpeedMode, cfg.Clock) }},
	}

	for _, s := range steps {
		if err := s.run(); err != nil {
			glog.Errorf("sdcard: %s failed (error code %s): %v", s.name, c.errorCode.Verbose(), err)
			return fmt.Errorf("%s: %w", s.name, err)
		}
		glog.V(1).Infof("sdcard: %s done", s.name)
	}

	glog.V(1).Infof("sdcard: %s card v%s, %d blocks of %d bytes, RCA %04X",
		c.info.Type, c.info.Version, c.info.LogBlockCount, c.info.LogBlockSize, c.info.RCA)
	return nil
}

func (c *Card) initHost() error {
	if err := c.ctrl.Init(c.cfg.Host); err != nil {
		return fmt.Errorf("controller: %w", err)
	}
	return nil
}

// powerOn identifies the version and capacity class of the card.
func (c *Card) powerOn() error {
	c.errorCode = CodeNone

	if err := c.cmd.GoIdleState(); err != nil {
		c.errorCode |= CodeGeneralUnknownErr
		return err
	}
	c.regs.OCR = 0

	capacity := sdmmc.HighCapacity
	c.info.Version = Version2x
	if _, err := c.cmd.SendIfCond(); err != nil {
		glog.V(1).Infof("sdcard: no answer to CMD8 (%v), version 1.x card", err)
		capacity = sdmmc.StandardCapacity
		c.info.Version = Version1x
	}

	if err := c.waitPowerUp(capacity); err != nil {
		return err
	}

	c.info.Type = StandardCapacity
	if c.info.Version == Version2x && c.regs.OCR&sdmmc.OCRHighCapacity != 0 {
		c.info.Type = HighCapacity
	}
	return nil
}

// waitPowerUp repeats CMD55/ACMD41 until the card reports power-up done. A
// version 1.x card gives up with the last command error, a 2.0 card with
// sdioc.Error.
func (c *Card) waitPowerUp(capacity sdmmc.Capacity) error {
	last := fmt.Errorf("ACMD41: card still busy: %w", sdioc.Error)
	for trial := 0; c.regs.OCR&sdmmc.OCRBusy == 0; trial++ {
		if trial == MaxVoltageTrials {
			c.errorCode |= CodeInvalidVoltRange
			if c.info.Version == Version2x {
				return fmt.Errorf("ACMD41: no power-up after %d trials: %w", trial, sdioc.Error)
			}
			return last
		}

		if err := c.track(c.cmd.AppCmd(0)); err != nil {
			last = err
			continue
		}

		ocr, err := c.cmd.AppSDSendOpCond(capacity)
		c.regs.OCR = ocr
		if err == nil {
			continue
		}
		last = err
		if sdioc.ResultOf(err) == sdioc.Error {
			c.errorCode |= CodeUnsupportedFeature
			return err
		}
	}
	return nil
}

// initCard reads the identification registers and selects the card.
func (c *Card) initCard() error {
	if c.info.Type != SecuredCard {
		cid, err := c.cmd.AllSendCID()
		if err != nil {
			return err
		}
		c.regs.CID = cid

		rca, err := c.cmd.SendRelativeAddr()
		if err != nil {
			return err
		}
		c.regs.RCA = rca
		c.info.RCA = rca

		csd, err := c.cmd.SendCSD(rca)
		if err != nil {
			return err
		}
		c.regs.CSD = csd
	}

	if err := c.GetCardCSD(); err != nil {
		return err
	}
	return c.track(c.cmd.SelectDeselect(c.info.RCA))
}

// SetBusWidth switches card and controller to a 1-bit or 4-bit bus.
func (c *Card) SetBusWidth(w sdioc.BusWidth) error {
	if !c.valid() {
		return fmt.Errorf("bus width: %w", sdioc.InvalidParameter)
	}

	var arg uint32
	switch w {
	case sdioc.BusWidth1Bit:
		arg = sdmmc.BusWidthArg1Bit
	case sdioc.BusWidth4Bit:
		arg = sdmmc.BusWidthArg4Bit
	default:
		return fmt.Errorf("bus width %s: %w", w, sdioc.InvalidParameter)
	}

	if err := c.track(c.cmd.AppCmd(uint32(c.info.RCA) << 16)); err != nil {
		return err
	}
	if err := c.track(c.cmd.AppSetBusWidth(arg)); err != nil {
		return err
	}
	return c.ctrl.SetBusWidth(w)
}

// SetSpeed switches the card to high speed when asked, then applies the speed
// mode and clock to the controller.
func (c *Card) SetSpeed(mode sdioc.SpeedMode, clock sdioc.Clock) error {
	if !c.valid() {
		return fmt.Errorf("speed: %w", sdioc.InvalidParameter)
	}

	if mode == sdioc.HighSpeed {
		var status [switchStatusLen]byte
		err := c.readRegister(status[:], speedSwitchTimeoutMs, func() error {
			return c.track(c.cmd.SwitchFunc(SwitchHighSpeed))
		})
		if err != nil {
			return err
		}
		// Function group 1 result, bits 379:376 of the switch status.
		if !bits.IsSet(status[16], 1) {
			return fmt.Errorf("high speed not accepted (group 1 = %X): %w", bits.GetRange(status[16], 4, 1), sdioc.Error)
		}
	}

	c.ctrl.SetSpeedMode(mode)
	return c.ctrl.SetClock(clock)
}

// readRegister reads a short register over the data lines in polling mode:
// block length, data path, the command sent by send, one block from the FIFO
// and the transfer complete flag.
func (c *Card) readRegister(buf []byte, timeoutMs uint32, send func() error) error {
	if err := c.track(c.cmd.SetBlockLen(uint32(len(buf)))); err != nil {
		return err
	}

	err := c.ctrl.ConfigureData(sdioc.DataConfig{
		BlockCount: 1,
		BlockSize:  uint16(len(buf)),
		Timeout:    sdioc.DataTimeout2e27,
		Direction:  sdioc.ToHost,
		Mode:       sdioc.TransferSingle,
	})
	if err != nil {
		return fmt.Errorf("data path: %w", err)
	}

	if err := send(); err != nil {
		return err
	}

	budget := c.budget(timeoutMs, c.timing.TicksPerMs)
	if err := c.pollFIFO(sdioc.ToHost, buf, len(buf), budget); err != nil {
		return err
	}
	if err := c.waitTransferComplete(false, budget); err != nil {
		return err
	}
	if c.ctrl.IrqFlag(sdioc.ErrorInt) {
		return fmt.Errorf("error interrupt: %w", sdioc.Error)
	}
	return nil
}
