package sdsim

import (
	"github.com/golang/glog"

	"github.com/gregLibert/sdmmc/pkg/bits"
	"github.com/gregLibert/sdmmc/pkg/sdioc"
	"github.com/gregLibert/sdmmc/pkg/sdmmc"
)

const (
	ocrVoltageWindow uint32 = 0x00FF8000
	r6ReadyForData   uint32 = 0x0100
	switchStatusLen         = 64
	sdStatusLen             = 64
)

// SendCommand executes one command on the card. Stale completion and error
// interrupts of the previous command are cleared first. A command the card
// does not answer raises ErrorInt, like a response timeout on the bus.
func (c *Card) SendCommand(cmd sdioc.Command) error {
	c.Commands = append(c.Commands, cmd)
	c.irq &^= sdioc.ErrorInt | sdioc.CommandComplete
	c.resp = [4]uint32{}

	app := c.appCmd
	c.appCmd = false

	glog.V(3).Infof("sdsim: %s app=%t state=%s", cmd, app, c.state)

	if app && c.appCommand(cmd) {
		return nil
	}

	switch cmd.Index {
	case sdmmc.CmdGoIdleState:
		c.state = sdmmc.StateIdle
		c.opCondCalls = 0
		c.rx, c.txLeft = nil, 0
		c.complete()
	case sdmmc.CmdSendIfCond:
		if c.opts.Version1 {
			c.noResponse()
			return nil
		}
		c.resp[0] = cmd.Argument & 0xFFF
		c.complete()
	case sdmmc.CmdAppCmd:
		c.appCmd = true
		c.r1(sdmmc.StatusAppCmd)
	case sdmmc.CmdAllSendCID:
		c.resp = c.opts.CID
		c.state = sdmmc.StateIdent
		c.complete()
	case sdmmc.CmdSendRelativeAddr:
		c.resp[0] = uint32(c.opts.RCA)<<16 | uint32(c.state)<<9 | r6ReadyForData
		c.state = sdmmc.StateStby
		c.complete()
	case sdmmc.CmdSendCSD, sdmmc.CmdSendCID:
		if uint16(cmd.Argument>>16) != c.opts.RCA {
			c.noResponse()
			return nil
		}
		c.resp = c.csd
		if cmd.Index == sdmmc.CmdSendCID {
			c.resp = c.opts.CID
		}
		c.complete()
	case sdmmc.CmdSelectDeselect:
		c.r1(0)
		if uint16(cmd.Argument>>16) == c.opts.RCA {
			c.state = sdmmc.StateTran
		} else {
			c.state = sdmmc.StateStby
		}
	case sdmmc.CmdSendStatus:
		c.sendStatus()
	case sdmmc.CmdStopTransmission:
		c.r1(0)
		c.state = sdmmc.StateTran
	case sdmmc.CmdSetBlockLen:
		if cmd.Argument == 0 || cmd.Argument > BlockSize {
			c.r1(sdmmc.StatusBlockLenError)
			return nil
		}
		c.r1(0)
	case sdmmc.CmdReadSingleBlock, sdmmc.CmdReadMultipleBlock:
		c.read(cmd)
	case sdmmc.CmdWriteSingleBlock, sdmmc.CmdWriteMultipleBlock:
		c.write(cmd)
	case sdmmc.CmdSwitchFunc:
		c.switchFunc(cmd)
	case sdmmc.CmdEraseWrBlkStart, sdmmc.CmdEraseWrBlkEnd:
		off, status := c.address(cmd.Argument, BlockSize)
		if status != 0 {
			c.r1(status)
			return nil
		}
		if cmd.Index == sdmmc.CmdEraseWrBlkStart {
			c.eraseStart = off
		} else {
			c.eraseEnd = off
		}
		c.r1(0)
	case sdmmc.CmdErase:
		c.erase()
	default:
		c.noResponse()
	}
	return nil
}

// appCommand handles the command following CMD55. It reports false for
// indexes that are not application commands.
func (c *Card) appCommand(cmd sdioc.Command) bool {
	switch cmd.Index {
	case sdmmc.AppCmdSDSendOpCond:
		c.opCondCalls++
		ocr := ocrVoltageWindow
		if c.opCondCalls >= c.opts.ReadyAfter {
			ocr |= sdmmc.OCRBusy
			if c.opts.HighCapacity && cmd.Argument&sdmmc.OCRHighCapacity != 0 {
				ocr |= sdmmc.OCRHighCapacity
			}
			c.state = sdmmc.StateReady
		}
		c.resp[0] = ocr
		c.complete()
	case sdmmc.AppCmdSetBusWidth:
		if cmd.Argument != sdmmc.BusWidthArg1Bit && cmd.Argument != sdmmc.BusWidthArg4Bit {
			c.r1(sdmmc.StatusIllegalCommand)
			return true
		}
		c.r1(sdmmc.StatusAppCmd)
	case sdmmc.AppCmdSDStatus:
		status := make([]byte, sdStatusLen)
		if c.busWidth == sdioc.BusWidth4Bit {
			status[0] = 0x80
		}
		c.r1(sdmmc.StatusAppCmd)
		c.dataOut(status)
	case sdmmc.AppCmdSendSCR:
		// SD 3.0x, 1-bit and 4-bit bus, erased bits read as 0.
		scr := []byte{0x02, 0x35, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00}
		if !c.opts.HighCapacity {
			scr[1] = 0x25
		}
		c.r1(sdmmc.StatusAppCmd)
		c.dataOut(scr)
	default:
		return false
	}
	return true
}

func (c *Card) complete() {
	c.irq |= sdioc.CommandComplete
}

func (c *Card) noResponse() {
	c.irq |= sdioc.ErrorInt
}

// r1 answers with the card status in the state the command was received in.
func (c *Card) r1(flags sdmmc.CardStatus) {
	status := sdmmc.NewCardStatus(c.state, sdmmc.StatusReadyForData|flags)
	if c.opts.Locked {
		status |= sdmmc.StatusCardIsLocked
	}
	c.resp[0] = uint32(status)
	c.complete()
}

func (c *Card) sendStatus() {
	if c.notReady > 0 {
		c.notReady--
		status := sdmmc.NewCardStatus(sdmmc.StatePrg, 0)
		if c.opts.Locked {
			status |= sdmmc.StatusCardIsLocked
		}
		c.resp[0] = uint32(status)
		c.complete()
		return
	}
	if c.state == sdmmc.StatePrg {
		c.state = sdmmc.StateTran
	}
	c.r1(0)
}

// address converts a command argument to an image offset and checks that n
// bytes fit there.
func (c *Card) address(arg uint32, n int) (uint64, sdmmc.CardStatus) {
	off := uint64(arg)
	if c.opts.HighCapacity {
		off *= BlockSize
	} else if arg%BlockSize != 0 {
		return 0, sdmmc.StatusAddressError
	}
	if off+uint64(n) > uint64(len(c.image)) {
		return 0, sdmmc.StatusOutOfRange
	}
	return off, 0
}

func (c *Card) read(cmd sdioc.Command) {
	n := c.data.Bytes()
	if cmd.Index == sdmmc.CmdReadSingleBlock {
		n = BlockSize
	}
	off, status := c.address(cmd.Argument, n)
	if status != 0 {
		c.r1(status)
		return
	}
	c.r1(0)
	c.state = sdmmc.StateData
	c.dataOut(c.image[off : off+uint64(n)])
}

func (c *Card) write(cmd sdioc.Command) {
	n := c.data.Bytes()
	if cmd.Index == sdmmc.CmdWriteSingleBlock {
		n = BlockSize
	}
	off, status := c.address(cmd.Argument, n)
	if status != 0 {
		c.r1(status)
		return
	}
	c.r1(0)
	c.state = sdmmc.StateRcv
	if c.Stalled {
		return
	}

	if c.dma.armed(c.opts.Unit.WriteRequest()) {
		src := c.dma.cfg.Source.Buffer
		copy(c.image[off:off+uint64(n)], src)
		c.dma.done()
		c.programmed()
		c.irq &^= sdioc.TransferComplete
		c.tcDelay = true
		return
	}
	c.txOff, c.txLeft = off, n
}

// dataOut starts a transfer to the host, through the DMA channel when it is
// armed for the unit read request, through the FIFO otherwise.
func (c *Card) dataOut(payload []byte) {
	if c.Stalled {
		return
	}
	if c.dma.armed(c.opts.Unit.ReadRequest()) {
		copy(c.dma.cfg.Destination.Buffer, payload)
		c.dma.done()
		c.state = sdmmc.StateTran
		c.tcDelay = true
		return
	}
	c.rx = append([]byte(nil), payload...)
}

func (c *Card) switchFunc(cmd sdioc.Command) {
	status := make([]byte, switchStatusLen)
	// Maximum current 200mA, group 1 supports default speed and, when enabled,
	// high speed. Byte 16 holds the function selected in group 1.
	status[1] = 0xC8
	status[13] = 0x01
	if c.opts.HighSpeed {
		status[13] = bits.Set(status[13], 2)
		if cmd.Argument&0xF == 1 {
			status[16] = bits.Bit(1)
		}
	}
	c.r1(0)
	c.dataOut(status)
}

func (c *Card) erase() {
	if c.eraseEnd < c.eraseStart {
		c.r1(sdmmc.StatusEraseParam)
		return
	}
	c.r1(0)
	end := c.eraseEnd + BlockSize
	if end > uint64(len(c.image)) {
		end = uint64(len(c.image))
	}
	for i := c.eraseStart; i < end; i++ {
		c.image[i] = 0
	}
	c.busy = c.opts.BusyPolls
	c.notReady = c.opts.NotReadyPolls
	c.state = sdmmc.StatePrg
}
