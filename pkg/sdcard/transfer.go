package sdcard

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/gregLibert/sdmmc/pkg/sdioc"
	"github.com/gregLibert/sdmmc/pkg/sdmmc"
)

// TRANSFERS:
// A block transfer sets the 512-byte block length, programs the data path,
// arms the DMA channel when the session is in DMA mode, then sends the single
// or multiple block command. Multiple block transfers rely on auto CMD12.
//
// In polling mode each block is moved through the FIFO as soon as the buffer
// ready flag and interrupt are up; the wait budget restarts after every block.
//
// Completion differs by direction: a read waits for transfer complete only, a
// write also waits for the card to release DAT0 and then polls CMD13 until the
// card is ready for data again.

// dmaBeatsPerBlock is the number of 32-bit DMA beats in one block.
const dmaBeatsPerBlock = BlockSize / 4

// ReadBlocks reads count logical blocks starting at block addr into buf.
func (c *Card) ReadBlocks(addr uint32, count uint16, buf []byte, timeoutMs uint32) error {
	return c.transferBlocks(sdioc.ToHost, addr, count, buf, timeoutMs)
}

// WriteBlocks writes count logical blocks from buf starting at block addr.
func (c *Card) WriteBlocks(addr uint32, count uint16, buf []byte, timeoutMs uint32) error {
	return c.transferBlocks(sdioc.ToCard, addr, count, buf, timeoutMs)
}

func (c *Card) transferBlocks(dir sdioc.Direction, addr uint32, count uint16, buf []byte, timeoutMs uint32) error {
	op := "read"
	ticks := c.timing.TicksPerMs
	if dir == sdioc.ToCard {
		op = "write"
		ticks = c.timing.WriteTicksPerMs
	}

	if !c.valid() {
		return fmt.Errorf("%s: %w", op, sdioc.InvalidParameter)
	}
	if count == 0 || len(buf) < int(count)*BlockSize {
		c.errorCode |= CodeInvalidParameter
		return fmt.Errorf("%s: %d blocks into %d bytes: %w", op, count, len(buf), sdioc.InvalidParameter)
	}

	c.errorCode = CodeNone
	if uint64(addr)+uint64(count) > uint64(c.info.LogBlockCount) {
		c.errorCode |= CodeAddrOutOfRange
		return fmt.Errorf("%s: blocks %d+%d beyond %d: %w", op, addr, count, c.info.LogBlockCount, sdioc.InvalidParameter)
	}

	if err := c.transfer(dir, c.cardAddress(addr), count, buf[:int(count)*BlockSize], c.budget(timeoutMs, ticks)); err != nil {
		return fmt.Errorf("%s %d+%d: %w", op, addr, count, err)
	}
	return nil
}

func (c *Card) transfer(dir sdioc.Direction, cardAddr uint32, count uint16, buf []byte, budget uint64) error {
	if err := c.track(c.cmd.SetBlockLen(BlockSize)); err != nil {
		return err
	}

	multi := count > 1
	cfg := sdioc.DataConfig{
		BlockCount: count,
		BlockSize:  BlockSize,
		Timeout:    sdioc.DataTimeout2e27,
		Direction:  dir,
		AutoCMD12:  multi,
		Mode:       sdioc.TransferSingle,
	}
	if multi {
		cfg.Mode = sdioc.TransferMultiple
	}
	if err := c.ctrl.ConfigureData(cfg); err != nil {
		return fmt.Errorf("data path: %w", err)
	}

	useDMA := c.mode == DMAMode
	if useDMA && c.dma == nil {
		glog.V(1).Infof("sdcard: no DMA channel, polling instead")
		useDMA = false
	}
	if useDMA {
		if err := c.armDMA(dir, count, buf); err != nil {
			c.errorCode |= CodeDMA
			return err
		}
	}

	c.context = transferContext(dir, multi, useDMA)
	if err := c.track(c.sendTransferCommand(dir, multi, cardAddr)); err != nil {
		return err
	}

	if !useDMA {
		if err := c.pollFIFO(dir, buf, BlockSize, budget); err != nil {
			c.errorCode |= CodeDataTimeout
			return err
		}
	}

	write := dir == sdioc.ToCard
	if err := c.waitTransferComplete(write, budget); err != nil {
		c.errorCode |= CodeDataTimeout
		return err
	}
	if write {
		if err := c.checkReadyForData(budget); err != nil {
			return err
		}
	}

	if c.ctrl.IrqFlag(sdioc.ErrorInt) {
		return fmt.Errorf("error interrupt: %w", sdioc.Error)
	}
	if write {
		c.ctrl.ClearIrqFlag(sdioc.BufferWriteReady)
	}
	return nil
}

func transferContext(dir sdioc.Direction, multi, dma bool) Context {
	var ctx Context
	switch {
	case dir == sdioc.ToHost && multi:
		ctx = ContextReadMultipleBlock
	case dir == sdioc.ToHost:
		ctx = ContextReadSingleBlock
	case multi:
		ctx = ContextWriteMultipleBlock
	default:
		ctx = ContextWriteSingleBlock
	}
	if dma {
		ctx |= ContextDMA
	}
	return ctx
}

func (c *Card) sendTransferCommand(dir sdioc.Direction, multi bool, cardAddr uint32) (sdmmc.CardStatus, error) {
	switch {
	case dir == sdioc.ToHost && multi:
		return c.cmd.ReadMultipleBlock(cardAddr)
	case dir == sdioc.ToHost:
		return c.cmd.ReadSingleBlock(cardAddr)
	case multi:
		return c.cmd.WriteMultipleBlock(cardAddr)
	default:
		return c.cmd.WriteSingleBlock(cardAddr)
	}
}

// armDMA programs the channel between the unit FIFO and buf, then enables it
// on the unit's read or write request event.
func (c *Card) armDMA(dir sdioc.Direction, count uint16, buf []byte) error {
	unit := c.ctrl.Unit()
	fifo := sdioc.Endpoint{FIFO: unit, Mode: sdioc.AddressFixed}
	mem := sdioc.Endpoint{Buffer: buf, Mode: sdioc.AddressIncrement}

	cfg := sdioc.ChannelConfig{
		BlockSize: dmaBeatsPerBlock,
		Count:     count,
		Width:     sdioc.Width32,
	}
	trigger := unit.ReadRequest()
	if dir == sdioc.ToHost {
		cfg.Source, cfg.Destination = fifo, mem
	} else {
		cfg.Source, cfg.Destination = mem, fifo
		trigger = unit.WriteRequest()
	}

	if err := c.dma.Configure(cfg); err != nil {
		return fmt.Errorf("dma: %w", err)
	}
	c.dma.Enable()
	c.dma.ClearFlags()
	c.dma.SetTrigger(trigger)
	return nil
}

// pollFIFO moves buf through the FIFO in chunks of blockLen bytes. Each chunk
// gets its own wait budget.
func (c *Card) pollFIFO(dir sdioc.Direction, buf []byte, blockLen int, budget uint64) error {
	enable, ready := sdioc.BufferReadEnable, sdioc.BufferReadReady
	move := c.ctrl.ReadBuffer
	if dir == sdioc.ToCard {
		enable, ready = sdioc.BufferWriteEnable, sdioc.BufferWriteReady
		move = c.ctrl.WriteBuffer
	}

	for off := 0; off < len(buf); {
		n := budget
		for !(c.ctrl.Status(enable) && c.ctrl.IrqFlag(ready)) {
			if n == 0 {
				return fmt.Errorf("FIFO block %d: %w", off/blockLen, sdioc.Timeout)
			}
			n--
		}
		if err := move(buf[off : off+blockLen]); err != nil {
			return fmt.Errorf("FIFO block %d: %w", off/blockLen, err)
		}
		off += blockLen
	}
	return nil
}

// waitTransferComplete waits for the transfer complete flag, and for DAT0 to
// be released when write is set, then clears the flag.
func (c *Card) waitTransferComplete(write bool, budget uint64) error {
	for n := budget; ; n-- {
		if n == 0 {
			return fmt.Errorf("transfer complete: %w", sdioc.Timeout)
		}
		if write && !c.ctrl.Status(sdioc.Data0PinLvl) {
			continue
		}
		if c.ctrl.IrqFlag(sdioc.TransferComplete) {
			break
		}
	}
	c.ctrl.ClearIrqFlag(sdioc.TransferComplete)
	return nil
}

// checkReadyForData polls CMD13, at most budget times, until the card reports
// ready for data. A failing CMD13 ends the wait.
func (c *Card) checkReadyForData(budget uint64) error {
	for n := budget; ; n-- {
		status, err := c.cmd.SendStatus(c.info.RCA)
		if err := c.track(status, err); err != nil {
			return err
		}
		if status.ReadyForData() {
			return nil
		}
		if n <= 1 {
			return fmt.Errorf("card not ready for data (%s): %w", status.State(), sdioc.Timeout)
		}
	}
}
