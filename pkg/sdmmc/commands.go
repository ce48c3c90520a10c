package sdmmc

import (
	"fmt"

	"github.com/gregLibert/sdmmc/pkg/sdioc"
)

// SD physical layer command indexes.
const (
	CmdGoIdleState        uint8 = 0
	CmdSendOpCond         uint8 = 1
	CmdAllSendCID         uint8 = 2
	CmdSendRelativeAddr   uint8 = 3
	CmdSwitchFunc         uint8 = 6
	CmdSelectDeselect     uint8 = 7
	CmdSendIfCond         uint8 = 8
	CmdSendCSD            uint8 = 9
	CmdSendCID            uint8 = 10
	CmdStopTransmission   uint8 = 12
	CmdSendStatus         uint8 = 13
	CmdSetBlockLen        uint8 = 16
	CmdReadSingleBlock    uint8 = 17
	CmdReadMultipleBlock  uint8 = 18
	CmdWriteSingleBlock   uint8 = 24
	CmdWriteMultipleBlock uint8 = 25
	CmdEraseWrBlkStart    uint8 = 32
	CmdEraseWrBlkEnd      uint8 = 33
	CmdEraseGrpStart      uint8 = 35
	CmdEraseGrpEnd        uint8 = 36
	CmdErase              uint8 = 38
	CmdAppCmd             uint8 = 55
	AppCmdSetBusWidth     uint8 = 6
	AppCmdSDStatus        uint8 = 13
	AppCmdSDSendOpCond    uint8 = 41
	AppCmdSendSCR         uint8 = 51
)

// Arguments and OCR bits.
const (
	IfCondArgument uint32 = 0x000001AA
	IfCondPattern  uint32 = 0xAA

	OCRVoltage33    uint32 = 0x00100000
	OCRHighCapacity uint32 = 0x40000000
	OCRBusy         uint32 = 0x80000000

	BusWidthArg1Bit uint32 = 0
	BusWidthArg4Bit uint32 = 2
)

// Capacity is the host capacity support hint sent with ACMD41.
type Capacity uint32

const (
	StandardCapacity Capacity = 0
	HighCapacity     Capacity = Capacity(OCRHighCapacity)
)

func rcaArg(rca uint16) uint32 {
	return uint32(rca) << 16
}

func (c *Client) r1(name string, index uint8, arg uint32, data bool) (CardStatus, error) {
	words, err := c.run(name, sdioc.Command{Index: index, Argument: arg, Response: sdioc.RespR1, DataPresent: data}, CommandTimeoutMs)
	return CardStatus(words[0]), err
}

func (c *Client) r2(name string, index uint8, arg uint32) ([4]uint32, error) {
	return c.run(name, sdioc.Command{Index: index, Argument: arg, Response: sdioc.RespR2}, CommandTimeoutMs)
}

// GoIdleState sends CMD0, resetting the card to the idle state.
func (c *Client) GoIdleState() error {
	_, err := c.run("CMD0", sdioc.Command{Index: CmdGoIdleState, Response: sdioc.RespNone}, CommandTimeoutMs)
	return err
}

// SendOpCond sends CMD1 (MMC style operating condition) and returns the OCR.
func (c *Client) SendOpCond(arg uint32) (uint32, error) {
	words, err := c.run("CMD1", sdioc.Command{Index: CmdSendOpCond, Argument: arg, Response: sdioc.RespR3}, CommandTimeoutMs)
	return words[0], err
}

// AllSendCID sends CMD2 and returns the CID of the card on the bus.
func (c *Client) AllSendCID() ([4]uint32, error) {
	return c.r2("CMD2", CmdAllSendCID, 0)
}

// SendRelativeAddr sends CMD3 and returns the RCA published by the card.
// No RCA is returned when the response carries error bits.
func (c *Client) SendRelativeAddr() (uint16, error) {
	words, err := c.run("CMD3", sdioc.Command{Index: CmdSendRelativeAddr, Response: sdioc.RespR6}, CommandTimeoutMs)
	if err != nil {
		return 0, err
	}
	return uint16(words[0] >> 16), nil
}

// SwitchFunc sends CMD6. The 64-byte switch status follows on the data lines.
func (c *Client) SwitchFunc(arg uint32) (CardStatus, error) {
	return c.r1("CMD6", CmdSwitchFunc, arg, true)
}

// SelectDeselect sends CMD7 to move the card with the given RCA into transfer state.
func (c *Client) SelectDeselect(rca uint16) (CardStatus, error) {
	return c.r1("CMD7", CmdSelectDeselect, rcaArg(rca), false)
}

// SendIfCond sends CMD8 with the 2.7-3.6V range and check pattern. A card
// that does not echo the pattern fails with sdioc.Error.
func (c *Client) SendIfCond() (uint32, error) {
	words, err := c.run("CMD8", sdioc.Command{Index: CmdSendIfCond, Argument: IfCondArgument, Response: sdioc.RespR7}, CommandTimeoutMs)
	if err != nil {
		return words[0], err
	}
	if words[0]&0xFF != IfCondPattern {
		return words[0], fmt.Errorf("CMD8: check pattern %02X: %w", words[0]&0xFF, sdioc.Error)
	}
	return words[0], nil
}

// SendCSD sends CMD9 and returns the CSD.
func (c *Client) SendCSD(rca uint16) ([4]uint32, error) {
	return c.r2("CMD9", CmdSendCSD, rcaArg(rca))
}

// SendCID sends CMD10 and returns the CID of an addressed card.
func (c *Client) SendCID(rca uint16) ([4]uint32, error) {
	return c.r2("CMD10", CmdSendCID, rcaArg(rca))
}

// StopTransmission sends CMD12.
func (c *Client) StopTransmission() (CardStatus, error) {
	return c.r1("CMD12", CmdStopTransmission, 0, false)
}

// SendStatus sends CMD13 and returns the card status.
func (c *Client) SendStatus(rca uint16) (CardStatus, error) {
	return c.r1("CMD13", CmdSendStatus, rcaArg(rca), false)
}

// SetBlockLen sends CMD16.
func (c *Client) SetBlockLen(length uint32) (CardStatus, error) {
	return c.r1("CMD16", CmdSetBlockLen, length, false)
}

// ReadSingleBlock sends CMD17. addr is a byte address on standard capacity
// cards and a block index on high capacity cards.
func (c *Client) ReadSingleBlock(addr uint32) (CardStatus, error) {
	return c.r1("CMD17", CmdReadSingleBlock, addr, true)
}

// ReadMultipleBlock sends CMD18.
func (c *Client) ReadMultipleBlock(addr uint32) (CardStatus, error) {
	return c.r1("CMD18", CmdReadMultipleBlock, addr, true)
}

// WriteSingleBlock sends CMD24.
func (c *Client) WriteSingleBlock(addr uint32) (CardStatus, error) {
	return c.r1("CMD24", CmdWriteSingleBlock, addr, true)
}

// WriteMultipleBlock sends CMD25.
func (c *Client) WriteMultipleBlock(addr uint32) (CardStatus, error) {
	return c.r1("CMD25", CmdWriteMultipleBlock, addr, true)
}

// EraseWrBlkStart sends CMD32.
func (c *Client) EraseWrBlkStart(addr uint32) (CardStatus, error) {
	return c.r1("CMD32", CmdEraseWrBlkStart, addr, false)
}

// EraseWrBlkEnd sends CMD33.
func (c *Client) EraseWrBlkEnd(addr uint32) (CardStatus, error) {
	return c.r1("CMD33", CmdEraseWrBlkEnd, addr, false)
}

// EraseGrpStart sends CMD35.
func (c *Client) EraseGrpStart(addr uint32) (CardStatus, error) {
	return c.r1("CMD35", CmdEraseGrpStart, addr, false)
}

// EraseGrpEnd sends CMD36.
func (c *Client) EraseGrpEnd(addr uint32) (CardStatus, error) {
	return c.r1("CMD36", CmdEraseGrpEnd, addr, false)
}

// Erase sends CMD38. The data timeout is raised to its maximum first and the
// busy phase gets five times the normal command budget.
func (c *Client) Erase() (CardStatus, error) {
	if !c.valid() {
		return 0, fmt.Errorf("CMD38: %w", sdioc.InvalidParameter)
	}
	if err := c.Ctrl.SetDataTimeout(sdioc.DataTimeout2e27); err != nil {
		return 0, fmt.Errorf("CMD38: data timeout: %w", err)
	}
	words, err := c.run("CMD38", sdioc.Command{Index: CmdErase, Response: sdioc.RespR1b}, EraseTimeoutMs)
	return CardStatus(words[0]), err
}

// AppCmd sends CMD55, announcing that the next command is an ACMD.
func (c *Client) AppCmd(arg uint32) (CardStatus, error) {
	return c.r1("CMD55", CmdAppCmd, arg, false)
}

// AppSetBusWidth sends ACMD6 with BusWidthArg1Bit or BusWidthArg4Bit.
func (c *Client) AppSetBusWidth(width uint32) (CardStatus, error) {
	return c.r1("ACMD6", AppCmdSetBusWidth, width, false)
}

// AppSDStatus sends ACMD13. The 64-byte SD status follows on the data lines.
func (c *Client) AppSDStatus() (CardStatus, error) {
	return c.r1("ACMD13", AppCmdSDStatus, 0, true)
}

// AppSDSendOpCond sends ACMD41 for the 3.2-3.4V window and the given capacity
// hint. The OCR is returned in every case; while its busy bit is clear the card
// is still powering up and the result is sdioc.OperationInProgress.
func (c *Client) AppSDSendOpCond(capacity Capacity) (uint32, error) {
	words, err := c.run("ACMD41", sdioc.Command{Index: AppCmdSDSendOpCond, Argument: OCRVoltage33 | uint32(capacity), Response: sdioc.RespR3}, CommandTimeoutMs)
	if err != nil {
		return words[0], err
	}
	if words[0]&OCRBusy == 0 {
		return words[0], fmt.Errorf("ACMD41: %w", sdioc.OperationInProgress)
	}
	return words[0], nil
}

// AppSendSCR sends ACMD51. The 8-byte SCR follows on the data lines.
func (c *Client) AppSendSCR() (CardStatus, error) {
	return c.r1("ACMD51", AppCmdSendSCR, 0, true)
}
