package sdioc

import "fmt"

// ResponseType tells the controller which response format to expect for a
// command. Values are the controller's response index encoding.
type ResponseType uint8

const (
	RespNone ResponseType = iota
	RespR1
	RespR1b
	RespR2
	RespR3
	RespR4
	RespR5
	RespR5b
	RespR6
	RespR7
)

func (r ResponseType) String() string {
	switch r {
	case RespNone:
		return "no response"
	case RespR1:
		return "R1"
	case RespR1b:
		return "R1b"
	case RespR2:
		return "R2"
	case RespR3:
		return "R3"
	case RespR4:
		return "R4"
	case RespR5:
		return "R5"
	case RespR5b:
		return "R5b"
	case RespR6:
		return "R6"
	case RespR7:
		return "R7"
	default:
		return fmt.Sprintf("ResponseType(%d)", uint8(r))
	}
}

// CommandType is the controller's command type field.
type CommandType uint8

const (
	CmdNormal CommandType = iota
	CmdSuspend
	CmdResume
	CmdAbort
)

// Command is the descriptor of one SD bus command.
type Command struct {
	Index       uint8
	Argument    uint32
	Response    ResponseType
	Type        CommandType
	DataPresent bool
}

// String returns a readable representation of the command, e.g. "CMD17(0x00000800) R1 +data".
func (c Command) String() string {
	s := fmt.Sprintf("CMD%d(0x%08X) %s", c.Index, c.Argument, c.Response)
	if c.DataPresent {
		s += " +data"
	}
	return s
}

// ResponseRegister selects one 32-bit response register.
type ResponseRegister uint8

const (
	Resp01 ResponseRegister = 0x0
	Resp23 ResponseRegister = 0x4
	Resp45 ResponseRegister = 0x8
	Resp67 ResponseRegister = 0xC
)

// StatusFlag is a bit of the controller present-state register.
type StatusFlag uint32

const (
	CmdInhibitCmd       StatusFlag = 1 << 0
	CmdInhibitData      StatusFlag = 1 << 1
	DataLineActive      StatusFlag = 1 << 2
	WriteTransferActive StatusFlag = 1 << 8
	ReadTransferActive  StatusFlag = 1 << 9
	BufferWriteEnable   StatusFlag = 1 << 10
	BufferReadEnable    StatusFlag = 1 << 11
	CardInserted        StatusFlag = 1 << 16
	CardStateStable     StatusFlag = 1 << 17
	CardDetectPinLvl    StatusFlag = 1 << 18
	WriteProtectPinLvl  StatusFlag = 1 << 19
	Data0PinLvl         StatusFlag = 1 << 20
	CmdPinLvl           StatusFlag = 1 << 24
)

// IrqFlag is a bit of the controller normal interrupt status register.
type IrqFlag uint16

const (
	CommandComplete  IrqFlag = 1 << 0
	TransferComplete IrqFlag = 1 << 1
	BlockGapEvent    IrqFlag = 1 << 2
	BufferWriteReady IrqFlag = 1 << 4
	BufferReadReady  IrqFlag = 1 << 5
	CardInsertion    IrqFlag = 1 << 6
	CardRemoval      IrqFlag = 1 << 7
	CardInt          IrqFlag = 1 << 8
	ErrorInt         IrqFlag = 1 << 15
)
