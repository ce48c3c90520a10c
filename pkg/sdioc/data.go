package sdioc

import "fmt"

// Direction of a data transfer.
type Direction uint8

const (
	ToCard Direction = 0
	ToHost Direction = 1
)

func (d Direction) String() string {
	if d == ToHost {
		return "to host"
	}
	return "to card"
}

// TransferMode selects single or multiple block transfers.
type TransferMode uint8

const (
	TransferSingle       TransferMode = 0
	TransferInfinite     TransferMode = 1
	TransferMultiple     TransferMode = 2
	TransferStopMultiple TransferMode = 3
)

func (m TransferMode) String() string {
	switch m {
	case TransferSingle:
		return "single"
	case TransferInfinite:
		return "infinite"
	case TransferMultiple:
		return "multiple"
	case TransferStopMultiple:
		return "stop multiple"
	default:
		return fmt.Sprintf("TransferMode(%d)", uint8(m))
	}
}

// DataTimeout is the data line timeout class, expressed as a power of two of
// SD clock cycles: DataTimeout2e13 waits 2^13 cycles, DataTimeout2e27 2^27.
type DataTimeout uint8

const (
	DataTimeout2e13 DataTimeout = iota
	DataTimeout2e14
	DataTimeout2e15
	DataTimeout2e16
	DataTimeout2e17
	DataTimeout2e18
	DataTimeout2e19
	DataTimeout2e20
	DataTimeout2e21
	DataTimeout2e22
	DataTimeout2e23
	DataTimeout2e24
	DataTimeout2e25
	DataTimeout2e26
	DataTimeout2e27
)

// Cycles returns the timeout length in SD clock cycles.
func (t DataTimeout) Cycles() uint64 {
	return 1 << (13 + uint(t))
}

// DataConfig describes the data phase of the next command.
type DataConfig struct {
	BlockCount uint16
	BlockSize  uint16
	Timeout    DataTimeout
	Direction  Direction
	AutoCMD12  bool
	Mode       TransferMode
}

// Bytes returns the total payload size of the transfer.
func (c DataConfig) Bytes() int {
	return int(c.BlockCount) * int(c.BlockSize)
}

// BusWidth of the SD data bus. Values follow the controller encoding.
type BusWidth uint8

const (
	BusWidth4Bit BusWidth = 0
	BusWidth8Bit BusWidth = 1
	BusWidth1Bit BusWidth = 2
)

func (w BusWidth) String() string {
	switch w {
	case BusWidth1Bit:
		return "1-bit"
	case BusWidth4Bit:
		return "4-bit"
	case BusWidth8Bit:
		return "8-bit"
	default:
		return fmt.Sprintf("BusWidth(%d)", uint8(w))
	}
}

// SpeedMode of the SD bus.
type SpeedMode uint8

const (
	NormalSpeed SpeedMode = 0
	HighSpeed   SpeedMode = 1
)

func (m SpeedMode) String() string {
	if m == HighSpeed {
		return "high speed"
	}
	return "normal speed"
}

// Clock is an SD clock frequency in Hz.
type Clock uint32

const (
	Clock400K Clock = 400000
	Clock20M  Clock = 20000000
	Clock25M  Clock = 25000000
	Clock40M  Clock = 40000000
	Clock50M  Clock = 50000000
)

func (c Clock) String() string {
	if c >= 1000000 && c%1000000 == 0 {
		return fmt.Sprintf("%d MHz", uint32(c)/1000000)
	}
	return fmt.Sprintf("%d kHz", uint32(c)/1000)
}
