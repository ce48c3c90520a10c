package sdioc

// AddressMode tells the DMA engine whether an endpoint address advances.
type AddressMode uint8

const (
	AddressFixed AddressMode = iota
	AddressIncrement
)

// Width of one DMA beat.
type Width uint8

const (
	Width8 Width = iota
	Width16
	Width32
)

// Bytes returns the beat size in bytes.
func (w Width) Bytes() int {
	switch w {
	case Width16:
		return 2
	case Width32:
		return 4
	default:
		return 1
	}
}

// Endpoint is one side of a DMA transfer: the controller data FIFO of a unit,
// or a memory buffer.
type Endpoint struct {
	FIFO   Unit // non-zero when the endpoint is the data FIFO of that unit
	Buffer []byte
	Mode   AddressMode
}

// IsFIFO reports whether the endpoint is a controller FIFO.
func (e Endpoint) IsFIFO() bool {
	return e.FIFO != 0
}

// ChannelConfig programs one DMA channel.
type ChannelConfig struct {
	Source      Endpoint
	Destination Endpoint
	BlockSize   uint16 // beats per block
	Count       uint16 // blocks
	Width       Width
}

// Bytes returns the transfer size.
func (c ChannelConfig) Bytes() int {
	return int(c.BlockSize) * int(c.Count) * c.Width.Bytes()
}

// TriggerEvent is the peripheral event that paces a DMA channel.
type TriggerEvent uint16

// Event numbers of the SDIOC DMA requests.
const (
	EventSDIOC1ReadRequest  TriggerEvent = 444
	EventSDIOC1WriteRequest TriggerEvent = 445
	EventSDIOC2ReadRequest  TriggerEvent = 447
	EventSDIOC2WriteRequest TriggerEvent = 448
)

// ReadRequest returns the FIFO-readable DMA event of the unit.
func (u Unit) ReadRequest() TriggerEvent {
	if u == Unit2 {
		return EventSDIOC2ReadRequest
	}
	return EventSDIOC1ReadRequest
}

// WriteRequest returns the FIFO-writable DMA event of the unit.
func (u Unit) WriteRequest() TriggerEvent {
	if u == Unit2 {
		return EventSDIOC2WriteRequest
	}
	return EventSDIOC1WriteRequest
}
