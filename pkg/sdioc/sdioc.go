// Package sdioc describes the SD host controller (SDIOC) the card stack drives.
//
// The stack never touches registers itself. A platform supplies a Controller
// (command path, response registers, present-state and interrupt flags, data
// FIFO, bus configuration) and optionally a DMA channel able to move blocks
// between the controller FIFO and memory. Everything above this package is
// written against these two interfaces, which is also what makes the stack
// testable with a simulated card or a mock.
//
// Enumerated values mirror the HC32F46x SDIOC driver so a register-level
// implementation can pass them straight through.
package sdioc

import "fmt"

//go:generate mockgen -destination mock_sdioc/mock_sdioc.go github.com/gregLibert/sdmmc/pkg/sdioc Controller,DMA

// Unit identifies one SDIOC controller instance.
type Unit uint8

const (
	Unit1 Unit = 1
	Unit2 Unit = 2
)

// IsValid reports whether the unit names a controller the stack supports.
func (u Unit) IsValid() bool {
	return u == Unit1 || u == Unit2
}

func (u Unit) String() string {
	return fmt.Sprintf("SDIOC%d", uint8(u))
}

// HostConfig is the controller setup applied by Controller.Init.
type HostConfig struct {
	Clock     Clock
	BusWidth  BusWidth
	SpeedMode SpeedMode
}

// Controller is the set of primitive operations of one SD host controller.
type Controller interface {
	// Unit returns the controller instance this handle drives.
	Unit() Unit
	// Init enables the controller clock and resets it into cfg.
	Init(cfg HostConfig) error

	SendCommand(cmd Command) error
	Response(reg ResponseRegister) uint32

	Status(f StatusFlag) bool
	IrqFlag(f IrqFlag) bool
	ClearIrqFlag(f IrqFlag)

	ConfigureData(cfg DataConfig) error
	SetDataTimeout(t DataTimeout) error
	ReadBuffer(p []byte) error
	WriteBuffer(p []byte) error

	SetBusWidth(w BusWidth) error
	SetSpeedMode(m SpeedMode)
	SetClock(c Clock) error
}

// DMA is one channel of the DMA controller wired to an SDIOC unit.
type DMA interface {
	Configure(cfg ChannelConfig) error
	Enable()
	ClearFlags()
	SetTrigger(ev TriggerEvent)
}
