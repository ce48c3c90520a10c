package sdmmc

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/gregLibert/sdmmc/pkg/sdioc"
)

// CLIENT & COMMAND PROTOCOL:
// Every SD command goes through the same four steps:
//
// 1. Bus idle: poll the present-state register until the command or the data
//    line is released, at most BusIdlePolls times.
//
// 2. Send: hand the descriptor (index, argument, response type, data present)
//    to the controller.
//
// 3. Wait: poll the interrupt status until ErrorInt or CommandComplete is
//    raised, at most timeout*TicksPerMs times. An error interrupt fails the
//    command, so does a card that is no longer detected.
//
// 4. Decode: read the response registers the response type calls for and
//    classify them (see response.go).
//
// There are no retries at this level. The first failure is returned.

// Wait budgets.
const (
	BusIdlePolls     = 200000
	CommandTimeoutMs = 10000
	EraseTimeoutMs   = 5 * CommandTimeoutMs
	CardDetectMs     = 5000
)

// Client issues SD commands through one controller.
type Client struct {
	Ctrl sdioc.Controller
	// TicksPerMs converts millisecond timeouts into poll counts.
	TicksPerMs uint32
	// Record keeps every exchange in the trace returned by TakeTrace.
	Record bool

	trace Trace
}

// NewClient creates a new Client instance.
func NewClient(ctrl sdioc.Controller, ticksPerMs uint32) *Client {
	return &Client{Ctrl: ctrl, TicksPerMs: ticksPerMs}
}

// TakeTrace returns the exchanges recorded since the last call and clears them.
func (c *Client) TakeTrace() Trace {
	t := c.trace
	c.trace = nil
	return t
}

func (c *Client) budget(timeoutMs uint32) uint64 {
	ticks := uint64(c.TicksPerMs)
	if ticks == 0 {
		ticks = 1
	}
	return uint64(timeoutMs) * ticks
}

// valid reports whether the client drives a supported controller.
func (c *Client) valid() bool {
	return c != nil && c.Ctrl != nil && c.Ctrl.Unit().IsValid()
}

// run executes one command and decodes its response. The returned words hold
// the raw response registers (only the first is meaningful except for R2).
func (c *Client) run(name string, cmd sdioc.Command, timeoutMs uint32) ([4]uint32, error) {
	var words [4]uint32

	if !c.valid() {
		return words, fmt.Errorf("%s: %w", name, sdioc.InvalidParameter)
	}

	err := c.waitBusIdle()
	if err == nil {
		err = c.Ctrl.SendCommand(cmd)
	}
	if err == nil {
		words, err = c.decode(cmd.Response, timeoutMs)
	}

	if c.Record {
		c.trace = append(c.trace, Transaction{Name: name, Command: cmd, Response: words, Result: sdioc.ResultOf(err)})
	}

	if err != nil {
		glog.V(2).Infof("%s %s -> %v", name, cmd, err)
		return words, fmt.Errorf("%s: %w", name, err)
	}
	glog.V(2).Infof("%s %s -> %08X", name, cmd, words[0])
	return words, nil
}

func (c *Client) waitBusIdle() error {
	for i := 0; i < BusIdlePolls; i++ {
		if !c.Ctrl.Status(sdioc.CmdInhibitCmd) || !c.Ctrl.Status(sdioc.CmdInhibitData) {
			return nil
		}
	}
	return fmt.Errorf("bus busy: %w", sdioc.Timeout)
}

// waitResponse waits for the command phase to end and clears the completion
// flags it leaves behind.
func (c *Client) waitResponse(timeoutMs uint32) error {
	count := c.budget(timeoutMs)
	for {
		if count == 0 {
			return fmt.Errorf("no response: %w", sdioc.Timeout)
		}
		count--
		if c.Ctrl.IrqFlag(sdioc.ErrorInt) || c.Ctrl.IrqFlag(sdioc.CommandComplete) {
			break
		}
	}

	if c.Ctrl.IrqFlag(sdioc.ErrorInt) {
		return fmt.Errorf("error interrupt: %w", sdioc.Error)
	}
	if !c.cardDetected() {
		return fmt.Errorf("card not detected: %w", sdioc.AccessRights)
	}

	if c.Ctrl.IrqFlag(sdioc.CommandComplete) {
		c.Ctrl.ClearIrqFlag(sdioc.CommandComplete)
	}
	if c.Ctrl.IrqFlag(sdioc.TransferComplete) {
		c.Ctrl.ClearIrqFlag(sdioc.TransferComplete)
	}
	return nil
}

// cardDetected waits for the card detect state to settle and reports insertion.
// A detect line that never settles counts as no card.
func (c *Client) cardDetected() bool {
	for n := c.budget(CardDetectMs); n > 0; n-- {
		if c.Ctrl.Status(sdioc.CardStateStable) {
			return c.Ctrl.Status(sdioc.CardInserted)
		}
	}
	return false
}
