package sdsim

import (
	"fmt"

	"github.com/gregLibert/sdmmc/pkg/sdioc"
)

// Channel is a DMA channel wired between the card FIFO and memory. An enabled
// channel whose trigger matches the direction of a data command moves the
// whole payload at once.
type Channel struct {
	card    *Card
	cfg     sdioc.ChannelConfig
	enabled bool
	trigger sdioc.TriggerEvent

	// Configs lists every configuration applied, in order.
	Configs []sdioc.ChannelConfig
	// Transfers counts the completed transfers.
	Transfers int
}

func (ch *Channel) Configure(cfg sdioc.ChannelConfig) error {
	if cfg.Source.IsFIFO() == cfg.Destination.IsFIFO() {
		return fmt.Errorf("dma: exactly one endpoint must be a FIFO: %w", sdioc.InvalidParameter)
	}
	mem := cfg.Destination
	if mem.IsFIFO() {
		mem = cfg.Source
	}
	if len(mem.Buffer) < cfg.Bytes() {
		return fmt.Errorf("dma: %d byte buffer for %d bytes: %w", len(mem.Buffer), cfg.Bytes(), sdioc.InvalidParameter)
	}
	ch.cfg = cfg
	ch.enabled = false
	ch.Configs = append(ch.Configs, cfg)
	return nil
}

func (ch *Channel) Enable() {
	ch.enabled = true
}

func (ch *Channel) ClearFlags() {}

func (ch *Channel) SetTrigger(ev sdioc.TriggerEvent) {
	ch.trigger = ev
}

// Trigger returns the event the channel waits for.
func (ch *Channel) Trigger() sdioc.TriggerEvent { return ch.trigger }

func (ch *Channel) armed(ev sdioc.TriggerEvent) bool {
	return ch.enabled && ch.trigger == ev
}

func (ch *Channel) done() {
	ch.enabled = false
	ch.Transfers++
}
