package sdcard

import (
	"encoding/binary"
	"fmt"

	"github.com/gregLibert/sdmmc/pkg/bits"
	"github.com/gregLibert/sdmmc/pkg/sdioc"
	"github.com/gregLibert/sdmmc/pkg/sdmmc"
)

const (
	scrLen                = 8
	sdStatusLen           = 64
	registerReadTimeoutMs = 1000
)

// SCR is the decoded SD configuration register.
type SCR struct {
	Structure   uint8
	SpecVersion uint8
	// Spec3 and Spec4 refine SpecVersion 2.
	Spec3 bool
	Spec4 bool
	// DataAfterErase is the value of erased bits.
	DataAfterErase uint8
	Security       uint8
	// BusWidths has bit 0 for 1-bit and bit 2 for 4-bit support.
	BusWidths uint8
}

// ParseSCR decodes the SCR as read from the card, most significant word first.
func ParseSCR(words [2]uint32) SCR {
	hi := words[0]
	return SCR{
		Structure:      uint8(bits.Field(hi, 31, 28)),
		SpecVersion:    uint8(bits.Field(hi, 27, 24)),
		DataAfterErase: uint8(bits.Field(hi, 23, 23)),
		Security:       uint8(bits.Field(hi, 22, 20)),
		BusWidths:      uint8(bits.Field(hi, 19, 16)),
		Spec3:          bits.Flag(hi, 15),
		Spec4:          bits.Flag(hi, 10),
	}
}

// Supports4Bit reports 4-bit bus support.
func (s SCR) Supports4Bit() bool {
	return s.BusWidths&0x4 != 0
}

// Version returns the physical layer version the card claims.
func (s SCR) Version() string {
	switch {
	case s.SpecVersion == 0:
		return "1.0"
	case s.SpecVersion == 1:
		return "1.10"
	case s.SpecVersion == 2 && s.Spec4:
		return "4.xx"
	case s.SpecVersion == 2 && s.Spec3:
		return "3.0x"
	case s.SpecVersion == 2:
		return "2.00"
	default:
		return fmt.Sprintf("unknown (%d)", s.SpecVersion)
	}
}

// ReadSCR reads the SD configuration register with ACMD51 and keeps it in the
// session registers.
func (c *Card) ReadSCR() (SCR, error) {
	if !c.valid() {
		return SCR{}, fmt.Errorf("SCR: %w", sdioc.InvalidParameter)
	}

	var raw [scrLen]byte
	if err := c.readRegister(raw[:], registerReadTimeoutMs, c.appCommand(c.cmd.AppSendSCR)); err != nil {
		return SCR{}, fmt.Errorf("SCR: %w", err)
	}

	c.regs.SCR = [2]uint32{binary.BigEndian.Uint32(raw[0:4]), binary.BigEndian.Uint32(raw[4:8])}
	return ParseSCR(c.regs.SCR), nil
}

// ReadSDStatus reads the 64-byte SD status with ACMD13.
func (c *Card) ReadSDStatus() ([sdStatusLen]byte, error) {
	var raw [sdStatusLen]byte
	if !c.valid() {
		return raw, fmt.Errorf("SD status: %w", sdioc.InvalidParameter)
	}
	if err := c.readRegister(raw[:], registerReadTimeoutMs, c.appCommand(c.cmd.AppSDStatus)); err != nil {
		return raw, fmt.Errorf("SD status: %w", err)
	}
	return raw, nil
}

// Status asks the card for its status with CMD13.
func (c *Card) Status() (sdmmc.CardStatus, error) {
	if !c.valid() {
		return 0, fmt.Errorf("status: %w", sdioc.InvalidParameter)
	}
	status, err := c.cmd.SendStatus(c.info.RCA)
	return status, c.track(status, err)
}

// appCommand prefixes an application command with CMD55 for the session RCA.
func (c *Card) appCommand(acmd func() (sdmmc.CardStatus, error)) func() error {
	return func() error {
		if err := c.track(c.cmd.AppCmd(uint32(c.info.RCA) << 16)); err != nil {
			return err
		}
		return c.track(acmd())
	}
}
