package sdcard

import (
	"fmt"

	"github.com/gregLibert/sdmmc/pkg/bits"
	"github.com/gregLibert/sdmmc/pkg/sdioc"
)

// CSD LAYOUT:
// The controller strips the CRC, so the four response registers carry CSD bits
// [127:8]. Laid out least significant byte of CSD[0] first they give a 15-byte
// view where byte n holds CSD bits [8n+15 : 8n+8].
//
//   byte   CSD version 1.0                    CSD version 2.0
//   4      bit7: C_SIZE_MULT[0]               -
//   5      bits1-0: C_SIZE_MULT[2:1]          C_SIZE[7:0]
//   6      bits7-6: C_SIZE[1:0]               C_SIZE[15:8]
//   7      C_SIZE[9:2]                        bits5-0: C_SIZE[21:16]
//   8      bits1-0: C_SIZE[11:10]             -
//   9      low nibble READ_BL_LEN, high nibble CCC[3:0]
//   10     CCC[11:4]
//   14     CSD_STRUCTURE (0x00 for 1.0, 0x40 for 2.0)

// CSD is the part of the card specific data register the session uses.
type CSD struct {
	Version   CardVersion
	Class     uint16
	ReadBlLen uint8
	// CSize and SizeMult are the raw size fields. SizeMult is unused for 2.0.
	CSize    uint32
	SizeMult uint8
}

// ParseCSD decodes the raw CSD register words.
func ParseCSD(words [4]uint32) CSD {
	b := bits.LittleEndian(words[0], words[1], words[2], words[3])

	csd := CSD{
		ReadBlLen: bits.GetRange(b[9], 4, 1),
		Class:     uint16(b[10])<<4 | uint16(bits.GetRange(b[9], 8, 5)),
	}

	if words[3]&0x00FF0000 == 0x00400000 {
		csd.Version = Version2x
		csd.CSize = uint32(bits.GetRange(b[7], 6, 1))<<16 | uint32(b[6])<<8 | uint32(b[5])
		return csd
	}

	csd.Version = Version1x
	csd.CSize = uint32(bits.GetRange(b[8], 2, 1))<<10 | uint32(b[7])<<2 | uint32(bits.GetRange(b[6], 8, 7))
	csd.SizeMult = bits.GetRange(b[5], 2, 1)<<1 | bits.GetRange(b[4], 8, 8)
	return csd
}

// BlockCount is the card capacity in native blocks. For 1.0 cards with a 1024
// or 2048 byte read block length the count is scaled by 2 or 4.
func (c CSD) BlockCount() uint32 {
	if c.Version == Version2x {
		return (c.CSize + 1) << 10
	}
	n := (c.CSize + 1) << (c.SizeMult + 2)
	switch c.ReadBlLen {
	case 10:
		n *= 2
	case 11:
		n *= 4
	}
	return n
}

// BlockSize is 2^READ_BL_LEN.
func (c CSD) BlockSize() uint32 {
	return 1 << c.ReadBlLen
}

// LogBlockCount is the capacity in 512-byte logical blocks.
func (c CSD) LogBlockCount() uint32 {
	return c.BlockCount() * (c.BlockSize() / BlockSize)
}

func (c CSD) String() string {
	return fmt.Sprintf("CSD %s: C_SIZE=%d C_SIZE_MULT=%d READ_BL_LEN=%d CCC=%03X", c.Version, c.CSize, c.SizeMult, c.ReadBlLen, c.Class)
}

// GetCardCSD decodes the captured CSD into the session info. The CSD
// structure only selects the field layout; the card version is the one power
// on decided from CMD8.
func (c *Card) GetCardCSD() error {
	if !c.valid() {
		return fmt.Errorf("CSD: %w", sdioc.InvalidParameter)
	}
	csd := ParseCSD(c.regs.CSD)
	c.info.Class = csd.Class
	c.info.BlockCount = csd.BlockCount()
	c.info.BlockSize = csd.BlockSize()
	c.info.LogBlockCount = csd.LogBlockCount()
	c.info.LogBlockSize = BlockSize
	return nil
}
