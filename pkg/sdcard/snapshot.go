package sdcard

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"

	"github.com/gregLibert/sdmmc/pkg/tlv"
)

// REGISTER SNAPSHOT:
// A snapshot freezes the identification state of an initialized card as
// BER-TLV, using private class tags inside template E1:
//
//   DF01 OCR, DF02 CID, DF03 CSD, DF04 SCR (words, most significant first)
//   DF05 RCA, DF06 card type, DF07 version, DF08 logical block count

// Snapshot is the TLV form of the card registers.
type Snapshot struct {
	OCR           []byte       `tlv:"DF01" fmt:"word"`
	CID           []byte       `tlv:"DF02" fmt:"word"`
	CSD           []byte       `tlv:"DF03" fmt:"word"`
	SCR           []byte       `tlv:"DF04" fmt:"word"`
	RCA           []byte       `tlv:"DF05" fmt:"int"`
	Type          []byte       `tlv:"DF06" fmt:"int"`
	Version       []byte       `tlv:"DF07" fmt:"int"`
	LogBlockCount []byte       `tlv:"DF08" fmt:"int"`
	Unknown       []bertlv.TLV `tlv:",unknown"`
}

type snapshotTemplate struct {
	Snapshot *Snapshot `tlv:"E1"`
}

// Snapshot captures the current registers and identification info.
func (c *Card) Snapshot() *Snapshot {
	s := &Snapshot{
		OCR:           tlv.Words(c.regs.OCR),
		CID:           tlv.Words(c.regs.CID[3], c.regs.CID[2], c.regs.CID[1], c.regs.CID[0]),
		CSD:           tlv.Words(c.regs.CSD[3], c.regs.CSD[2], c.regs.CSD[1], c.regs.CSD[0]),
		RCA:           binary.BigEndian.AppendUint16(nil, c.regs.RCA),
		Type:          []byte{byte(c.info.Type)},
		Version:       []byte{byte(c.info.Version)},
		LogBlockCount: tlv.Words(c.info.LogBlockCount),
	}
	if c.regs.SCR != [2]uint32{} {
		s.SCR = tlv.Words(c.regs.SCR[0], c.regs.SCR[1])
	}
	return s
}

// Encode serializes the snapshot inside its E1 template.
func (s *Snapshot) Encode() ([]byte, error) {
	return tlv.Marshal(snapshotTemplate{Snapshot: s})
}

// ParseSnapshot reads a snapshot produced by Encode.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty data cannot be parsed")
	}

	var tmpl snapshotTemplate
	if err := tlv.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("failed to map structure: %w", err)
	}
	if tmpl.Snapshot == nil {
		return nil, fmt.Errorf("no E1 register template")
	}
	return tmpl.Snapshot, nil
}

// Registers rebuilds the raw register words held by the snapshot.
func (s *Snapshot) Registers() (Registers, error) {
	var regs Registers

	ocr, err := fixedWords("OCR", s.OCR, 1)
	if err != nil {
		return regs, err
	}
	regs.OCR = ocr[0]

	cid, err := fixedWords("CID", s.CID, 4)
	if err != nil {
		return regs, err
	}
	regs.CID = [4]uint32{cid[3], cid[2], cid[1], cid[0]}

	csd, err := fixedWords("CSD", s.CSD, 4)
	if err != nil {
		return regs, err
	}
	regs.CSD = [4]uint32{csd[3], csd[2], csd[1], csd[0]}

	if len(s.SCR) > 0 {
		scr, err := fixedWords("SCR", s.SCR, 2)
		if err != nil {
			return regs, err
		}
		regs.SCR = [2]uint32{scr[0], scr[1]}
	}

	if len(s.RCA) != 2 {
		return regs, fmt.Errorf("RCA: %d bytes", len(s.RCA))
	}
	regs.RCA = binary.BigEndian.Uint16(s.RCA)
	return regs, nil
}

func fixedWords(name string, data []byte, n int) ([]uint32, error) {
	words, err := tlv.ToWords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(words) != n {
		return nil, fmt.Errorf("%s: %d words, want %d", name, len(words), n)
	}
	return words, nil
}

// Describe generates a report of the snapshot content.
func (s *Snapshot) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== SD CARD REGISTERS ===")
	tlv.WriteStructFields(&sb, "Card", s)
	return strings.TrimRight(sb.String(), "\n")
}

// Describe reports the session state: card identity, geometry, last status and
// error code, followed by the register snapshot.
func (c *Card) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== SD CARD SESSION ===\n")
	fmt.Fprintf(&sb, "    - Type: %s (v%s)\n", c.info.Type, c.info.Version)
	fmt.Fprintf(&sb, "    - RCA: %04X\n", c.info.RCA)
	fmt.Fprintf(&sb, "    - Geometry: %d x %d bytes (native %d x %d)\n", c.info.LogBlockCount, c.info.LogBlockSize, c.info.BlockCount, c.info.BlockSize)
	fmt.Fprintf(&sb, "    - Command classes: %03X\n", c.info.Class)
	fmt.Fprintf(&sb, "    - Mode: %s\n", c.mode)
	fmt.Fprintf(&sb, "    - Last status: %s\n", c.status.Verbose())
	fmt.Fprintf(&sb, "    - Error code: %s\n", c.errorCode.Verbose())
	sb.WriteString(c.Snapshot().Describe())
	return sb.String()
}
