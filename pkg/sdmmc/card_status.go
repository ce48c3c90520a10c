package sdmmc

import (
	"fmt"
	"strings"

	"github.com/gregLibert/sdmmc/pkg/bits"
)

// CARD STATUS (R1):
// Every R1/R1b response carries the 32-bit card status register.
//
// - Bits 31-13: error and condition flags (OUT_OF_RANGE ... ERASE_RESET).
//   A subset of them, R1ErrorMask, means the command failed.
// - Bits 12-9: CURRENT_STATE, the card state machine position when the
//   command was received (idle, ready, ident, stby, tran, data, rcv, prg, dis).
// - Bit 8: READY_FOR_DATA, the buffer is empty and the card accepts data.
// - Bit 5: APP_CMD, the next command is interpreted as an ACMD.
// - Bit 3: AKE_SEQ_ERROR.

// CardStatus is the card status register returned in R1 responses.
type CardStatus uint32

// Card status bits.
const (
	StatusAKESeqError      CardStatus = 1 << 3
	StatusAppCmd           CardStatus = 1 << 5
	StatusReadyForData     CardStatus = 1 << 8
	StatusEraseReset       CardStatus = 1 << 13
	StatusCardECCDisabled  CardStatus = 1 << 14
	StatusWPEraseSkip      CardStatus = 1 << 15
	StatusCIDCSDOverwrite  CardStatus = 1 << 16
	StatusStreamWriteOver  CardStatus = 1 << 17
	StatusStreamReadUnder  CardStatus = 1 << 18
	StatusGeneralError     CardStatus = 1 << 19
	StatusCCError          CardStatus = 1 << 20
	StatusCardECCFailed    CardStatus = 1 << 21
	StatusIllegalCommand   CardStatus = 1 << 22
	StatusComCRCError      CardStatus = 1 << 23
	StatusLockUnlockFailed CardStatus = 1 << 24
	StatusCardIsLocked     CardStatus = 1 << 25
	StatusWPViolation      CardStatus = 1 << 26
	StatusEraseParam       CardStatus = 1 << 27
	StatusEraseSeqError    CardStatus = 1 << 28
	StatusBlockLenError    CardStatus = 1 << 29
	StatusAddressError     CardStatus = 1 << 30
	StatusOutOfRange       CardStatus = 1 << 31
)

// R1ErrorMask selects the card status bits that make an R1 response a failure.
const R1ErrorMask CardStatus = 0xFDFFE008

var statusNames = []struct {
	bit  CardStatus
	name string
}{
	{StatusOutOfRange, "OUT_OF_RANGE"},
	{StatusAddressError, "ADDRESS_ERROR"},
	{StatusBlockLenError, "BLOCK_LEN_ERROR"},
	{StatusEraseSeqError, "ERASE_SEQ_ERROR"},
	{StatusEraseParam, "ERASE_PARAM"},
	{StatusWPViolation, "WP_VIOLATION"},
	{StatusCardIsLocked, "CARD_IS_LOCKED"},
	{StatusLockUnlockFailed, "LOCK_UNLOCK_FAILED"},
	{StatusComCRCError, "COM_CRC_ERROR"},
	{StatusIllegalCommand, "ILLEGAL_COMMAND"},
	{StatusCardECCFailed, "CARD_ECC_FAILED"},
	{StatusCCError, "CC_ERROR"},
	{StatusGeneralError, "ERROR"},
	{StatusStreamReadUnder, "STREAM_READ_UNDERRUN"},
	{StatusStreamWriteOver, "STREAM_WRITE_OVERRUN"},
	{StatusCIDCSDOverwrite, "CSD_OVERWRITE"},
	{StatusWPEraseSkip, "WP_ERASE_SKIP"},
	{StatusCardECCDisabled, "CARD_ECC_DISABLED"},
	{StatusEraseReset, "ERASE_RESET"},
	{StatusAppCmd, "APP_CMD"},
	{StatusAKESeqError, "AKE_SEQ_ERROR"},
}

// CardState is the CURRENT_STATE field of the card status.
type CardState uint8

const (
	StateIdle CardState = iota
	StateReady
	StateIdent
	StateStby
	StateTran
	StateData
	StateRcv
	StatePrg
	StateDis
)

func (s CardState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateReady:
		return "Ready"
	case StateIdent:
		return "Ident"
	case StateStby:
		return "Stby"
	case StateTran:
		return "Tran"
	case StateData:
		return "SendData"
	case StateRcv:
		return "RcvData"
	case StatePrg:
		return "Pgm"
	case StateDis:
		return "Dis"
	default:
		return fmt.Sprintf("Reserved(%d)", uint8(s))
	}
}

// NewCardStatus builds a status word in the given state with extra bits set.
func NewCardStatus(state CardState, flags CardStatus) CardStatus {
	return CardStatus(uint32(state)<<9) | flags
}

// State returns CURRENT_STATE.
func (s CardStatus) State() CardState {
	return CardState(bits.Field(uint32(s), 12, 9))
}

// ReadyForData reports READY_FOR_DATA.
func (s CardStatus) ReadyForData() bool {
	return s&StatusReadyForData != 0
}

// Errors returns the error bits of the status that fail an R1 response.
func (s CardStatus) Errors() CardStatus {
	return s & R1ErrorMask
}

// HasError reports whether any R1 error bit is set.
func (s CardStatus) HasError() bool {
	return s.Errors() != 0
}

// Flags lists the names of the set flag bits, most significant first.
func (s CardStatus) Flags() []string {
	var names []string
	for _, f := range statusNames {
		if s&f.bit != 0 {
			names = append(names, f.name)
		}
	}
	return names
}

// Verbose returns a human-readable description of the status.
func (s CardStatus) Verbose() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%08X] state=%s", uint32(s), s.State())
	if s.ReadyForData() {
		sb.WriteString(" ready-for-data")
	}
	if flags := s.Flags(); len(flags) > 0 {
		sb.WriteString(" flags=")
		sb.WriteString(strings.Join(flags, ","))
	}
	return sb.String()
}
