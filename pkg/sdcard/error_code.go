package sdcard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gregLibert/sdmmc/pkg/sdioc"
	"github.com/gregLibert/sdmmc/pkg/sdmmc"
)

// ErrorCode is the sticky diagnostic bitmask of a session. It is cleared at
// the start of power-on and of every block read/write, then accumulates the
// flags of every failure until the next reset.
type ErrorCode uint32

const (
	CodeNone                 ErrorCode = 0
	CodeCmdCRCFail           ErrorCode = 0x00000001
	CodeDataCRCFail          ErrorCode = 0x00000002
	CodeCmdRspTimeout        ErrorCode = 0x00000004
	CodeDataTimeout          ErrorCode = 0x00000008
	CodeTxUnderrun           ErrorCode = 0x00000010
	CodeRxOverrun            ErrorCode = 0x00000020
	CodeAddrMisaligned       ErrorCode = 0x00000040
	CodeBlockLenErr          ErrorCode = 0x00000080
	CodeEraseSeqErr          ErrorCode = 0x00000100
	CodeBadEraseParam        ErrorCode = 0x00000200
	CodeWriteProtViolation   ErrorCode = 0x00000400
	CodeLockUnlockFailed     ErrorCode = 0x00000800
	CodeComCRCFailed         ErrorCode = 0x00001000
	CodeIllegalCmd           ErrorCode = 0x00002000
	CodeCardECCFailed        ErrorCode = 0x00004000
	CodeCCErr                ErrorCode = 0x00008000
	CodeGeneralUnknownErr    ErrorCode = 0x00010000
	CodeStreamReadUnderrun   ErrorCode = 0x00020000
	CodeStreamWriteOverrun   ErrorCode = 0x00040000
	CodeCIDCSDOverwrite      ErrorCode = 0x00080000
	CodeWPEraseSkip          ErrorCode = 0x00100000
	CodeCardECCDisabled      ErrorCode = 0x00200000
	CodeEraseReset           ErrorCode = 0x00400000
	CodeAKESeqErr            ErrorCode = 0x00800000
	CodeInvalidVoltRange     ErrorCode = 0x01000000
	CodeAddrOutOfRange       ErrorCode = 0x02000000
	CodeRequestNotApplicable ErrorCode = 0x04000000
	CodeInvalidParameter     ErrorCode = 0x08000000
	CodeUnsupportedFeature   ErrorCode = 0x10000000
	CodeBusy                 ErrorCode = 0x20000000
	CodeDMA                  ErrorCode = 0x40000000
	CodeTimeout              ErrorCode = 0x80000000
)

var codeNames = []struct {
	code ErrorCode
	name string
}{
	{CodeCmdCRCFail, "command CRC failed"},
	{CodeDataCRCFail, "data CRC failed"},
	{CodeCmdRspTimeout, "command response timeout"},
	{CodeDataTimeout, "data timeout"},
	{CodeTxUnderrun, "transmit FIFO underrun"},
	{CodeRxOverrun, "receive FIFO overrun"},
	{CodeAddrMisaligned, "misaligned address"},
	{CodeBlockLenErr, "block length not allowed"},
	{CodeEraseSeqErr, "erase sequence error"},
	{CodeBadEraseParam, "invalid erase block selection"},
	{CodeWriteProtViolation, "write protect violation"},
	{CodeLockUnlockFailed, "lock/unlock failed"},
	{CodeComCRCFailed, "previous command CRC failed"},
	{CodeIllegalCmd, "illegal command"},
	{CodeCardECCFailed, "card ECC failed"},
	{CodeCCErr, "internal card controller error"},
	{CodeGeneralUnknownErr, "general or unknown error"},
	{CodeStreamReadUnderrun, "stream read underrun"},
	{CodeStreamWriteOverrun, "stream write overrun"},
	{CodeCIDCSDOverwrite, "CID/CSD overwrite"},
	{CodeWPEraseSkip, "write protected blocks skipped by erase"},
	{CodeCardECCDisabled, "command executed without internal ECC"},
	{CodeEraseReset, "erase sequence cleared"},
	{CodeAKESeqErr, "authentication sequence error"},
	{CodeInvalidVoltRange, "no supported voltage range"},
	{CodeAddrOutOfRange, "address out of range"},
	{CodeRequestNotApplicable, "request not applicable"},
	{CodeInvalidParameter, "invalid parameter"},
	{CodeUnsupportedFeature, "unsupported feature"},
	{CodeBusy, "busy"},
	{CodeDMA, "DMA transfer error"},
	{CodeTimeout, "timeout"},
}

// Has reports whether all bits of flag are set.
func (e ErrorCode) Has(flag ErrorCode) bool {
	return e&flag == flag
}

// Verbose returns the description of every set flag, or "none".
func (e ErrorCode) Verbose() string {
	if e == CodeNone {
		return "none"
	}
	var parts []string
	for _, n := range codeNames {
		if e&n.code != 0 {
			parts = append(parts, n.name)
		}
	}
	return fmt.Sprintf("[%08X] %s", uint32(e), strings.Join(parts, ", "))
}

// statusCodes maps card status error bits to their diagnostic flag.
var statusCodes = []struct {
	status sdmmc.CardStatus
	code   ErrorCode
}{
	{sdmmc.StatusOutOfRange, CodeAddrOutOfRange},
	{sdmmc.StatusAddressError, CodeAddrMisaligned},
	{sdmmc.StatusBlockLenError, CodeBlockLenErr},
	{sdmmc.StatusEraseSeqError, CodeEraseSeqErr},
	{sdmmc.StatusEraseParam, CodeBadEraseParam},
	{sdmmc.StatusWPViolation, CodeWriteProtViolation},
	{sdmmc.StatusLockUnlockFailed, CodeLockUnlockFailed},
	{sdmmc.StatusComCRCError, CodeComCRCFailed},
	{sdmmc.StatusIllegalCommand, CodeIllegalCmd},
	{sdmmc.StatusCardECCFailed, CodeCardECCFailed},
	{sdmmc.StatusCCError, CodeCCErr},
	{sdmmc.StatusGeneralError, CodeGeneralUnknownErr},
	{sdmmc.StatusStreamReadUnder, CodeStreamReadUnderrun},
	{sdmmc.StatusStreamWriteOver, CodeStreamWriteOverrun},
	{sdmmc.StatusCIDCSDOverwrite, CodeCIDCSDOverwrite},
	{sdmmc.StatusWPEraseSkip, CodeWPEraseSkip},
	{sdmmc.StatusCardECCDisabled, CodeCardECCDisabled},
	{sdmmc.StatusEraseReset, CodeEraseReset},
	{sdmmc.StatusAKESeqError, CodeAKESeqErr},
}

// CodeFromStatus translates the error bits of a card status.
func CodeFromStatus(s sdmmc.CardStatus) ErrorCode {
	var code ErrorCode
	for _, m := range statusCodes {
		if s&m.status != 0 {
			code |= m.code
		}
	}
	return code
}

// codeFromError derives the diagnostic flags carried by a failed command.
func codeFromError(err error) ErrorCode {
	var se *sdmmc.StatusError
	if errors.As(err, &se) {
		return CodeFromStatus(se.Status.Errors())
	}
	if sdioc.ResultOf(err) == sdioc.Timeout {
		return CodeTimeout
	}
	return CodeNone
}
