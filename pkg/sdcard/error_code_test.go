package sdcard

import (
	"fmt"
	"testing"

	"github.com/gregLibert/sdmmc/pkg/sdioc"
	"github.com/gregLibert/sdmmc/pkg/sdmmc"
)

func TestCodeFromStatus(t *testing.T) {
	tests := []struct {
		name   string
		status sdmmc.CardStatus
		want   ErrorCode
	}{
		{"Clean status", sdmmc.NewCardStatus(sdmmc.StateTran, sdmmc.StatusReadyForData), CodeNone},
		{"Range and alignment", sdmmc.StatusOutOfRange | sdmmc.StatusAddressError, CodeAddrOutOfRange | CodeAddrMisaligned},
		{"Erase errors", sdmmc.StatusEraseParam | sdmmc.StatusEraseSeqError, CodeBadEraseParam | CodeEraseSeqErr},
		{"Generic error", sdmmc.StatusGeneralError, CodeGeneralUnknownErr},
		{"Locked is not an error", sdmmc.StatusCardIsLocked, CodeNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeFromStatus(tt.status); got != tt.want {
				t.Errorf("CodeFromStatus() = %s, want %s", got.Verbose(), tt.want.Verbose())
			}
		})
	}
}

func TestCodeFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"Status error", fmt.Errorf("CMD17: %w", &sdmmc.StatusError{Status: sdmmc.StatusBlockLenError}), CodeBlockLenErr},
		{"Timeout", fmt.Errorf("CMD13: %w", sdioc.Timeout), CodeTimeout},
		{"Plain error", sdioc.Error, CodeNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := codeFromError(tt.err); got != tt.want {
				t.Errorf("codeFromError() = %s, want %s", got.Verbose(), tt.want.Verbose())
			}
		})
	}
}

func TestErrorCodeVerbose(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{CodeNone, "none"},
		{CodeAddrOutOfRange, "[02000000] address out of range"},
		{CodeTimeout | CodeCmdCRCFail, "[80000001] command CRC failed, timeout"},
	}
	for _, tt := range tests {
		if got := tt.code.Verbose(); got != tt.want {
			t.Errorf("Verbose() = %q, want %q", got, tt.want)
		}
	}
}
