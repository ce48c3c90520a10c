package sdmmc

import (
	"fmt"

	"github.com/gregLibert/sdmmc/pkg/bits"
	"github.com/gregLibert/sdmmc/pkg/sdioc"
)

// RESPONSE DECODING:
// The response type declared with the command decides what is read back.
//
// - none: only the completion wait.
// - R1:   card status in Resp01, failed when any R1ErrorMask bit is set.
// - R1b:  R1 after the card releases DAT0 (busy signalling).
// - R2:   136-bit CID or CSD, four registers, taken verbatim.
// - R3:   OCR in Resp01, taken verbatim.
// - R6:   published RCA in the upper half of Resp01, the lower half carries
//         three status bits (R6ErrorMask). When one is set the RCA is not used.
// - R7:   interface condition in Resp01, taken verbatim. The caller checks the
//         echoed pattern.

// R6ErrorMask covers the general, illegal command and CRC bits of an R6 response.
const R6ErrorMask uint32 = 1<<13 | 1<<14 | 1<<15

func (c *Client) decode(rt sdioc.ResponseType, timeoutMs uint32) ([4]uint32, error) {
	var words [4]uint32

	if err := c.waitResponse(timeoutMs); err != nil {
		return words, err
	}

	switch rt {
	case sdioc.RespNone:
		return words, nil
	case sdioc.RespR1:
		return c.decodeR1()
	case sdioc.RespR1b:
		if err := c.waitData0(timeoutMs); err != nil {
			return words, err
		}
		return c.decodeR1()
	case sdioc.RespR2:
		words[0] = c.Ctrl.Response(sdioc.Resp01)
		words[1] = c.Ctrl.Response(sdioc.Resp23)
		words[2] = c.Ctrl.Response(sdioc.Resp45)
		words[3] = c.Ctrl.Response(sdioc.Resp67)
		return words, nil
	case sdioc.RespR3, sdioc.RespR7:
		words[0] = c.Ctrl.Response(sdioc.Resp01)
		return words, nil
	case sdioc.RespR6:
		return c.decodeR6()
	default:
		return words, fmt.Errorf("unsupported response type %s: %w", rt, sdioc.InvalidParameter)
	}
}

func (c *Client) decodeR1() ([4]uint32, error) {
	var words [4]uint32
	words[0] = c.Ctrl.Response(sdioc.Resp01)
	status := CardStatus(words[0])
	if status.HasError() {
		return words, &StatusError{Status: status}
	}
	return words, nil
}

func (c *Client) decodeR6() ([4]uint32, error) {
	var words [4]uint32
	r6 := c.Ctrl.Response(sdioc.Resp01)
	if r6&R6ErrorMask != 0 {
		return words, fmt.Errorf("R6 status %04X: %w", bits.Field(r6, 15, 0), sdioc.Error)
	}
	words[0] = r6
	return words, nil
}

// waitData0 waits for the card to release DAT0 after an R1b command.
func (c *Client) waitData0(timeoutMs uint32) error {
	for n := c.budget(timeoutMs); n > 0; n-- {
		if c.Ctrl.Status(sdioc.Data0PinLvl) {
			return nil
		}
	}
	return fmt.Errorf("card busy: %w", sdioc.Timeout)
}

// StatusError is returned when an R1 response carries error bits. It unwraps to
// sdioc.Error and keeps the status so callers can account for the flags.
type StatusError struct {
	Status CardStatus
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("card status %s", e.Status.Verbose())
}

func (e *StatusError) Unwrap() error {
	return sdioc.Error
}
