package sdioc

import (
	"errors"
	"fmt"
)

// Result is the outcome class of a controller, command or session operation.
// Any value other than Ok satisfies error, so layers return it (usually
// wrapped) and callers classify failures with ResultOf.
type Result uint8

const (
	Ok Result = iota
	// Error: the exchange completed but carries protocol error bits.
	Error
	// Timeout: a bounded busy-wait exhausted its budget.
	Timeout
	// InvalidParameter: malformed call, nothing was sent to the hardware.
	InvalidParameter
	// AccessRights: card absent, locked, or command class not supported.
	AccessRights
	// OperationInProgress: the card has not finished powering up.
	OperationInProgress
)

func (r Result) String() string {
	switch r {
	case Ok:
		return "Ok"
	case Error:
		return "Error"
	case Timeout:
		return "Timeout"
	case InvalidParameter:
		return "InvalidParameter"
	case AccessRights:
		return "AccessRights"
	case OperationInProgress:
		return "OperationInProgress"
	default:
		return fmt.Sprintf("Result(%d)", uint8(r))
	}
}

// Error implements error.
func (r Result) Error() string {
	return r.Verbose()
}

// Verbose returns a human-readable description of the result.
func (r Result) Verbose() string {
	switch r {
	case Ok:
		return "ok"
	case Error:
		return "protocol error reported by card or controller"
	case Timeout:
		return "timed out waiting for card or controller"
	case InvalidParameter:
		return "invalid parameter"
	case AccessRights:
		return "card absent, locked or operation not supported"
	case OperationInProgress:
		return "card still busy powering up"
	default:
		return r.String()
	}
}

// ResultOf classifies an error returned by this stack. nil maps to Ok and
// errors carrying no Result map to Error.
func ResultOf(err error) Result {
	if err == nil {
		return Ok
	}
	var r Result
	if errors.As(err, &r) {
		return r
	}
	return Error
}
