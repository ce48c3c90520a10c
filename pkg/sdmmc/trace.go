package sdmmc

import (
	"fmt"
	"strings"

	"github.com/gregLibert/sdmmc/pkg/sdioc"
)

// TRANSACTION:
// A Transaction is one command on the CMD line and the response registers read
// back for it. Data moved on the DAT lines is not part of it.
//
// TRACE:
// A Trace is the chronological list of Transactions behind one logical
// operation. Initializing a card, for example, is a few dozen exchanges
// (CMD0, CMD8, repeated CMD55/ACMD41, CMD2, CMD3, CMD9, CMD7, ...). The trace
// keeps them all so a failing step can be inspected afterwards.

// Transaction represents a completed command/response pair.
type Transaction struct {
	Name     string
	Command  sdioc.Command
	Response [4]uint32
	Result   sdioc.Result
}

// IsSuccess checks if the command completed without error.
func (t *Transaction) IsSuccess() bool {
	return t.Result == sdioc.Ok
}

// String returns a readable one-line summary.
func (t *Transaction) String() string {
	return fmt.Sprintf("%-6s arg=%08X resp=%08X %s", t.Name, t.Command.Argument, t.Response[0], t.Result)
}

// Trace is a sequence of transactions.
type Trace []Transaction

// Last returns the final transaction of the trace.
// Returns nil if the trace is empty.
func (t Trace) Last() *Transaction {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// IsSuccess checks if the FINAL transaction in the trace was successful.
func (t Trace) IsSuccess() bool {
	last := t.Last()
	if last == nil {
		return false
	}
	return last.IsSuccess()
}

// Names lists the command names in order, e.g. ["CMD16", "CMD17"].
func (t Trace) Names() []string {
	names := make([]string, 0, len(t))
	for _, tx := range t {
		names = append(names, tx.Name)
	}
	return names
}

// Find returns the first transaction with the given name, or nil.
func (t Trace) Find(name string) *Transaction {
	for i := range t {
		if t[i].Name == name {
			return &t[i]
		}
	}
	return nil
}

// Describe renders the trace one transaction per line.
func (t Trace) Describe() string {
	lines := make([]string, 0, len(t))
	for i := range t {
		lines = append(lines, t[i].String())
	}
	return strings.Join(lines, "\n")
}
