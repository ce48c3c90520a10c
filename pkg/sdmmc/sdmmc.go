/*
Package sdmmc implements the SD physical layer command set on top of an SD host controller (package sdioc).

Each SD command (CMDn) and application command (ACMDn) is a method of Client. A method builds the command descriptor, waits for the bus, sends it, waits for completion and decodes the response according to its format.

# Response formats

  - R1 / R1b: card status (see CardStatus). Error bits fail the command with a *StatusError.
  - R2: the 128-bit CID or CSD register.
  - R3: the OCR register.
  - R6: the relative card address published by the card.
  - R7: the echoed interface condition.

# Errors

Failures unwrap to an sdioc.Result: InvalidParameter when the controller handle is unusable, Timeout when a bounded wait runs out, Error when the card or controller reports an error, AccessRights when the card has disappeared. The command layer never retries.

# Usage Example: Reading the card status

	c := sdmmc.NewClient(ctrl, ticksPerMs)
	status, err := c.SendStatus(rca)
	if err != nil {
	    log.Printf("CMD13 failed (%s): %v", sdioc.ResultOf(err), err)
	    return
	}
	fmt.Println(status.Verbose())
*/
package sdmmc
