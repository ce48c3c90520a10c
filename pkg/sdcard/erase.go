package sdcard

import (
	"fmt"

	"github.com/gregLibert/sdmmc/pkg/sdioc"
)

// ClassErase is the CCC bit of the erase command class (class 5).
const ClassErase uint16 = 0x20

const lockedBit uint32 = 0x02000000

// Erase erases blocks start through end. The range is checked against the
// native block count. Cards without the erase class, or locked according to
// the last response, refuse with sdioc.AccessRights.
func (c *Card) Erase(start, end, timeoutMs uint32) error {
	if !c.valid() {
		return fmt.Errorf("erase: %w", sdioc.InvalidParameter)
	}
	if start > end || end > c.info.BlockCount {
		c.errorCode |= CodeBadEraseParam
		return fmt.Errorf("erase %d..%d of %d: %w", start, end, c.info.BlockCount, sdioc.InvalidParameter)
	}
	if c.info.Class&ClassErase == 0 {
		c.errorCode |= CodeRequestNotApplicable
		return fmt.Errorf("erase: command class %03X: %w", c.info.Class, sdioc.AccessRights)
	}
	if c.ctrl.Response(sdioc.Resp01)&lockedBit != 0 {
		c.errorCode |= CodeLockUnlockFailed
		return fmt.Errorf("erase: card locked: %w", sdioc.AccessRights)
	}

	from, to := c.cardAddress(start), c.cardAddress(end)

	if err := c.track(c.cmd.EraseWrBlkStart(from)); err != nil {
		return fmt.Errorf("erase: %w", err)
	}
	if err := c.track(c.cmd.EraseWrBlkEnd(to)); err != nil {
		return fmt.Errorf("erase: %w", err)
	}
	if err := c.track(c.cmd.Erase()); err != nil {
		return fmt.Errorf("erase: %w", err)
	}
	if err := c.checkReadyForData(c.budget(timeoutMs, c.timing.TicksPerMs)); err != nil {
		return fmt.Errorf("erase: %w", err)
	}
	return nil
}
