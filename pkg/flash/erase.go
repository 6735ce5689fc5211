/*
   CartFlash - cartridge flash save driver
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of CartFlash.

   CartFlash is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   CartFlash is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with CartFlash. If not, see <http://www.gnu.org/licenses/>.
*/

package flash

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/cartflash/pkg/flash/protocol"
)

// check context and clock only every so many polls
const erasePollCheckInterval = 256

/*
	eraseChip erases the whole chip and waits until the status offset reads
	erased. Waiting is bounded by the erase budget, the optional erase timeout,
	and ctx. When any of them runs out, ErrChipUnresponsive is returned.
*/
func (d *Driver) eraseChip(ctx context.Context) error {

	log.Debug("erasing chip")
	start := time.Now()

	if err := d.sendCommand(protocol.CmdEraseSetup); err != nil {
		return err
	}
	if err := d.sendCommand(protocol.CmdEraseChip); err != nil {
		return err
	}

	for poll := 0; poll < d.config.EraseBudget; poll++ {

		v, err := d.region.Read8(protocol.StatusOffset)
		if err != nil {
			return err
		}

		if v == protocol.Erased {
			log.WithFields(log.Fields{
				"polls":    poll + 1,
				"duration": time.Since(start),
			}).Debug("chip erased")
			return nil
		}

		if poll%erasePollCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w: %w", ErrChipUnresponsive, err)
			}
			if d.config.EraseTimeout > 0 &&
				time.Since(start) > d.config.EraseTimeout {
				return fmt.Errorf("%w: erase not complete after %v",
					ErrChipUnresponsive, d.config.EraseTimeout)
			}
		}
	}

	return fmt.Errorf("%w: erase not complete after %d polls",
		ErrChipUnresponsive, d.config.EraseBudget)
}
