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
	"fmt"

	"github.com/xelalexv/cartflash/pkg/flash/protocol"
)

// sendCommand issues the unlock sequence followed by cmd. This has to precede
// every erase and program operation, and the order of the writes matters.
func (d *Driver) sendCommand(cmd byte) error {
	if err := d.region.Write8(protocol.UnlockAddr1, protocol.UnlockByte1); err != nil {
		return fmt.Errorf("error sending command 0x%02x: %w", cmd, err)
	}
	if err := d.region.Write8(protocol.UnlockAddr2, protocol.UnlockByte2); err != nil {
		return fmt.Errorf("error sending command 0x%02x: %w", cmd, err)
	}
	if err := d.region.Write8(protocol.UnlockAddr1, cmd); err != nil {
		return fmt.Errorf("error sending command 0x%02x: %w", cmd, err)
	}
	return nil
}
