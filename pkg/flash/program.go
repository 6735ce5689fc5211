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
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/cartflash/pkg/flash/protocol"
)

/*
	programByte programs v at off. Flash writes may not take on the first
	try, so each attempt is verified by reading back the byte until it matches,
	for up to ProgramPolls reads. After ProgramAttempts failed attempts, a
	ProgramError is returned. A byte is never considered programmed without
	readback confirmation.
*/
func (d *Driver) programByte(off uint32, v byte) error {

	var actual byte

	for attempt := 1; attempt <= d.config.ProgramAttempts; attempt++ {

		if err := d.sendCommand(protocol.CmdProgram); err != nil {
			return err
		}
		if err := d.region.Write8(off, v); err != nil {
			return err
		}

		for poll := 0; poll < d.config.ProgramPolls; poll++ {
			var err error
			if actual, err = d.region.Read8(off); err != nil {
				return err
			}
			if actual == v {
				return nil
			}
		}

		log.WithFields(log.Fields{
			"offset":  off,
			"attempt": attempt,
		}).Debug("byte did not verify, retrying")
	}

	return &ProgramError{
		Offset:   off,
		Value:    v,
		Actual:   actual,
		Attempts: d.config.ProgramAttempts,
	}
}

// programBytes programs data starting at off, in increasing offset order. It
// stops at the first byte that fails.
func (d *Driver) programBytes(off uint32, data []byte) error {
	for ix, v := range data {
		if err := d.programByte(off+uint32(ix), v); err != nil {
			return err
		}
	}
	return nil
}
