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
	Identify puts the chip into id mode, reads manufacturer and device id, and
	returns to read array mode. The returned info is only filled beyond the id
	for known chips.
*/
func (d *Driver) Identify() (protocol.ChipInfo, error) {

	if err := d.sendCommand(protocol.CmdEnterID); err != nil {
		return protocol.ChipInfo{}, err
	}

	var id protocol.ChipID
	var err error

	if id.Manufacturer, err = d.region.Read8(protocol.ManufacturerOffset); err == nil {
		id.Device, err = d.region.Read8(protocol.DeviceOffset)
	}

	// leave id mode even when reading failed
	if exitErr := d.sendCommand(protocol.CmdExitID); err == nil {
		err = exitErr
	}

	if err != nil {
		return protocol.ChipInfo{}, err
	}

	info, known := protocol.LookupChip(id)
	if !known {
		log.WithField("id", id).Warn("unknown flash chip")
	}
	return info, nil
}
