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
	"encoding/binary"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/cartflash/pkg/flash/protocol"
	"github.com/xelalexv/cartflash/pkg/mmio"
)

//
func (d *Driver) readLengthBytes(off uint32) ([4]byte, error) {
	var ret [4]byte
	err := mmio.ReadAt(d.region, ret[:], off)
	return ret, err
}

// currentLength interprets the primary length field, without checking it
// against the backup.
func (d *Driver) currentLength() (uint32, error) {
	b, err := d.readLengthBytes(protocol.LengthOffset)
	if err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint32(b[:]), nil
}

// hasValidStructure is true iff primary and backup length field agree, and
// do not hold the sentinel. It never changes chip state.
func (d *Driver) hasValidStructure() bool {

	primary, err := d.readLengthBytes(protocol.LengthOffset)
	if err != nil {
		log.Errorf("error reading length field: %v", err)
		return false
	}

	backup, err := d.readLengthBytes(d.config.BackupOffset)
	if err != nil {
		log.Errorf("error reading backup length field: %v", err)
		return false
	}

	return primary == backup &&
		binary.NativeEndian.Uint32(primary[:]) != protocol.Sentinel
}

//
func encodeLength(l uint32) []byte {
	ret := make([]byte, protocol.LengthSize)
	binary.NativeEndian.PutUint32(ret, l)
	return ret
}
