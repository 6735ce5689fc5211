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

package protocol

import "fmt"

// ChipID is the manufacturer/device pair a chip reports in id mode.
type ChipID struct {
	Manufacturer byte `json:"manufacturer"`
	Device       byte `json:"device"`
}

//
func (id ChipID) String() string {
	return fmt.Sprintf("%02x:%02x", id.Manufacturer, id.Device)
}

// ChipInfo describes a known cartridge flash chip.
type ChipInfo struct {
	ID       ChipID `json:"id"`
	Vendor   string `json:"vendor"`
	Part     string `json:"part"`
	Capacity uint32 `json:"capacity"`
}

//
func (c ChipInfo) String() string {
	if c.Part == "" {
		return fmt.Sprintf("unknown chip %s", c.ID)
	}
	return fmt.Sprintf("%s %s (%s), %d KiB", c.Vendor, c.Part, c.ID, c.Capacity/1024)
}

// the flash chips found on cartridges in the wild
var knownChips = []ChipInfo{
	{ID: ChipID{0x1f, 0x3d}, Vendor: "Atmel", Part: "AT29LV512", Capacity: 64 * 1024},
	{ID: ChipID{0xbf, 0xd4}, Vendor: "SST", Part: "SST39LVF512", Capacity: 64 * 1024},
	{ID: ChipID{0x32, 0x1b}, Vendor: "Panasonic", Part: "MN63F805MNP", Capacity: 64 * 1024},
	{ID: ChipID{0xc2, 0x1c}, Vendor: "Macronix", Part: "MX29L512", Capacity: 64 * 1024},
	{ID: ChipID{0xc2, 0x09}, Vendor: "Macronix", Part: "MX29L010", Capacity: 128 * 1024},
	{ID: ChipID{0x62, 0x13}, Vendor: "Sanyo", Part: "LE26FV10N1TS", Capacity: 128 * 1024},
}

// DefaultChip is the 128 KiB Macronix part.
var DefaultChip = ChipID{0xc2, 0x09}

// LookupChip returns the info for a chip id. For unknown ids, the returned
// info only carries the id, and ok is false.
func LookupChip(id ChipID) (info ChipInfo, ok bool) {
	for _, c := range knownChips {
		if c.ID == id {
			return c, true
		}
	}
	return ChipInfo{ID: id}, false
}
