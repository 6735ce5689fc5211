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

package chip

import "github.com/xelalexv/cartflash/pkg/flash/protocol"

// Option configures a simulated chip.
type Option func(*Chip)

// WithID sets the id the chip reports in id mode.
func WithID(id protocol.ChipID) Option {
	return func(c *Chip) {
		c.id = id
	}
}

// WithEraseLatency makes the chip report busy for n status polls after an
// erase.
func WithEraseLatency(n int) Option {
	return func(c *Chip) {
		if n >= 0 {
			c.eraseLatency = n
		}
	}
}

// WithStuckErase makes every erase hang forever.
func WithStuckErase() Option {
	return func(c *Chip) {
		c.eraseStuck = true
	}
}

// WithProgramLatency makes a programmed byte show up only after n polls.
func WithProgramLatency(n int) Option {
	return func(c *Chip) {
		if n >= 0 {
			c.programLatency = n
		}
	}
}
