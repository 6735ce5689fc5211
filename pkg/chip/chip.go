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

import (
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/cartflash/pkg/flash/protocol"
	"github.com/xelalexv/cartflash/pkg/mmio"
)

// status byte returned while an erase is in progress
const busyStatus byte = 0x00

/*
	New creates a simulated flash chip on top of store, which holds the chip's
	cells. The chip is itself a region, with the command set of the cartridge
	flash chips: writes are only taken as commands after the unlock sequence,
	a byte can only be programmed after a program command, programming can
	only clear bits, and only an erase sets them again.
*/
func New(store mmio.Region, opts ...Option) *Chip {
	c := &Chip{
		store: store,
		id:    protocol.DefaultChip,
		stuck: map[uint32]byte{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Chip is a behavioral model of a cartridge flash chip. It is not safe for
// concurrent use, same as the real thing.
type Chip struct {
	store mmio.Region
	id    protocol.ChipID
	//
	unlock     int // progress through the unlock sequence
	idMode     bool
	eraseSetup bool
	program    bool
	//
	eraseBusy      int // remaining busy polls, -1 for never
	eraseLatency   int
	eraseStuck     bool
	programLatency int
	pending        int // remaining polls until last program shows
	pendingOffset  uint32
	failPrograms   int
	stuck          map[uint32]byte
	//
	erases   int
	programs int
}

//
func (c *Chip) Size() uint32 {
	return c.store.Size()
}

//
func (c *Chip) Read8(off uint32) (byte, error) {

	if off >= c.store.Size() {
		return 0, &mmio.RangeError{Offset: off, Length: 1, Size: c.store.Size()}
	}

	if c.eraseBusy != 0 {
		if c.eraseBusy > 0 {
			c.eraseBusy--
		}
		return busyStatus, nil
	}

	if c.idMode {
		switch off {
		case protocol.ManufacturerOffset:
			return c.id.Manufacturer, nil
		case protocol.DeviceOffset:
			return c.id.Device, nil
		}
	}

	v, err := c.store.Read8(off)
	if err != nil {
		return 0, err
	}

	if c.pending > 0 && off == c.pendingOffset {
		c.pending--
		return ^v, nil // data polling, inverted while still programming
	}

	return v, nil
}

//
func (c *Chip) Write8(off uint32, v byte) error {

	if off >= c.store.Size() {
		return &mmio.RangeError{Offset: off, Length: 1, Size: c.store.Size()}
	}

	if c.eraseBusy != 0 {
		log.Trace("chip busy erasing, write ignored")
		return nil
	}

	if c.program {
		c.program = false
		c.unlock = 0
		return c.programByte(off, v)
	}

	switch {
	case off == protocol.UnlockAddr1 && v == protocol.UnlockByte1:
		c.unlock = 1
	case off == protocol.UnlockAddr2 && v == protocol.UnlockByte2 && c.unlock == 1:
		c.unlock = 2
	case off == protocol.UnlockAddr1 && c.unlock == 2:
		c.unlock = 0
		c.command(v)
	default:
		log.WithFields(log.Fields{
			"offset": off, "value": v}).Trace("stray write ignored")
		c.unlock = 0
	}

	return nil
}

//
func (c *Chip) command(cmd byte) {

	log.WithField("command", cmd).Trace("chip command")
	setup := c.eraseSetup
	c.eraseSetup = false

	switch cmd {

	case protocol.CmdEnterID:
		c.idMode = true

	case protocol.CmdExitID:
		c.idMode = false

	case protocol.CmdEraseSetup:
		c.eraseSetup = true

	case protocol.CmdEraseChip:
		if setup {
			c.erase()
		} else {
			log.Trace("erase confirm without setup ignored")
		}

	case protocol.CmdProgram:
		c.program = true

	default:
		log.WithField("command", cmd).Debug("unsupported chip command")
	}
}

//
func (c *Chip) erase() {

	c.erases++

	if c.eraseStuck {
		log.Debug("chip erase stuck")
		c.eraseBusy = -1
		return
	}

	for off := uint32(0); off < c.store.Size(); off++ {
		if err := c.store.Write8(off, protocol.Erased); err != nil {
			log.Errorf("error erasing chip cell 0x%05x: %v", off, err)
			return
		}
	}

	c.eraseBusy = c.eraseLatency
	c.pending = 0
}

//
func (c *Chip) programByte(off uint32, v byte) error {

	c.programs++

	if c.failPrograms > 0 {
		c.failPrograms--
		log.WithField("offset", off).Trace("program attempt dropped")
		return nil
	}

	old, err := c.store.Read8(off)
	if err != nil {
		return err
	}

	if err := c.store.Write8(off, old&(v|c.stuck[off])); err != nil {
		return err
	}

	c.pending = c.programLatency
	c.pendingOffset = off
	return nil
}

// ID returns the id the chip reports in id mode.
func (c *Chip) ID() protocol.ChipID {
	return c.id
}

// Erases returns the number of chip erase commands received.
func (c *Chip) Erases() int {
	return c.erases
}

// Programs returns the number of byte program operations received.
func (c *Chip) Programs() int {
	return c.programs
}

// InIDMode tells whether the chip currently is in id mode.
func (c *Chip) InIDMode() bool {
	return c.idMode
}

// FailNextPrograms makes the next n program operations have no effect.
func (c *Chip) FailNextPrograms(n int) {
	c.failPrograms = n
}

// StickBits makes the bits in mask at off impossible to program.
func (c *Chip) StickBits(off uint32, mask byte) {
	c.stuck[off] |= mask
}

// Store returns the region holding the chip's cells.
func (c *Chip) Store() mmio.Region {
	return c.store
}
